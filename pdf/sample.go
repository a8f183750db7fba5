package pdf

import "sort"

// window is the size of each of the start, middle and end windows
func window(budget int) int {
	return budget / 3
}

// SamplePages picks the pages inspected during detection.
//
// Documents with no more pages than budget are sampled in full. Longer
// documents contribute three windows of budget/3 pages each, one from the
// start, one from the end and one centred on the middle page, so a watermark confined to part of the
// document is still seen while cost stays bounded by budget. The result is
// ascending, deduplicated and within [0, totalPages). A budget below 3
// samples nothing from a longer document.
func SamplePages(totalPages, budget int) []int {
	if totalPages <= 0 || budget <= 0 {
		return []int{}
	}
	if totalPages <= budget {
		pages := make([]int, totalPages)
		for i := range pages {
			pages[i] = i
		}
		return pages
	}

	n := window(budget)
	seen := make(map[int]struct{}, budget)
	add := func(from, count int) {
		for p := from; p < from+count; p++ {
			if p >= 0 && p < totalPages {
				seen[p] = struct{}{}
			}
		}
	}
	add(0, n)
	add(totalPages-n, n)
	add(totalPages/2-n/2, n)

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}
