package pdf

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var whitespace = regexp.MustCompile(`\s`)

// ParsePageSpecifier parses a 1-based page specification and returns 0-based
// page indices, sorted and deduplicated.
// Supports formats: "1", "1,3", "1-5", "1,3-5,7"
func ParsePageSpecifier(pages string) ([]int, error) {
	const op = "ParsePageSpecifier"
	pages = whitespace.ReplaceAllString(pages, "")
	if pages == "" {
		return nil, NewError(ErrorCodeInvalidParameter, op, "empty page specification")
	}

	var pageList []int
	for _, part := range strings.Split(pages, ",") {
		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return nil, Errorf(ErrorCodeInvalidParameter, op, "invalid range: %s", part)
			}
			start, err := strconv.Atoi(rangeParts[0])
			if err != nil {
				return nil, Errorf(ErrorCodeInvalidParameter, op, "invalid start page: %s", rangeParts[0])
			}
			end, err := strconv.Atoi(rangeParts[1])
			if err != nil {
				return nil, Errorf(ErrorCodeInvalidParameter, op, "invalid end page: %s", rangeParts[1])
			}
			if start > end {
				return nil, Errorf(ErrorCodeInvalidParameter, op, "invalid range: start > end (%d > %d)", start, end)
			}
			if end-start+1 > MaxSpecifiedPages-len(pageList) {
				return nil, Errorf(ErrorCodeInvalidParameter, op, "page specification selects more than %d pages", MaxSpecifiedPages)
			}
			for i := start; i <= end; i++ {
				pageList = append(pageList, i)
			}
			continue
		}
		pageNum, err := strconv.Atoi(part)
		if err != nil {
			return nil, Errorf(ErrorCodeInvalidParameter, op, "invalid page number: %s", part)
		}
		if len(pageList) >= MaxSpecifiedPages {
			return nil, Errorf(ErrorCodeInvalidParameter, op, "page specification selects more than %d pages", MaxSpecifiedPages)
		}
		pageList = append(pageList, pageNum)
	}

	sort.Ints(pageList)
	deduped := []int{}
	for i, page := range pageList {
		if page < 1 {
			return nil, Errorf(ErrorCodeInvalidParameter, op, "page numbers must be positive, got %d", page)
		}
		if i == 0 || page != pageList[i-1] {
			deduped = append(deduped, page-1)
		}
	}
	return deduped, nil
}
