package pdf

import (
	"context"
	"sort"

	"pdf_watermark/logger"

	"golang.org/x/sync/errgroup"
)

// Analysis is the result of one detection run
type Analysis struct {
	TotalPages   int         `json:"total_pages"`
	SampledPages []int       `json:"sampled_pages"`
	Detections   []Detection `json:"watermarks"`
	// Skipped counts sampled pages whose text could not be extracted
	Skipped int `json:"skipped_pages"`
}

// Candidates returns the detected watermarks without their counts
func (a *Analysis) Candidates() []Candidate {
	if a == nil {
		return []Candidate{}
	}
	out := make([]Candidate, len(a.Detections))
	for i, d := range a.Detections {
		out[i] = d.Candidate
	}
	return out
}

// Found reports whether any watermark qualified
func (a *Analysis) Found() bool {
	return a != nil && len(a.Detections) > 0
}

// Detection is a detected watermark with the number of sampled occurrences
type Detection struct {
	Candidate
	Count int `json:"count"`
}

// normalizePages drops out-of-range and duplicate indices and sorts the rest
func normalizePages(pages []int, total int) []int {
	out := make([]int, 0, len(pages))
	seen := make(map[int]bool, len(pages))
	for _, p := range pages {
		if p < 0 || p >= total || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Analyze samples doc and returns the text fragments recurring at the same
// rounded position, color and size on at least ThresholdRatio of the sampled
// pages. It never mutates doc. Pages whose text cannot be extracted are
// skipped and excluded from the sample count.
func Analyze(ctx context.Context, doc Document, opts Options) (*Analysis, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	log := logger.C(ctx).With().Str("component", "detector").Logger()

	total := doc.PageCount()
	pages := SamplePages(total, opts.SampleBudget)
	if len(opts.Pages) > 0 {
		pages = normalizePages(opts.Pages, total)
	}
	log.Info().Int("sampled", len(pages)).Int("total", total).Msg("analyzing pages to detect watermarks")

	res := &Analysis{TotalPages: total, SampledPages: pages, Detections: []Detection{}}
	if len(pages) == 0 {
		return res, nil
	}

	if pf, ok := doc.(Prefetcher); ok {
		if err := pf.Prefetch(ctx, pages); err != nil {
			log.Warn().Err(err).Msg("prefetch failed, falling back to per-page loading")
		}
	}

	perPage := make([][]Signature, len(pages))
	failed := make([]bool, len(pages))
	extract := func(i int) {
		page, err := doc.Page(ctx, pages[i])
		if err == nil {
			perPage[i], err = ExtractSignatures(ctx, page)
		}
		if err != nil {
			failed[i] = true
			log.Warn().Err(err).Int("page", pages[i]).Msg("skipping page")
		}
	}

	if opts.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i := range pages {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				extract(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range pages {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			extract(i)
		}
	}

	t := newTally()
	for i := range pages {
		if failed[i] {
			res.Skipped++
			continue
		}
		t.add(perPage[i])
	}

	sampleCount := len(pages) - res.Skipped
	res.Detections = t.detect(sampleCount, opts.ThresholdRatio)
	for _, d := range res.Detections {
		log.Debug().
			Str("text", d.Text).
			Stringer("bbox", d.BBox).
			Stringer("color", d.Color).
			Float64("size", d.FontSize).
			Int("count", d.Count).
			Int("of", sampleCount).
			Msg("watermark candidate")
	}
	if res.Skipped > 0 {
		log.Warn().Int("skipped", res.Skipped).Msg("pages skipped due to access errors")
	}
	return res, nil
}
