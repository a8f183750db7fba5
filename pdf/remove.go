package pdf

import (
	"context"

	"pdf_watermark/logger"

	"github.com/rs/zerolog"
)

// Removal summarizes one removal run
type Removal struct {
	// Removed is the number of occurrences marked and committed
	Removed int `json:"removed_count"`
	// Pages is the number of pages that had at least one redaction committed
	Pages int `json:"pages_touched"`
	// Skipped counts access-layer calls that failed (page loads, searches, commits)
	Skipped int `json:"skipped"`
}

// ApplyRemoval masks every occurrence of the text candidates on every page of doc.
//
// An occurrence returned by the access layer's search is only masked when
// more than policy.OverlapThreshold of it sits on the candidate's reference
// box, so the same words elsewhere in the body text survive. Redactions are
// committed once per page. Failures on one page or candidate are logged and
// counted in Skipped; processing continues. The caller saves doc afterwards.
func ApplyRemoval(ctx context.Context, doc Document, candidates []Candidate, policy Policy) (*Removal, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	res := &Removal{}

	text := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Kind == KindText && c.Text != "" {
			text = append(text, c)
		}
	}
	if len(text) == 0 {
		return res, nil
	}

	log := logger.C(ctx).With().Str("component", "remover").Logger()
	total := doc.PageCount()
	if pf, ok := doc.(Prefetcher); ok && total > 0 {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		if err := pf.Prefetch(ctx, all); err != nil {
			log.Warn().Err(err).Msg("prefetch failed, falling back to per-page loading")
		}
	}

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		page, err := doc.Page(ctx, i)
		if err != nil {
			res.Skipped++
			log.Warn().Err(err).Int("page", i).Msg("skipping page")
			continue
		}

		marked := markPage(ctx, &log, page, text, policy, res)
		if marked == 0 {
			continue
		}
		if err := page.ApplyRedactions(ctx, RedactOptions{Images: policy.Images}); err != nil {
			res.Skipped++
			log.Warn().Err(err).Int("page", i).Int("marks", marked).Msg("failed to apply redactions")
			continue
		}
		res.Removed += marked
		res.Pages++
	}

	log.Info().Int("removed", res.Removed).Int("pages", res.Pages).Int("skipped", res.Skipped).Msg("watermark removal finished")
	return res, nil
}

// markPage adds a redaction for each qualifying occurrence and returns how many it added
func markPage(ctx context.Context, log *zerolog.Logger, page Page, candidates []Candidate, policy Policy, res *Removal) int {
	marked := 0
	for _, c := range candidates {
		hits, err := page.Search(ctx, c.Text)
		if err != nil {
			res.Skipped++
			log.Warn().Err(err).Int("page", page.Index()).Str("text", c.Text).Msg("search failed, skipping candidate")
			continue
		}
		for _, r := range hits {
			if IntersectPercent(r, c.BBox, policy.Tolerance) > policy.OverlapThreshold {
				page.AddRedaction(Redaction{Rect: r, Fill: policy.Fill})
				marked++
			}
		}
	}
	return marked
}
