package pdf_test

import (
	"context"
	"fmt"
	"sync"

	"pdf_watermark/pdf"
	"pdf_watermark/pdf/pdftest"
)

const watermark = "CONFIDENTIAL WATERMARK"

// watermarkSpan is the recurring stamp, shifted by a sub-pixel jitter
func watermarkSpan(jitter float64) pdf.TextSpan {
	return pdf.TextSpan{
		Text:     watermark,
		BBox:     pdf.NewRect(150.2+jitter, 380.1, 450.3+jitter, 416.2),
		Color:    0xBFBFBF,
		FontSize: 36,
		Font:     "Helvetica-Bold",
	}
}

func bodyText(page int) string { return fmt.Sprintf("Unique body text for page %d", page+1) }

// scenarioDoc builds pages carrying the watermark plus unique body text
func scenarioDoc(pages int) *pdftest.Doc {
	all := make([][]pdf.TextSpan, pages)
	for i := range all {
		all[i] = []pdf.TextSpan{
			pdftest.Span(bodyText(i), 72, 100, 400, 114),
			watermarkSpan(float64(i%2) * 0.2),
			pdftest.Span(fmt.Sprintf("Footnote %d", i+1), 72, 700, 200, 712),
		}
	}
	return pdftest.New(all...)
}

// countingDoc records page accesses and optionally supports prefetching
type countingDoc struct {
	*pdftest.Doc
	mu          sync.Mutex
	accessed    []int
	prefetched  [][]int
	prefetchErr error
}

func (d *countingDoc) Page(ctx context.Context, i int) (pdf.Page, error) {
	d.mu.Lock()
	d.accessed = append(d.accessed, i)
	d.mu.Unlock()
	return d.Doc.Page(ctx, i)
}

func (d *countingDoc) Prefetch(_ context.Context, pages []int) error {
	d.prefetched = append(d.prefetched, append([]int(nil), pages...))
	return d.prefetchErr
}
