package mutool

import (
	"context"
	"strings"

	"pdf_watermark/pdf"
)

type char struct {
	text  string
	box   pdf.Rect
	color pdf.Color
	size  float64
	font  string
}

// line is one structured-text line in reading order
type line []char

func linesFromDump(dump [][]charDump) []line {
	out := make([]line, 0, len(dump))
	for _, ld := range dump {
		l := make(line, 0, len(ld))
		for _, c := range ld {
			l = append(l, char{
				text:  c.C,
				box:   pdf.NewRect(c.B[0], c.B[1], c.B[2], c.B[3]),
				color: pdf.Color(c.K & 0xFFFFFF),
				size:  c.S,
				font:  c.F,
			})
		}
		if len(l) > 0 {
			out = append(out, l)
		}
	}
	return out
}

// redactLines drops every character whose center falls inside one of rects
func redactLines(lines []line, rects []pdf.Rect) []line {
	out := make([]line, 0, len(lines))
	for _, l := range lines {
		kept := make(line, 0, len(l))
		for _, c := range l {
			cx, cy := c.box.Center()
			covered := false
			for _, r := range rects {
				if r.ContainsPoint(cx, cy) {
					covered = true
					break
				}
			}
			if !covered {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

// spans splits a line into runs sharing font, size and color
func (l line) spans() []pdf.TextSpan {
	var out []pdf.TextSpan
	var b strings.Builder
	var cur pdf.TextSpan
	flush := func() {
		if b.Len() > 0 {
			cur.Text = b.String()
			out = append(out, cur)
		}
		b.Reset()
	}
	for i, c := range l {
		if i == 0 || c.font != cur.Font || c.size != cur.FontSize || c.color != cur.Color {
			flush()
			cur = pdf.TextSpan{Font: c.font, FontSize: c.size, Color: c.color}
		}
		b.WriteString(c.text)
		cur.BBox = cur.BBox.Union(c.box)
	}
	flush()
	return out
}

// Page is a handle on one cached page of a Document
type Page struct {
	doc     *Document
	index   int
	pending []pdf.Redaction
}

var _ pdf.Page = (*Page)(nil)

// Index implements pdf.Page
func (p *Page) Index() int { return p.index }

// Spans implements pdf.Page
func (p *Page) Spans(context.Context) ([]pdf.TextSpan, error) {
	var out []pdf.TextSpan
	for _, l := range p.doc.lines(p.index) {
		out = append(out, l.spans()...)
	}
	return out, nil
}

// Search returns the bounding box of each exact occurrence of text within a line
func (p *Page) Search(_ context.Context, text string) ([]pdf.Rect, error) {
	needle := []rune(text)
	if len(needle) == 0 {
		return nil, nil
	}
	var hits []pdf.Rect
	for _, l := range p.doc.lines(p.index) {
		hay := make([]rune, 0, len(l))
		owner := make([]int, 0, len(l))
		for i, c := range l {
			for _, r := range c.text {
				hay = append(hay, r)
				owner = append(owner, i)
			}
		}
		for start := 0; start+len(needle) <= len(hay); {
			if !runesEqual(hay[start:start+len(needle)], needle) {
				start++
				continue
			}
			var box pdf.Rect
			for i := owner[start]; i <= owner[start+len(needle)-1]; i++ {
				box = box.Union(l[i].box)
			}
			hits = append(hits, box)
			start += len(needle)
		}
	}
	return hits, nil
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AddRedaction implements pdf.Page
func (p *Page) AddRedaction(r pdf.Redaction) {
	p.pending = append(p.pending, r)
}

// ApplyRedactions moves the pending marks into the document's save plan.
// The covered text disappears from later Spans and Search calls right away.
func (p *Page) ApplyRedactions(_ context.Context, opts pdf.RedactOptions) error {
	if len(p.pending) == 0 {
		return nil
	}
	images := opts.Images
	if images == "" {
		images = pdf.ImagesNone
	}
	if err := p.doc.commit(p.index, p.pending, images); err != nil {
		return err
	}
	p.pending = nil
	return nil
}
