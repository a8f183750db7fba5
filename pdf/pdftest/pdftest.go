// Package pdftest provides an in-memory document access layer for tests.
package pdftest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"pdf_watermark/pdf"
)

// DefaultSize and DefaultColor are used by Span
const (
	DefaultSize  = 12.0
	DefaultColor = pdf.Color(0x808080)
)

// Span builds a text span with the default size and color
func Span(text string, x0, y0, x1, y1 float64) pdf.TextSpan {
	return pdf.TextSpan{
		Text:     text,
		BBox:     pdf.NewRect(x0, y0, x1, y1),
		Color:    DefaultColor,
		FontSize: DefaultSize,
		Font:     "Helvetica",
	}
}

// Doc is an in-memory pdf.Document
type Doc struct {
	mu      sync.Mutex
	pages   []*Page
	closes  int
	saved   []string
	PageErr map[int]error
	SaveErr error
}

// New builds a document with one page per span list
func New(pages ...[]pdf.TextSpan) *Doc {
	d := &Doc{PageErr: map[int]error{}}
	for i, spans := range pages {
		d.pages = append(d.pages, &Page{
			index:     i,
			spans:     append([]pdf.TextSpan(nil), spans...),
			SearchErr: map[string]error{},
		})
	}
	return d
}

// PageCount implements pdf.Document
func (d *Doc) PageCount() int { return len(d.pages) }

// Page implements pdf.Document
func (d *Doc) Page(_ context.Context, index int) (pdf.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.PageErr[index]; err != nil {
		return nil, err
	}
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", index)
	}
	return d.pages[index], nil
}

// Pages exposes the underlying pages for assertions and fault injection
func (d *Doc) Pages() []*Page { return d.pages }

// Close implements pdf.Document
func (d *Doc) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
	return nil
}

// Closes returns how many times Close was called
func (d *Doc) Closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}

// Saved returns the paths passed to Save
func (d *Doc) Saved() []string { return d.saved }

// Save writes the remaining text of every page to path as JSON
func (d *Doc) Save(_ context.Context, path string, _ pdf.SaveOptions) error {
	if d.SaveErr != nil {
		return d.SaveErr
	}
	texts := make([][]string, len(d.pages))
	for i, p := range d.pages {
		texts[i] = p.Texts()
	}
	data, err := json.Marshal(texts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	d.saved = append(d.saved, path)
	return nil
}

// Page is an in-memory pdf.Page
type Page struct {
	index     int
	spans     []pdf.TextSpan
	pending   []pdf.Redaction
	applied   []pdf.Redaction
	applies   int
	SpansErr  error
	SearchErr map[string]error
	ApplyErr  error
}

// Index implements pdf.Page
func (p *Page) Index() int { return p.index }

// Spans implements pdf.Page
func (p *Page) Spans(context.Context) ([]pdf.TextSpan, error) {
	if p.SpansErr != nil {
		return nil, p.SpansErr
	}
	return append([]pdf.TextSpan(nil), p.spans...), nil
}

// Search returns one rectangle per exact occurrence of text inside a span.
// The horizontal extent is interpolated from the rune offsets.
func (p *Page) Search(_ context.Context, text string) ([]pdf.Rect, error) {
	if err := p.SearchErr[text]; err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	var hits []pdf.Rect
	for _, s := range p.spans {
		total := utf8.RuneCountInString(s.Text)
		if total == 0 {
			continue
		}
		width := s.BBox.Width() / float64(total)
		from := 0
		for {
			idx := strings.Index(s.Text[from:], text)
			if idx < 0 {
				break
			}
			start := utf8.RuneCountInString(s.Text[:from+idx])
			n := utf8.RuneCountInString(text)
			hits = append(hits, pdf.NewRect(
				s.BBox.X0+width*float64(start),
				s.BBox.Y0,
				s.BBox.X0+width*float64(start+n),
				s.BBox.Y1,
			))
			from += idx + len(text)
		}
	}
	return hits, nil
}

// AddRedaction implements pdf.Page
func (p *Page) AddRedaction(r pdf.Redaction) {
	p.pending = append(p.pending, r)
}

// ApplyRedactions drops every span whose center lies in a pending redaction
func (p *Page) ApplyRedactions(context.Context, pdf.RedactOptions) error {
	p.applies++
	if p.ApplyErr != nil {
		return p.ApplyErr
	}
	kept := p.spans[:0]
	for _, s := range p.spans {
		cx, cy := s.BBox.Center()
		hit := false
		for _, r := range p.pending {
			if r.Rect.ContainsPoint(cx, cy) {
				hit = true
				break
			}
		}
		if !hit {
			kept = append(kept, s)
		}
	}
	p.spans = kept
	p.applied = append(p.applied, p.pending...)
	p.pending = nil
	return nil
}

// Applied returns the committed redactions
func (p *Page) Applied() []pdf.Redaction { return p.applied }

// Applies returns how many times ApplyRedactions was called
func (p *Page) Applies() int { return p.applies }

// Texts returns the text of the remaining spans
func (p *Page) Texts() []string {
	out := make([]string, len(p.spans))
	for i, s := range p.spans {
		out[i] = s.Text
	}
	return out
}

// Opener hands out documents built by Factory and records every open
type Opener struct {
	Factory func() *Doc
	Err     error

	mu     sync.Mutex
	opened []*Doc
	paths  []string
}

// Open implements pdf.Opener
func (o *Opener) Open(_ context.Context, path string) (pdf.Document, error) {
	return o.open(path)
}

// OpenBytes implements pdf.Opener
func (o *Opener) OpenBytes(_ context.Context, data []byte) (pdf.Document, error) {
	return o.open(fmt.Sprintf("<%d bytes>", len(data)))
}

func (o *Opener) open(name string) (pdf.Document, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paths = append(o.paths, name)
	if o.Err != nil {
		return nil, o.Err
	}
	d := o.Factory()
	o.opened = append(o.opened, d)
	return d, nil
}

// Paths returns the names of every open attempt, bytes are shown as "<N bytes>"
func (o *Opener) Paths() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.paths...)
}

// Opened returns every document handed out so far
func (o *Opener) Opened() []*Doc {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Doc(nil), o.opened...)
}
