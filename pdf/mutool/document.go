package mutool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"pdf_watermark/logger"
	"pdf_watermark/pdf"

	"github.com/google/uuid"
)

// Image handling codes understood by applyRedactions
var imageMethods = map[pdf.ImagePolicy]int{
	pdf.ImagesNone:   0,
	pdf.ImagesRemove: 1,
	pdf.ImagesPixels: 2,
}

type charDump struct {
	C string     `json:"c"`
	B [4]float64 `json:"b"`
	K uint32     `json:"k"`
	S float64    `json:"s"`
	F string     `json:"f"`
}

type pageDump struct {
	Index int          `json:"index"`
	Error string       `json:"error,omitempty"`
	Lines [][]charDump `json:"lines"`
}

type inspectResult struct {
	PageCount int        `json:"page_count"`
	Pages     []pageDump `json:"pages"`
}

type planRect struct {
	Rect pdf.Rect    `json:"rect"`
	Fill *[3]float64 `json:"fill"`
}

type pagePlan struct {
	Index  int        `json:"index"`
	Images int        `json:"images"`
	Rects  []planRect `json:"rects"`
}

type savePlan struct {
	Save  string      `json:"save"`
	Pages []*pagePlan `json:"pages"`
}

// Document is a PDF opened through mutool. Page text is cached after the
// first read and redactions are kept as a plan until Save.
type Document struct {
	tool      *Tool
	dir       string
	path      string
	pageCount int

	mu     sync.Mutex
	cache  map[int][]line
	plan   map[int]*pagePlan
	closed bool
}

var (
	_ pdf.Document   = (*Document)(nil)
	_ pdf.Prefetcher = (*Document)(nil)
	_ pdf.Saver      = (*Document)(nil)
)

// PageCount implements pdf.Document
func (d *Document) PageCount() int { return d.pageCount }

func (d *Document) run(ctx context.Context, script string, args ...string) ([]byte, error) {
	argv := append([]string{"run", filepath.Join(d.dir, script)}, args...)
	return d.tool.runner.Run(ctx, d.tool.path, argv...)
}

func (d *Document) inspect(ctx context.Context, pages []int) (*inspectResult, error) {
	list := make([]string, len(pages))
	for i, p := range pages {
		list[i] = strconv.Itoa(p)
	}
	out, err := d.run(ctx, inspectName, d.path, strings.Join(list, ","))
	if err != nil {
		return nil, err
	}
	var res inspectResult
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, fmt.Errorf("decode inspect output: %w", err)
	}
	return &res, nil
}

// Prefetch loads the text of every listed page in one mutool call.
// Pages that fail individually are left uncached and retried by Page.
func (d *Document) Prefetch(ctx context.Context, pages []int) error {
	d.mu.Lock()
	missing := make([]int, 0, len(pages))
	for _, p := range pages {
		if _, ok := d.cache[p]; !ok && p >= 0 && p < d.pageCount {
			missing = append(missing, p)
		}
	}
	d.mu.Unlock()
	if len(missing) == 0 {
		return nil
	}

	res, err := d.inspect(ctx, missing)
	if err != nil {
		return pdf.Wrap(err, pdf.ErrorCodePageAccess, "mutool.Prefetch", "cannot read pages")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, pd := range res.Pages {
		if pd.Error != "" {
			logger.C(ctx).Debug().Int("page", pd.Index).Str("error", pd.Error).Msg("prefetch skipped page")
			continue
		}
		d.cache[pd.Index] = linesFromDump(pd.Lines)
	}
	return nil
}

// Page implements pdf.Document
func (d *Document) Page(ctx context.Context, index int) (pdf.Page, error) {
	const op = "mutool.Page"
	if index < 0 || index >= d.pageCount {
		return nil, pdf.Errorf(pdf.ErrorCodePageAccess, op, "page %d out of range [0, %d)", index, d.pageCount)
	}
	d.mu.Lock()
	_, ok := d.cache[index]
	d.mu.Unlock()
	if ok {
		return &Page{doc: d, index: index}, nil
	}

	res, err := d.inspect(ctx, []int{index})
	if err != nil {
		return nil, pdf.Wrap(err, pdf.ErrorCodePageAccess, op, fmt.Sprintf("cannot load page %d", index))
	}
	if len(res.Pages) != 1 || res.Pages[0].Index != index {
		return nil, pdf.Errorf(pdf.ErrorCodePageAccess, op, "no data returned for page %d", index)
	}
	if msg := res.Pages[0].Error; msg != "" {
		return nil, pdf.Errorf(pdf.ErrorCodePageAccess, op, "cannot load page %d: %s", index, msg)
	}
	d.mu.Lock()
	d.cache[index] = linesFromDump(res.Pages[0].Lines)
	d.mu.Unlock()
	return &Page{doc: d, index: index}, nil
}

func (d *Document) lines(index int) []line {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cache[index]
}

// commit records redactions for index and drops the text they cover from the cache
func (d *Document) commit(index int, marks []pdf.Redaction, images pdf.ImagePolicy) error {
	method, ok := imageMethods[images]
	if !ok {
		return pdf.Errorf(pdf.ErrorCodeInvalidParameter, "mutool.ApplyRedactions", "unknown image policy %q", images)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	pp := d.plan[index]
	if pp == nil {
		pp = &pagePlan{Index: index}
		d.plan[index] = pp
	}
	if method > pp.Images {
		pp.Images = method
	}
	rects := make([]pdf.Rect, len(marks))
	for i, m := range marks {
		rects[i] = m.Rect
		pr := planRect{Rect: m.Rect}
		if m.Fill != nil {
			rgb := m.Fill.RGB()
			pr.Fill = &rgb
		}
		pp.Rects = append(pp.Rects, pr)
	}
	d.cache[index] = redactLines(d.cache[index], rects)
	return nil
}

func saveFlags(opts pdf.SaveOptions) string {
	flags := []string{}
	if opts.Garbage > 0 {
		flags = append(flags, "garbage="+strconv.Itoa(opts.Garbage))
	}
	if opts.Compress {
		flags = append(flags, "compress")
	}
	return strings.Join(flags, ",")
}

// Save applies the redaction plan to the source file and writes the result
// to path. The output is written next to path first and renamed into place.
func (d *Document) Save(ctx context.Context, path string, opts pdf.SaveOptions) error {
	const op = "mutool.Save"
	d.mu.Lock()
	plan := savePlan{Save: saveFlags(opts), Pages: make([]*pagePlan, 0, len(d.plan))}
	for _, pp := range d.plan {
		plan.Pages = append(plan.Pages, pp)
	}
	d.mu.Unlock()
	sort.Slice(plan.Pages, func(i, j int) bool { return plan.Pages[i].Index < plan.Pages[j].Index })

	data, err := json.Marshal(plan)
	if err != nil {
		return pdf.Wrap(err, pdf.ErrorCodeSaveFailure, op, "encode redaction plan")
	}
	planPath := filepath.Join(d.dir, "plan-"+uuid.NewString()+".json")
	if err := os.WriteFile(planPath, data, 0o600); err != nil {
		return pdf.Wrap(err, pdf.ErrorCodeSaveFailure, op, "write redaction plan")
	}
	defer os.Remove(planPath)

	tmp := path + ".tmp-" + uuid.NewString()[:8]
	if _, err := d.run(ctx, redactName, d.path, planPath, tmp); err != nil {
		_ = os.Remove(tmp)
		return pdf.Wrap(err, pdf.ErrorCodeSaveFailure, op, "apply redactions")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return pdf.Wrap(err, pdf.ErrorCodeSaveFailure, op, "move output into place")
	}
	logger.C(ctx).Debug().Str("output", path).Int("pages", len(plan.Pages)).Msg("saved document")
	return nil
}

// Close removes the work directory. Calling it again is a no-op.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return os.RemoveAll(d.dir)
}
