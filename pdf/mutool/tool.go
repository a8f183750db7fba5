// Package mutool implements the document access layer on top of the MuPDF
// command line tool. Text is read with a structured-text walk and removals
// are committed as redaction annotations when the document is saved.
package mutool

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"pdf_watermark/logger"
	"pdf_watermark/pdf"

	"github.com/google/uuid"
)

// DefaultPath is the executable looked up on PATH
const DefaultPath = "mutool"

// InstallInstructions is shown when mutool cannot be found
const InstallInstructions = `mutool (MuPDF) is required.
  Debian/Ubuntu: apt-get install mupdf-tools
  macOS:         brew install mupdf-tools
  Alpine:        apk add mupdf-tools`

// Config configures a Tool
type Config struct {
	// Path is the mutool executable
	Path string
	// Timeout bounds each invocation
	Timeout time.Duration
	// TempDir holds per-document work directories, defaults to os.TempDir
	TempDir string
}

// Tool opens documents through mutool. It implements pdf.Opener.
type Tool struct {
	path    string
	tempDir string
	runner  CommandRunner
}

var _ pdf.Opener = (*Tool)(nil)

// New creates a Tool that runs mutool with os/exec
func New(cfg Config) *Tool {
	return NewWithRunner(cfg, ExecRunner{Timeout: cfg.Timeout})
}

// NewWithRunner creates a Tool that runs every command through runner
func NewWithRunner(cfg Config, runner CommandRunner) *Tool {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	return &Tool{path: path, tempDir: cfg.TempDir, runner: runner}
}

// CheckAvailable verifies that the mutool executable can be found
func (t *Tool) CheckAvailable() error {
	if _, err := exec.LookPath(t.path); err != nil {
		return fmt.Errorf("mutool command not found or not executable: %w", err)
	}
	return nil
}

// Open opens the PDF at path. The file is read in place and never modified.
func (t *Tool) Open(ctx context.Context, path string) (pdf.Document, error) {
	const op = "mutool.Open"
	if path == "" {
		return nil, pdf.NewError(pdf.ErrorCodeInvalidParameter, op, "empty path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, pdf.Wrap(err, pdf.ErrorCodeInvalidDocument, op, "cannot access "+path)
	}
	if info.IsDir() {
		return nil, pdf.Errorf(pdf.ErrorCodeInvalidDocument, op, "%s is a directory", path)
	}
	return t.open(ctx, path, nil)
}

// OpenBytes copies data into the document's work directory and opens it there
func (t *Tool) OpenBytes(ctx context.Context, data []byte) (pdf.Document, error) {
	if len(data) == 0 {
		return nil, pdf.NewError(pdf.ErrorCodeInvalidDocument, "mutool.OpenBytes", "empty document")
	}
	return t.open(ctx, "", data)
}

func (t *Tool) open(ctx context.Context, path string, data []byte) (pdf.Document, error) {
	const op = "mutool.Open"
	dir, err := os.MkdirTemp(t.tempDir, "wm-"+uuid.NewString()[:8]+"-")
	if err != nil {
		return nil, pdf.Wrap(err, pdf.ErrorCodeUnknown, op, "cannot create work directory")
	}
	fail := func(err error) (pdf.Document, error) {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	if err := writeScripts(dir); err != nil {
		return fail(pdf.Wrap(err, pdf.ErrorCodeUnknown, op, "cannot write scripts"))
	}
	if data != nil {
		path = filepath.Join(dir, "source.pdf")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fail(pdf.Wrap(err, pdf.ErrorCodeUnknown, op, "cannot write document"))
		}
	}

	doc := &Document{
		tool:  t,
		dir:   dir,
		path:  path,
		cache: make(map[int][]line),
		plan:  make(map[int]*pagePlan),
	}
	res, err := doc.inspect(ctx, nil)
	if err != nil {
		return fail(pdf.Wrap(err, pdf.ErrorCodeInvalidDocument, op, "cannot open document"))
	}
	doc.pageCount = res.PageCount
	logger.C(ctx).Debug().Str("path", path).Int("pages", doc.pageCount).Msg("opened document")
	return doc, nil
}
