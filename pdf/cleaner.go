package pdf

import (
	"context"

	"pdf_watermark/logger"
)

// Report statuses
const (
	StatusSuccess      = "success"
	StatusNoWatermarks = "no_watermarks"
)

// Source names the input document, either a file path or in-memory bytes
type Source struct {
	Path string
	Data []byte
}

// Report is the outcome of a Clean or Remove call
type Report struct {
	Status   string    `json:"status"`
	Analysis *Analysis `json:"analysis,omitempty"`
	Removal  *Removal  `json:"removal,omitempty"`
	Output   string    `json:"output,omitempty"`
}

// Cleaner runs analyze, remove and save against documents from an Opener.
// Every call opens its own document and closes it before returning.
type Cleaner struct {
	opener Opener
	policy Policy
	save   SaveOptions
}

// NewCleaner creates a Cleaner using policy for removals
func NewCleaner(opener Opener, policy Policy) *Cleaner {
	return &Cleaner{opener: opener, policy: policy, save: DefaultSaveOptions}
}

// Policy returns the removal policy
func (c *Cleaner) Policy() Policy { return c.policy }

func (c *Cleaner) open(ctx context.Context, src Source) (Document, error) {
	var (
		doc Document
		err error
	)
	if src.Data != nil {
		doc, err = c.opener.OpenBytes(ctx, src.Data)
	} else {
		doc, err = c.opener.Open(ctx, src.Path)
	}
	if err != nil {
		if _, ok := As(err); ok {
			return nil, err
		}
		return nil, Wrap(err, ErrorCodeInvalidDocument, "open", "cannot open document")
	}
	return doc, nil
}

func closeDoc(ctx context.Context, doc Document) {
	if err := doc.Close(); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("failed to close document")
	}
}

// Analyze opens src and runs detection on it
func (c *Cleaner) Analyze(ctx context.Context, src Source, opts Options) (*Analysis, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	doc, err := c.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer closeDoc(ctx, doc)
	return Analyze(ctx, doc, opts)
}

// Clean detects watermarks in src, removes them and saves the result to out.
// When nothing qualifies the report status is StatusNoWatermarks and out is not written.
func (c *Cleaner) Clean(ctx context.Context, src Source, out string, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := c.policy.Validate(); err != nil {
		return nil, err
	}
	doc, err := c.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer closeDoc(ctx, doc)

	analysis, err := Analyze(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	if !analysis.Found() {
		return &Report{Status: StatusNoWatermarks, Analysis: analysis}, nil
	}

	rep, err := c.removeAndSave(ctx, doc, analysis.Candidates(), out)
	if err != nil {
		return nil, err
	}
	rep.Analysis = analysis
	return rep, nil
}

// Remove masks caller-supplied candidates in src and saves the result to out.
// An empty candidate list is a no-op reported as StatusNoWatermarks.
func (c *Cleaner) Remove(ctx context.Context, src Source, out string, candidates []Candidate) (*Report, error) {
	if err := c.policy.Validate(); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &Report{Status: StatusNoWatermarks, Removal: &Removal{}}, nil
	}
	doc, err := c.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer closeDoc(ctx, doc)
	return c.removeAndSave(ctx, doc, candidates, out)
}

func (c *Cleaner) removeAndSave(ctx context.Context, doc Document, candidates []Candidate, out string) (*Report, error) {
	removal, err := ApplyRemoval(ctx, doc, candidates, c.policy)
	if err != nil {
		return nil, err
	}
	saver, ok := doc.(Saver)
	if !ok {
		return nil, NewError(ErrorCodeSaveFailure, "save", "document does not support saving")
	}
	if err := saver.Save(ctx, out, c.save); err != nil {
		if IsCode(err, ErrorCodeSaveFailure) {
			return nil, err
		}
		return nil, Wrap(err, ErrorCodeSaveFailure, "save", "cannot save cleaned document")
	}
	logger.C(ctx).Info().Str("output", out).Int("removed", removal.Removed).Msg("saved cleaned PDF")
	return &Report{Status: StatusSuccess, Removal: removal, Output: out}, nil
}
