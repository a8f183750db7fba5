package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"pdf_watermark/pdf"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const noWatermarksMessage = "No consistent watermarks detected."

// AnalyzeInput is the input schema for the analyze_watermarks tool.
type AnalyzeInput struct {
	Path        string   `json:"path" jsonschema:"path of the PDF file to analyze"`
	Sensitivity *float64 `json:"sensitivity,omitempty" jsonschema:"fraction of sampled pages a fragment must appear on, 0 to 1 (default 0.8)"`
	SamplePages *int     `json:"sample_pages,omitempty" jsonschema:"maximum number of pages to sample (default 10)"`
	Pages       string   `json:"pages,omitempty" jsonschema:"explicit 1-based pages to inspect instead of sampling, e.g. 1,3-5"`
}

// Watermark is one detected watermark in tool output.
type Watermark struct {
	Kind     string     `json:"kind"`
	Text     string     `json:"text"`
	BBox     [4]float64 `json:"bbox"`
	Color    uint32     `json:"color"`
	FontSize float64    `json:"fontSize"`
	Count    int        `json:"count,omitempty"`
}

// AnalyzeOutput is the output schema for the analyze_watermarks tool.
type AnalyzeOutput struct {
	Status       string      `json:"status"`
	Message      string      `json:"message"`
	TotalPages   int         `json:"total_pages"`
	SampledPages []int       `json:"sampled_pages"`
	SkippedPages int         `json:"skipped_pages"`
	Watermarks   []Watermark `json:"watermarks"`
}

// RemoveInput is the input schema for the remove_watermarks tool.
type RemoveInput struct {
	Path        string   `json:"path" jsonschema:"path of the PDF file to clean"`
	Output      string   `json:"output,omitempty" jsonschema:"where to write the cleaned PDF (default: <name>_cleaned.pdf next to the input)"`
	Sensitivity *float64 `json:"sensitivity,omitempty" jsonschema:"detection threshold used when no watermarks are given, 0 to 1"`
	SamplePages *int     `json:"sample_pages,omitempty" jsonschema:"maximum number of pages to sample when detecting"`
	Watermarks  string   `json:"watermarks,omitempty" jsonschema:"JSON array of watermarks from analyze_watermarks; skips detection when set"`
}

// RemoveOutput is the output schema for the remove_watermarks tool.
type RemoveOutput struct {
	Status       string      `json:"status"`
	Message      string      `json:"message"`
	Output       string      `json:"output,omitempty"`
	RemovedCount int         `json:"removed_count"`
	PagesTouched int         `json:"pages_touched"`
	Skipped      int         `json:"skipped"`
	Watermarks   []Watermark `json:"watermarks,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_watermarks",
		Description: "Detect text watermarks that repeat at the same position, color and size across a PDF's pages",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "remove_watermarks",
		Description: "Remove detected or supplied text watermarks from a PDF and write a cleaned copy",
	}, s.handleRemove)
}

func (s *Server) options(sensitivity *float64, samplePages *int, pages string) (pdf.Options, error) {
	opts := s.defaults
	if sensitivity != nil {
		opts.ThresholdRatio = *sensitivity
	}
	if samplePages != nil {
		opts.SampleBudget = *samplePages
	}
	if strings.TrimSpace(pages) != "" {
		list, err := pdf.ParsePageSpecifier(pages)
		if err != nil {
			return opts, err
		}
		opts.Pages = list
	}
	return opts, opts.Validate()
}

func toWatermarks(dets []pdf.Detection) []Watermark {
	out := make([]Watermark, len(dets))
	for i, d := range dets {
		out[i] = toWatermark(d.Candidate)
		out[i].Count = d.Count
	}
	return out
}

func toWatermark(c pdf.Candidate) Watermark {
	return Watermark{
		Kind:     string(c.Kind),
		Text:     c.Text,
		BBox:     [4]float64{c.BBox.X0, c.BBox.Y0, c.BBox.X1, c.BBox.Y1},
		Color:    uint32(c.Color),
		FontSize: c.FontSize,
	}
}

// defaultOutput places the cleaned file next to the input
func defaultOutput(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_cleaned.pdf"
}

// handleAnalyze handles the analyze_watermarks tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	if strings.TrimSpace(input.Path) == "" {
		return nil, AnalyzeOutput{}, pdf.NewError(pdf.ErrorCodeInvalidParameter, "analyze_watermarks", "path is required")
	}
	opts, err := s.options(input.Sensitivity, input.SamplePages, input.Pages)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	analysis, err := s.cleaner.Analyze(ctx, pdf.Source{Path: input.Path}, opts)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	out := AnalyzeOutput{
		Status:       pdf.StatusSuccess,
		Message:      fmt.Sprintf("Detected %d watermark(s)", len(analysis.Detections)),
		TotalPages:   analysis.TotalPages,
		SampledPages: analysis.SampledPages,
		SkippedPages: analysis.Skipped,
		Watermarks:   toWatermarks(analysis.Detections),
	}
	if !analysis.Found() {
		out.Status, out.Message = pdf.StatusNoWatermarks, noWatermarksMessage
	}
	return nil, out, nil
}

// handleRemove handles the remove_watermarks tool invocation.
func (s *Server) handleRemove(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RemoveInput,
) (*mcp.CallToolResult, RemoveOutput, error) {
	if strings.TrimSpace(input.Path) == "" {
		return nil, RemoveOutput{}, pdf.NewError(pdf.ErrorCodeInvalidParameter, "remove_watermarks", "path is required")
	}
	output := input.Output
	if output == "" {
		output = defaultOutput(input.Path)
	}
	src := pdf.Source{Path: input.Path}

	var (
		report *pdf.Report
		err    error
	)
	if strings.TrimSpace(input.Watermarks) != "" {
		candidates, perr := pdf.ParseCandidates([]byte(input.Watermarks))
		if perr != nil {
			return nil, RemoveOutput{}, perr
		}
		report, err = s.cleaner.Remove(ctx, src, output, candidates)
	} else {
		opts, oerr := s.options(input.Sensitivity, input.SamplePages, "")
		if oerr != nil {
			return nil, RemoveOutput{}, oerr
		}
		report, err = s.cleaner.Clean(ctx, src, output, opts)
	}
	if err != nil {
		return nil, RemoveOutput{}, err
	}

	out := RemoveOutput{Status: report.Status, Message: noWatermarksMessage}
	if report.Analysis != nil {
		out.Watermarks = toWatermarks(report.Analysis.Detections)
	}
	if report.Status == pdf.StatusNoWatermarks {
		return nil, out, nil
	}
	out.Output = report.Output
	out.RemovedCount = report.Removal.Removed
	out.PagesTouched = report.Removal.Pages
	out.Skipped = report.Removal.Skipped
	out.Message = fmt.Sprintf("Removed %d watermark occurrence(s) on %d page(s)", out.RemovedCount, out.PagesTouched)
	return nil, out, nil
}
