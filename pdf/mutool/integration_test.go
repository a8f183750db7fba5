package mutool_test

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pdf_watermark/pdf"
	"pdf_watermark/pdf/mutool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stampText = "CONFIDENTIAL WATERMARK"

// buildPDF writes a letter-size document whose pages carry a grey 36pt stamp
// and one distinct line of body text each
func buildPDF(pages int) []byte {
	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for i := 0; i < pages; i++ {
		content := fmt.Sprintf("BT /F1 36 Tf 0.75 0.75 0.75 rg 1 0 0 1 100 400 Tm (%s) Tj ET\n"+
			"BT /F1 12 Tf 0 g 1 0 0 1 72 100 Tm (Page %d body text) Tj ET\n", stampText, i+1)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func lookupMutool(t *testing.T) string {
	t.Helper()
	bin, err := exec.LookPath(mutool.DefaultPath)
	if err != nil {
		t.Skip("mutool not installed")
	}
	return bin
}

// grayPixel renders page 1 of path at 72 dpi and returns the gray value at (x, y)
func grayPixel(t *testing.T, bin, path string, x, y int) byte {
	t.Helper()
	out := filepath.Join(t.TempDir(), "page.pgm")
	_, err := mutool.ExecRunner{Timeout: 30 * time.Second}.Run(context.Background(), bin, "draw", "-r", "72", "-c", "gray", "-o", out, path, "1")
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	r := bufio.NewReader(f)
	var magic string
	var w, h, maxVal int
	_, err = fmt.Fscan(r, &magic, &w, &h, &maxVal)
	require.NoError(t, err)
	require.Equal(t, "P5", magic)
	_, err = r.ReadByte()
	require.NoError(t, err)
	require.True(t, x < w && y < h, "pixel (%d,%d) outside %dx%d", x, y, w, h)

	px := make([]byte, w*h)
	_, err = io.ReadFull(r, px)
	require.NoError(t, err)
	return px[y*w+x]
}

func TestMutool_CleansStampedDocument(t *testing.T) {
	bin := lookupMutool(t)
	ctx := context.Background()
	dir := t.TempDir()
	in := filepath.Join(dir, "stamped.pdf")
	out := filepath.Join(dir, "cleaned.pdf")
	require.NoError(t, os.WriteFile(in, buildPDF(5), 0o600))

	tool := mutool.New(mutool.Config{Path: bin, Timeout: time.Minute, TempDir: dir})
	black := pdf.Color(0)
	policy := pdf.DefaultPolicy()
	policy.Fill = &black
	cleaner := pdf.NewCleaner(tool, policy)

	analysis, err := cleaner.Analyze(ctx, pdf.Source{Path: in}, pdf.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 5, analysis.TotalPages)
	require.Len(t, analysis.Detections, 1)
	stamp := analysis.Detections[0]
	assert.Equal(t, stampText, stamp.Text)
	assert.Equal(t, 5, stamp.Count)
	assert.InDelta(t, 36, stamp.FontSize, 0.1)

	rep, err := cleaner.Clean(ctx, pdf.Source{Path: in}, out, pdf.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, pdf.StatusSuccess, rep.Status)
	assert.Equal(t, 5, rep.Removal.Removed)
	assert.Equal(t, 5, rep.Removal.Pages)

	doc, err := tool.Open(ctx, out)
	require.NoError(t, err)
	defer doc.Close()
	require.Equal(t, 5, doc.PageCount())
	for i := 0; i < 5; i++ {
		page, err := doc.Page(ctx, i)
		require.NoError(t, err)
		spans, err := page.Spans(ctx)
		require.NoError(t, err)
		var texts []string
		for _, s := range spans {
			texts = append(texts, strings.TrimSpace(s.Text))
		}
		assert.Equal(t, []string{fmt.Sprintf("Page %d body text", i+1)}, texts)
	}

	box := stamp.BBox
	cx, cy := int((box.X0+box.X1)/2), int((box.Y0+box.Y1)/2)
	assert.Less(t, grayPixel(t, bin, out, cx, cy), byte(64), "fill is painted over the stamp")
	assert.Greater(t, grayPixel(t, bin, out, 300, 600), byte(200), "page background untouched")

	again, err := cleaner.Analyze(ctx, pdf.Source{Path: out}, pdf.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, again.Detections)
}
