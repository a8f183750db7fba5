package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"pdf_watermark/config"
	"pdf_watermark/pdf"
	"pdf_watermark/pdf/pdftest"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stamp = "CONFIDENTIAL"

func stampedDoc() *pdftest.Doc {
	pages := make([][]pdf.TextSpan, 3)
	for i := range pages {
		pages[i] = []pdf.TextSpan{
			pdftest.Span(stamp, 150, 380, 450, 416),
			pdftest.Span(fmt.Sprintf("body %d", i), 72, 100, 300, 112),
		}
	}
	return pdftest.New(pages...)
}

func plainDoc() *pdftest.Doc {
	return pdftest.New([]pdf.TextSpan{pdftest.Span("x", 0, 0, 1, 1)}, []pdf.TextSpan{pdftest.Span("y", 0, 0, 1, 1)})
}

// resetFlags restores every flag to its default so runs do not leak into each other
func resetFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	}
}

// run executes the root command against documents built by factory
func run(t *testing.T, factory func() *pdftest.Doc, args ...string) (string, *pdftest.Opener, error) {
	t.Helper()
	out := new(bytes.Buffer)
	opener, err := execute(t, factory, out, new(bytes.Buffer), args...)
	return out.String(), opener, err
}

// execute runs the root command with the given writers; a nil out keeps the process stdout
func execute(t *testing.T, factory func() *pdftest.Doc, out, errOut io.Writer, args ...string) (*pdftest.Opener, error) {
	t.Helper()
	opener := &pdftest.Opener{Factory: factory}
	origOpener := openerFunc
	openerFunc = func(*config.Config) (pdf.Opener, error) { return opener, nil }
	t.Cleanup(func() {
		openerFunc = origOpener
		resetFlags(rootCmd, analyzeCmd, removeCmd, serveCmd, mcpServeCmd)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	return opener, rootCmd.Execute()
}

// captureStdout redirects os.Stdout while fn runs and returns what was written
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, _, err := run(t, plainDoc, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pdf-watermark version test-version-1.0.0")
}

func TestAnalyzeCmd(t *testing.T) {
	out, opener, err := run(t, stampedDoc, "analyze", "in.pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "Detected 1 watermark(s) on 3 sampled page(s) of 3:")
	assert.Contains(t, out, `[1] "CONFIDENTIAL" at [150 380 450 416] color #808080 size 12.0 (3/3)`)
	assert.Equal(t, []string{"in.pdf"}, opener.Paths())
	assert.Empty(t, opener.Opened()[0].Saved())
}

func TestAnalyzeCmd_NoWatermarks(t *testing.T) {
	out, _, err := run(t, plainDoc, "analyze", "in.pdf")
	require.NoError(t, err)
	assert.Contains(t, out, noWatermarksMessage)
}

func TestAnalyzeCmd_JSONFeedsRemove(t *testing.T) {
	out, _, err := run(t, stampedDoc, "analyze", "in.pdf", "--json")
	require.NoError(t, err)

	cands, err := pdf.ParseCandidates([]byte(out))
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, stamp, cands[0].Text)
}

func TestAnalyzeCmd_Flags(t *testing.T) {
	t.Run("pages restrict the sample", func(t *testing.T) {
		out, _, err := run(t, stampedDoc, "analyze", "in.pdf", "--pages", "1-2", "--sensitivity", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "on 2 sampled page(s) of 3")
	})

	t.Run("sensitivity out of range", func(t *testing.T) {
		_, opener, err := run(t, stampedDoc, "analyze", "in.pdf", "--sensitivity", "1.5")
		assert.True(t, pdf.IsCode(err, pdf.ErrorCodeInvalidParameter))
		assert.Empty(t, opener.Paths())
	})

	t.Run("bad page range", func(t *testing.T) {
		_, _, err := run(t, stampedDoc, "analyze", "in.pdf", "--pages", "0")
		assert.True(t, pdf.IsCode(err, pdf.ErrorCodeInvalidParameter))
	})

	t.Run("missing argument", func(t *testing.T) {
		_, _, err := run(t, stampedDoc, "analyze")
		assert.Error(t, err)
	})
}

func TestRemoveCmd(t *testing.T) {
	output := filepath.Join(t.TempDir(), "clean.pdf")
	out, opener, err := run(t, stampedDoc, "remove", "in.pdf", "-o", output)
	require.NoError(t, err)

	assert.Contains(t, out, "Removed 3 watermark occurrence(s) on 3 page(s).")
	assert.Contains(t, out, "Saved cleaned PDF to "+output)
	assert.FileExists(t, output)
	assert.Equal(t, []string{output}, opener.Opened()[0].Saved())
	for _, p := range opener.Opened()[0].Pages() {
		assert.NotContains(t, p.Texts(), stamp)
	}
}

func TestRemoveCmd_DefaultOutput(t *testing.T) {
	assert.Equal(t, DefaultOutput, removeCmd.Flags().Lookup("output").DefValue)
}

func TestRemoveCmd_NoWatermarks(t *testing.T) {
	output := filepath.Join(t.TempDir(), "clean.pdf")
	out, _, err := run(t, plainDoc, "remove", "in.pdf", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, noWatermarksMessage)
	assert.NoFileExists(t, output)
}

func TestRemoveCmd_SuppliedWatermarks(t *testing.T) {
	dir := t.TempDir()
	marks := filepath.Join(dir, "marks.json")
	require.NoError(t, os.WriteFile(marks, []byte(`[{"kind":"text","text":"CONFIDENTIAL","bbox":[150,380,450,416],"count":3}]`), 0o600))
	output := filepath.Join(dir, "clean.pdf")

	out, _, err := run(t, stampedDoc, "remove", "in.pdf", "--watermarks", marks, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 3 watermark occurrence(s)")
	assert.NotContains(t, out, "Detected", "detection is skipped")

	_, _, err = run(t, stampedDoc, "remove", "in.pdf", "--watermarks", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestNewServer_PortOverride(t *testing.T) {
	_, _, err := run(t, plainDoc, "version")
	require.NoError(t, err)

	servePort = "9191"
	defer func() { servePort = "" }()
	origOpener := openerFunc
	openerFunc = func(*config.Config) (pdf.Opener, error) { return &pdftest.Opener{Factory: plainDoc}, nil }
	defer func() { openerFunc = origOpener }()

	srv, err := newServer()
	require.NoError(t, err)
	assert.Equal(t, ":9191", srv.Addr)
	assert.Equal(t, 3*cfg.Mutool.Timeout, srv.WriteTimeout)
}

func TestNewOpener_MissingBinary(t *testing.T) {
	c := config.Default()
	c.Mutool.Path = "no-such-mutool-binary"
	_, err := newOpener(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mupdf-tools")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"analyze", "remove", "serve", "mcp", "version"} {
		assert.True(t, names[want], want)
	}
}

func TestResultsGoToStdout(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"analyze", "in.pdf"}, "Detected 1 watermark(s)"},
		{[]string{"remove", "in.pdf", "-o", filepath.Join(dir, "out.pdf")}, "Removed 3 watermark occurrence(s)"},
		{[]string{"version"}, "pdf-watermark version"},
	}
	for _, tc := range cases {
		t.Run(tc.args[0], func(t *testing.T) {
			errOut := new(bytes.Buffer)
			stdout := captureStdout(t, func() {
				_, err := execute(t, stampedDoc, nil, errOut, tc.args...)
				require.NoError(t, err)
			})
			assert.Contains(t, stdout, tc.want)
			assert.NotContains(t, errOut.String(), tc.want)
		})
	}
}
