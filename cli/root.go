// Package cli wires configuration, logging and the document engine into
// cobra commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pdf_watermark/config"
	"pdf_watermark/logger"
	"pdf_watermark/pdf"
	"pdf_watermark/pdf/mutool"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// cfg is loaded before any subcommand runs
	cfg *config.Config

	// openerFunc builds the document access layer; replaced in tests
	openerFunc = newOpener
)

var rootCmd = &cobra.Command{
	Use:   "pdf-watermark",
	Short: "Detect and remove text watermarks from PDF files",
	Long: `pdf-watermark finds text fragments that repeat at the same position,
color and size across the pages of a PDF and masks them.

It runs as a one-shot CLI, an HTTP service or an MCP server.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	if logFormat != "" {
		loaded.Log.Format = logFormat
	}
	cfg = loaded

	logger.Init(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "pdf_watermark",
		Writer:  cmd.ErrOrStderr(),
	})
	return nil
}

func newOpener(c *config.Config) (pdf.Opener, error) {
	tool := mutool.New(mutool.Config{Path: c.Mutool.Path, Timeout: c.Mutool.Timeout})
	if err := tool.CheckAvailable(); err != nil {
		return nil, fmt.Errorf("%w\n%s", err, mutool.InstallInstructions)
	}
	return tool, nil
}

// newCleaner builds a cleaner from the loaded config
func newCleaner() (*pdf.Cleaner, error) {
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	opener, err := openerFunc(cfg)
	if err != nil {
		return nil, err
	}
	return pdf.NewCleaner(opener, policy), nil
}

// detectionFlags are shared by analyze and remove
type detectionFlags struct {
	sensitivity float64
	samplePages int
	pages       string
	workers     int
}

func (f *detectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.sensitivity, "sensitivity", "s", pdf.DefaultThresholdRatio, "fraction of sampled pages a fragment must appear on (0-1)")
	cmd.Flags().IntVar(&f.samplePages, "sample-pages", pdf.DefaultSampleBudget, "maximum number of pages to sample")
	cmd.Flags().StringVar(&f.pages, "pages", "", "inspect these 1-based pages instead of sampling (e.g. 1,3-5)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 1, "pages extracted in parallel")
}

// options starts from the config defaults and applies the flags the user set
func (f *detectionFlags) options(cmd *cobra.Command) (pdf.Options, error) {
	opts := cfg.Options()
	if cmd.Flags().Changed("sensitivity") {
		opts.ThresholdRatio = f.sensitivity
	}
	if cmd.Flags().Changed("sample-pages") {
		opts.SampleBudget = f.samplePages
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = f.workers
	}
	if f.pages != "" {
		pages, err := pdf.ParsePageSpecifier(f.pages)
		if err != nil {
			return opts, err
		}
		opts.Pages = pages
	}
	return opts, opts.Validate()
}
