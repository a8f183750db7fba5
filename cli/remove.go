package cli

import (
	"fmt"
	"os"

	"pdf_watermark/pdf"

	"github.com/spf13/cobra"
)

// DefaultOutput is where remove writes when --output is not given
const DefaultOutput = "cleaned_output.pdf"

var (
	removeFlags      detectionFlags
	removeOutput     string
	removeWatermarks string
)

var removeCmd = &cobra.Command{
	Use:   "remove <pdf>",
	Short: "Detect and remove text watermarks, writing a cleaned copy",
	Long: `Detects recurring text watermarks and masks every occurrence that sits on
the detected position. The input file is never modified.

Pass --watermarks with the output of "analyze --json" to remove a reviewed
list instead of running detection again.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeFlags.register(removeCmd)
	removeCmd.Flags().StringVarP(&removeOutput, "output", "o", DefaultOutput, "path of the cleaned PDF")
	removeCmd.Flags().StringVar(&removeWatermarks, "watermarks", "", "JSON file of watermarks to remove (skips detection)")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	opts, err := removeFlags.options(cmd)
	if err != nil {
		return err
	}
	var candidates []pdf.Candidate
	if removeWatermarks != "" {
		data, err := os.ReadFile(removeWatermarks)
		if err != nil {
			return fmt.Errorf("read watermarks: %w", err)
		}
		if candidates, err = pdf.ParseCandidates(data); err != nil {
			return err
		}
	}
	cleaner, err := newCleaner()
	if err != nil {
		return err
	}

	src := pdf.Source{Path: args[0]}
	var report *pdf.Report
	if removeWatermarks != "" {
		report, err = cleaner.Remove(cmd.Context(), src, removeOutput, candidates)
	} else {
		report, err = cleaner.Clean(cmd.Context(), src, removeOutput, opts)
	}
	if err != nil {
		return fmt.Errorf("removal failed: %w", err)
	}

	if report.Status == pdf.StatusNoWatermarks {
		fmt.Fprintln(cmd.OutOrStdout(), noWatermarksMessage)
		return nil
	}
	if report.Analysis != nil {
		printAnalysis(cmd, report.Analysis)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d watermark occurrence(s) on %d page(s).\n", report.Removal.Removed, report.Removal.Pages)
	if report.Removal.Skipped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d failed page operation(s).\n", report.Removal.Skipped)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved cleaned PDF to %s\n", report.Output)
	return nil
}
