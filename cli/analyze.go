package cli

import (
	"encoding/json"
	"fmt"

	"pdf_watermark/pdf"

	"github.com/spf13/cobra"
)

const noWatermarksMessage = "No consistent watermarks detected."

var (
	analyzeFlags detectionFlags
	analyzeJSON  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <pdf>",
	Short: "Detect recurring text watermarks without modifying the file",
	Long: `Samples pages from the start, middle and end of the document and reports
text fragments that repeat at the same rounded position, color and size.

Use --json to get a list that can be passed to "remove --watermarks".`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeFlags.register(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the detected watermarks as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	opts, err := analyzeFlags.options(cmd)
	if err != nil {
		return err
	}
	cleaner, err := newCleaner()
	if err != nil {
		return err
	}

	analysis, err := cleaner.Analyze(cmd.Context(), pdf.Source{Path: args[0]}, opts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		data, err := json.MarshalIndent(analysis.Detections, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal watermarks: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	printAnalysis(cmd, analysis)
	return nil
}

func printAnalysis(cmd *cobra.Command, a *pdf.Analysis) {
	if !a.Found() {
		fmt.Fprintln(cmd.OutOrStdout(), noWatermarksMessage)
		return
	}
	sampled := len(a.SampledPages) - a.Skipped
	fmt.Fprintf(cmd.OutOrStdout(), "Detected %d watermark(s) on %d sampled page(s) of %d:\n", len(a.Detections), sampled, a.TotalPages)
	for i, d := range a.Detections {
		fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %q at %s color %s size %.1f (%d/%d)\n", i+1, d.Text, d.BBox, d.Color, d.FontSize, d.Count, sampled)
	}
	if a.Skipped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d unreadable page(s).\n", a.Skipped)
	}
}
