package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/upload"
	"github.com/custodia-labs/pagelens/internal/core/domain"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <screenshot>...",
	Short: "Analyse landing page screenshots",
	Long: `Analyse one or more screenshots of a landing page.

Pass the screenshots in page order, top of the page first. Long captures are
split into overlapping tiles automatically.

Examples:
  pagelens analyze page.png
  pagelens analyze top.png middle.png bottom.png --json
  pagelens analyze page.png -o result.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "print the full result as JSON")
	analyzeCmd.Flags().StringP("output", "o", "", "write the full result as JSON to a file")
	analyzeCmd.Flags().Duration("timeout", 0, "give up after this long (0 = no limit)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not initialised")
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("getting output flag: %w", err)
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return fmt.Errorf("getting timeout flag: %w", err)
	}

	images, err := upload.ReadFiles(args, maxUploadBytes())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	analysis, err := analysisService.Analyze(ctx, images)
	if err != nil {
		return err
	}

	if output != "" {
		data, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if err := os.WriteFile(output, append(data, '\n'), 0600); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	printAnalysis(cmd.OutOrStdout(), analysis)
	if output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Full result written to "+output))
	}
	return nil
}

// maxUploadBytes returns the configured submission ceiling.
func maxUploadBytes() int64 {
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			return settings.Input.MaxUploadBytes
		}
	}
	return domain.DefaultPipelineSettings().Input.MaxUploadBytes
}

func printAnalysis(w io.Writer, a *domain.Analysis) {
	name := a.Summary.ProductName
	if name == "" {
		name = "Untitled page"
	}
	header := titleStyle.Render(name)
	if a.Summary.BrandName != "" {
		header += " " + mutedStyle.Render("by "+a.Summary.BrandName)
	}

	lines := []string{header}
	if a.Summary.Category != "" {
		lines = append(lines, "Category: "+a.Summary.Category)
	}
	if a.Summary.OverallScore != nil {
		score := *a.Summary.OverallScore
		lines = append(lines, "Score:    "+scoreStyle(score).Render(fmt.Sprintf("%d/100", score)))
	}
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("%d image(s), %d tile(s), %d attempt(s), %s",
		a.ImageCount, a.TileCount, a.Attempts, a.Duration.Round(100*time.Millisecond))))

	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))

	printList(w, "Strengths", stringList(a.Result, "strengths"))
	printList(w, "Weaknesses", stringList(a.Result, "weaknesses"))
	printList(w, "Improvements", stringList(a.Result, "conversion_improvement_points"))
}

func printList(w io.Writer, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render(heading))
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

// stringList returns the string items of the array at key.
func stringList(r domain.AnalysisResult, key string) []string {
	raw, ok := r[key].([]any)
	if !ok {
		return nil
	}
	items := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			items = append(items, s)
		}
	}
	return items
}
