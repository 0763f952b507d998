package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/ppiankov/artexplorer/internal/pipeline"
	"github.com/ppiankov/artexplorer/internal/worker"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	checkConcurrency int
	checkOutput      string
	checkTimeout     time.Duration
	checkFailOn      string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Audit catalogue records listed in a file",
	Long: `Check audits painting records in parallel:
- Read artist/painting keys from the input file (one per line, # comments)
- Fetch each painting and its facts from the backend
- Flag missing paintings, facts count drift, out-of-bounds regions,
  unsupported geometry, slug collisions and dead attribution links

Example:
  artexplorer check paintings.txt
  artexplorer check paintings.txt --concurrency 8 --output report.json
  artexplorer check paintings.txt --output report.yaml --fail-on warning`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().IntVar(&checkConcurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "", "write reports to this path (.json, .yaml or .yml)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Minute, "total timeout for the check")
	checkCmd.Flags().StringVar(&checkFailOn, "fail-on", "critical", "exit non-zero at this severity or worse (info, warning, critical, never)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	threshold, err := parseFailOn(checkFailOn)
	if err != nil {
		return err
	}

	workers := cfg.Concurrency.Workers
	if checkConcurrency > 0 {
		workers = checkConcurrency
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "  Art Explorer Catalogue Check\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "  Input file:   %s\n", file)
	fmt.Fprintf(out, "  Backend:      %s\n", cfg.API.BaseURL)
	fmt.Fprintf(out, "  Workers:      %d\n", workers)
	fmt.Fprintf(out, "  Timeout:      %v\n", checkTimeout)
	fmt.Fprintf(out, "\n")

	p := pipeline.NewPipeline(cfg, pipeline.Deps{Logger: logger})
	processor := worker.NewBatchProcessor(p, workers)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	reports := summarize(out, results)

	if checkOutput != "" {
		if err := writeReports(checkOutput, reports); err != nil {
			return err
		}
		fmt.Fprintf(out, "  Output:    %s\n\n", checkOutput)
	}

	if threshold == "" {
		return nil
	}
	for _, r := range reports {
		if severityAtLeast(r.Worst(), threshold) {
			return fmt.Errorf("check failed: findings at %s severity or worse", threshold)
		}
	}
	return nil
}

// summarize prints one line per painting plus totals and returns the reports
func summarize(w io.Writer, results []*worker.CheckResult) []*model.Report {
	reports := make([]*model.Report, 0, len(results))
	clean, flagged, failed := 0, 0, 0

	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(w, "✗ %s: %v\n", result.Key, result.Error)
			continue
		}

		report := result.Report
		reports = append(reports, report)
		if len(report.Signals) == 0 {
			clean++
			fmt.Fprintf(w, "✓ %s (%d facts)\n", report.Key, report.FactsCount)
			continue
		}

		flagged++
		fmt.Fprintf(w, "! %s (%d facts, worst: %s)\n", report.Key, report.FactsCount, report.Worst())
		for _, s := range report.Signals {
			fmt.Fprintf(w, "    [%s] %s: %s\n", s.Severity, s.Type, s.Description)
		}
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Check Complete\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Total:     %d paintings\n", len(results))
	fmt.Fprintf(w, "  Clean:     %d\n", clean)
	fmt.Fprintf(w, "  Flagged:   %d\n", flagged)
	fmt.Fprintf(w, "  Failures:  %d\n", failed)
	fmt.Fprintf(w, "\n")

	return reports
}

// writeReports encodes reports as JSON or YAML depending on the extension
func writeReports(path string, reports []*model.Report) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(reports)
	case ".json", "":
		data, err = json.MarshalIndent(reports, "", "  ")
	default:
		return fmt.Errorf("unsupported output format: %s", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	return nil
}

func parseFailOn(s string) (model.SignalSeverity, error) {
	switch model.SignalSeverity(strings.ToLower(s)) {
	case model.SeverityInfo:
		return model.SeverityInfo, nil
	case model.SeverityWarning:
		return model.SeverityWarning, nil
	case model.SeverityCritical:
		return model.SeverityCritical, nil
	}
	if strings.EqualFold(s, "never") {
		return "", nil
	}
	return "", fmt.Errorf("invalid --fail-on value: %q", s)
}

func severityAtLeast(s, threshold model.SignalSeverity) bool {
	order := map[model.SignalSeverity]int{
		model.SeverityInfo:     1,
		model.SeverityWarning:  2,
		model.SeverityCritical: 3,
	}
	return order[s] >= order[threshold] && order[s] > 0
}
