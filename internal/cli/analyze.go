package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/pattern-metrics/internal/observability"
)

var (
	analyzeInput  string
	analyzeWindow string
	analyzeJSON   bool
)

// analysisReport is the --json shape of `pmetrics analyze`.
type analysisReport struct {
	Observations           int                                `json:"observations"`
	PatternTypeCounts      map[string]int                     `json:"pattern_type_counts"`
	MetaLevelProgression   observability.MetaLevelProgression `json:"meta_level_progression"`
	ScriptTypeDistribution map[string]float64                 `json:"script_type_distribution"`
	ConfidenceTrends       observability.ConfidenceTrends     `json:"confidence_trends"`
	TimeWindowedMetrics    *observability.WindowMetrics       `json:"time_windowed_metrics"`
}

func buildReport(log observability.PatternLog, window time.Duration) analysisReport {
	return analysisReport{
		Observations:           log.Len(),
		PatternTypeCounts:      log.PatternTypeCounts(),
		MetaLevelProgression:   log.MetaLevelProgression(),
		ScriptTypeDistribution: log.ScriptTypeDistribution(),
		ConfidenceTrends:       log.ConfidenceTrends(),
		TimeWindowedMetrics:    log.TimeWindowedMetrics(window),
	}
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarise an observation file",
	Long: `Load pattern observations from a JSONL, JSON or YAML file and print the
pattern type counts, meta-level progression, script type distribution,
confidence trends and the metrics for the trailing time window.

Observations without an observed_at timestamp are stamped with the current
time as they are loaded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := resolveWindow(analyzeWindow)
		if err != nil {
			return fmt.Errorf("parsing --window: %w", err)
		}

		log, err := loadPatternLog(analyzeInput)
		if err != nil {
			return err
		}

		report := buildReport(log, window)
		out := cmd.OutOrStdout()

		if analyzeJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting report as JSON: %w", err)
			}
			_, _ = fmt.Fprintln(out, string(data))
			return nil
		}

		printReport(out, report, window)
		return nil
	},
}

func printReport(out io.Writer, r analysisReport, window time.Duration) {
	_, _ = fmt.Fprintf(out, "%s\n\n", headerStyle.Render(fmt.Sprintf("Pattern metrics (%d observations)", r.Observations)))

	_, _ = fmt.Fprintln(out, "  Pattern types:")
	if len(r.PatternTypeCounts) == 0 {
		_, _ = fmt.Fprintln(out, "    none recorded")
	}
	for _, k := range sortedKeys(r.PatternTypeCounts) {
		_, _ = fmt.Fprintf(out, "    %-20s %d\n", displayName(k)+":", r.PatternTypeCounts[k])
	}

	_, _ = fmt.Fprintln(out, "\n  Script types:")
	if len(r.ScriptTypeDistribution) == 0 {
		_, _ = fmt.Fprintln(out, "    none recorded")
	}
	for _, k := range sortedKeys(r.ScriptTypeDistribution) {
		_, _ = fmt.Fprintf(out, "    %-20s %.1f%%\n", displayName(k)+":", r.ScriptTypeDistribution[k]*100)
	}

	meta := r.MetaLevelProgression
	_, _ = fmt.Fprintln(out, "\n  Meta-level:")
	_, _ = fmt.Fprintf(out, "    %-20s %.4f\n", "Average:", meta.Average)
	_, _ = fmt.Fprintf(out, "    %-20s %+.4f\n", "Trend:", meta.Trend)
	_, _ = fmt.Fprintf(out, "    %-20s %s\n", "Max:", formatOptional(meta.Max))
	_, _ = fmt.Fprintf(out, "    %-20s %s\n", "Min:", formatOptional(meta.Min))

	conf := r.ConfidenceTrends
	_, _ = fmt.Fprintln(out, "\n  Confidence:")
	_, _ = fmt.Fprintf(out, "    %-20s %.4f\n", "Average:", conf.Average)
	_, _ = fmt.Fprintf(out, "    %-20s %+.4f\n", "Trend:", conf.Trend)
	_, _ = fmt.Fprintf(out, "    %-20s %s\n", "Recent average:", formatOptional(conf.RecentAverage))
	_, _ = fmt.Fprintf(out, "    %-20s %s\n", "Volatility:", formatOptional(conf.Volatility))

	_, _ = fmt.Fprintf(out, "\n  Window (%s):\n", observability.FormatWindow(window))
	wm := r.TimeWindowedMetrics
	if wm == nil {
		_, _ = fmt.Fprintln(out, "    no observations in window")
		return
	}
	_, _ = fmt.Fprintf(out, "    %-20s %d\n", "Patterns:", wm.PatternCount)
	_, _ = fmt.Fprintf(out, "    %-20s %.4f\n", "Avg confidence:", wm.AverageConfidence)
	_, _ = fmt.Fprintf(out, "    %-20s %.4f\n", "Avg meta-level:", wm.AverageMetaLevel)
	_, _ = fmt.Fprintf(out, "    %-20s %.6f/s\n", "Frequency:", wm.PatternFrequency)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}

// displayName renders the empty pattern or script type visibly.
func displayName(k string) string {
	if k == "" {
		return "(empty)"
	}
	return k
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "Observation file (.jsonl, .ndjson, .json, .yaml, .yml)")
	analyzeCmd.Flags().StringVar(&analyzeWindow, "window", "", "Trailing window for time-windowed metrics (e.g. 30m, 1h, 7d); defaults to window.default")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output the report as JSON")
	registerInputCompletions(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}
