package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/pattern-metrics/internal/observability"
)

var (
	alertsInput  string
	alertsNotify bool
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Evaluate alert thresholds against an observation file",
	Long: `Load pattern observations and evaluate the configured alert thresholds.

Alerts fire for low recent confidence, volatile confidence, declining
confidence and declining meta-level. Nothing fires until alerts.min_samples
observations have been loaded. Use --notify to post triggered alerts to the
configured Slack webhook.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if alertsNotify && Notifier == nil {
			return fmt.Errorf("notifier not configured (set notifications.enabled and notifications.slack.webhook_url in .pmconfig)")
		}

		log, err := loadPatternLog(alertsInput)
		if err != nil {
			return err
		}

		alerts, err := observability.NewAlertEngine(log, EventLog, AlertThresholds).Evaluate()
		if err != nil {
			return fmt.Errorf("evaluating alerts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(alerts) == 0 {
			_, _ = fmt.Fprintln(out, "No active alerts.")
			return nil
		}

		sortAlertsBySeverity(alerts)
		_, _ = fmt.Fprintf(out, "%d active alert(s):\n\n", len(alerts))
		for _, alert := range alerts {
			severity := styleForSeverity(string(alert.Severity)).Render(strings.ToUpper(string(alert.Severity)))
			_, _ = fmt.Fprintf(out, "  [%s] %s\n", severity, alert.Message)
			_, _ = fmt.Fprintf(out, "         %s, triggered at %s\n\n", alert.Condition, alert.TriggeredAt.Format("2006-01-02 15:04 UTC"))
		}

		if alertsNotify {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := Notifier.Notify(ctx, alerts); err != nil {
				return fmt.Errorf("sending notifications: %w", err)
			}
			_, _ = fmt.Fprintf(out, "Sent %d alert(s) to Slack.\n", len(alerts))
		}

		return nil
	},
}

// sortAlertsBySeverity orders alerts high first, then medium, then low.
func sortAlertsBySeverity(alerts []observability.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank(string(alerts[i].Severity)) < severityRank(string(alerts[j].Severity))
	})
}

func severityRank(s string) int {
	switch s {
	case "high":
		return 0
	case "medium":
		return 1
	case "low":
		return 2
	default:
		return 3
	}
}

func init() {
	alertsCmd.Flags().StringVar(&alertsInput, "input", "", "Observation file (.jsonl, .ndjson, .json, .yaml, .yml)")
	alertsCmd.Flags().BoolVar(&alertsNotify, "notify", false, "Post triggered alerts to the configured Slack webhook")
	registerInputCompletions(alertsCmd)
	rootCmd.AddCommand(alertsCmd)
}
