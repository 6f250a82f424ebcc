package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/pattern-metrics/internal/core"
	"github.com/valter-silva-au/pattern-metrics/internal/observability"
)

var (
	eventsSince string
	eventsType  string
	eventsLevel string
	eventsJSON  bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List audit-trail events",
	Long: `List entries from the JSONL audit trail configured under events.path.

The trail holds pattern.recorded events from the MCP server, ingest.completed
events from file replays, and alert.triggered events from alert evaluation.
Use --since with a window such as 24h or 7d to limit how far back to look.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized (check events.enabled in .pmconfig)")
		}

		filter := observability.EventFilter{
			Type:  eventsType,
			Level: strings.ToUpper(eventsLevel),
		}
		if eventsSince != "" {
			window, err := core.ParseWindow(eventsSince)
			if err != nil {
				return fmt.Errorf("invalid --since: %w", err)
			}
			since := time.Now().UTC().Add(-window)
			filter.Since = &since
		}

		events, err := EventLog.Read(filter)
		if err != nil {
			return fmt.Errorf("reading events: %w", err)
		}

		out := cmd.OutOrStdout()
		if eventsJSON {
			if events == nil {
				events = []observability.Event{}
			}
			data, err := json.MarshalIndent(events, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding events: %w", err)
			}
			_, _ = fmt.Fprintln(out, string(data))
			return nil
		}

		if len(events) == 0 {
			_, _ = fmt.Fprintln(out, "No events found.")
			return nil
		}
		for _, e := range events {
			_, _ = fmt.Fprintf(out, "%s  %-5s  %-17s  %s\n",
				e.Time.UTC().Format("2006-01-02 15:04:05"), e.Level, e.Type, e.Message)
		}
		_, _ = fmt.Fprintf(out, "\n%d event(s)\n", len(events))
		return nil
	},
}

// completeEventTypes returns the event types written to the audit trail.
func completeEventTypes(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		observability.EventPatternRecorded,
		observability.EventIngestCompleted,
		observability.EventAlertTriggered,
	}, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	eventsCmd.Flags().StringVar(&eventsSince, "since", "", "Only show events from this trailing window (e.g. 24h, 7d)")
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "Only show events of this type (e.g. pattern.recorded)")
	eventsCmd.Flags().StringVar(&eventsLevel, "level", "", "Only show events at this level (INFO, WARN, ERROR)")
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "Print events as JSON")
	_ = eventsCmd.RegisterFlagCompletionFunc("since", completeWindows)
	_ = eventsCmd.RegisterFlagCompletionFunc("type", completeEventTypes)
	rootCmd.AddCommand(eventsCmd)
}
