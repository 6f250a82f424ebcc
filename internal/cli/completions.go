package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// observationFileExts are the extensions ingest can decode.
var observationFileExts = []string{"jsonl", "ndjson", "json", "yaml", "yml"}

// completeObservationFiles limits --input completion to observation files.
func completeObservationFiles(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return observationFileExts, cobra.ShellCompDirectiveFilterFileExt
}

// completeWindows returns a completion function for common window values.
func completeWindows(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	windows := []string{
		"15m\tLast 15 minutes",
		"30m\tLast 30 minutes",
		"1h\tLast hour",
		"6h\tLast 6 hours",
		"24h\tLast day",
		"7d\tLast week",
		"30d\tLast 30 days",
	}

	var out []string
	for _, w := range windows {
		if toComplete == "" || strings.HasPrefix(w, toComplete) {
			out = append(out, w)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// registerInputCompletions registers flag completion functions on a command
// that reads an observation file (analyze, alerts, dashboard).
func registerInputCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("input", completeObservationFiles)
	if cmd.Flags().Lookup("window") != nil {
		_ = cmd.RegisterFlagCompletionFunc("window", completeWindows)
	}
}
