package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	pmmcp "github.com/valter-silva-au/pattern-metrics/internal/mcp"
	"github.com/valter-silva-au/pattern-metrics/internal/observability"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the pmetrics MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pmetrics MCP server on stdio",
	Long: `Start the pmetrics MCP server on stdio transport.

The server holds a live pattern log for the lifetime of the process and
exposes it as MCP tools: record_pattern, get_pattern_counts,
get_meta_level_progression, get_script_distribution, get_confidence_trends,
get_time_windowed_metrics, get_alerts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := NewLivePatternLog()
		engine := observability.NewAlertEngine(log, EventLog, AlertThresholds)

		srv := pmmcp.NewServer(log, engine, DefaultWindow, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
