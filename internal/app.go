// Package internal provides the App struct that wires all components of
// pattern-metrics together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/pattern-metrics/internal/cli"
	"github.com/valter-silva-au/pattern-metrics/internal/core"
	"github.com/valter-silva-au/pattern-metrics/internal/observability"
	"github.com/valter-silva-au/pattern-metrics/pkg/models"
)

// App holds all service dependencies for pattern-metrics.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Observability
	EventLog        observability.EventLog
	Notifier        observability.Notifier
	AlertThresholds observability.AlertThresholds
}

// NewApp loads configuration from basePath (the directory containing
// .pmconfig) and wires the services into the CLI layer.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Observability ---
	if cfg.EventsEnabled {
		eventLogPath := cfg.EventsPath
		if !filepath.IsAbs(eventLogPath) {
			eventLogPath = filepath.Join(basePath, eventLogPath)
		}
		app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
		if err != nil {
			// Non-fatal: run without an audit trail if the log can't be created.
			app.EventLog = nil
		}
	}

	app.AlertThresholds = observability.AlertThresholds{
		MinRecentConfidence: cfg.Alerts.MinRecentConfidence,
		MaxVolatility:       cfg.Alerts.MaxVolatility,
		MinConfidenceTrend:  cfg.Alerts.MinConfidenceTrend,
		MinSamples:          cfg.Alerts.MinSamples,
	}
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.Notifications.Slack.WebhookURL)
	}

	// --- Wire CLI package-level variables ---
	recentWindow := cfg.RecentWindow
	events := app.EventLog
	cli.EventLog = app.EventLog
	cli.Notifier = app.Notifier
	cli.AlertThresholds = app.AlertThresholds
	cli.DefaultWindow = cfg.DefaultWindow
	cli.NewPatternLog = func() observability.PatternLog {
		return observability.NewMemoryPatternLog(observability.WithRecentWindow(recentWindow))
	}
	cli.NewLivePatternLog = func() observability.PatternLog {
		return observability.NewAuditedPatternLog(cli.NewPatternLog(), events)
	}

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// configFileNames are the names ResolveBasePath recognises as a .pmconfig.
var configFileNames = []string{
	core.ConfigFileName,
	core.ConfigFileName + ".yaml",
	core.ConfigFileName + ".yml",
}

// ResolveBasePath determines the directory pmetrics reads .pmconfig from.
// It checks the PMETRICS_HOME env var, then walks up from the current
// directory looking for a .pmconfig, then falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("PMETRICS_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		for _, name := range configFileNames {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
