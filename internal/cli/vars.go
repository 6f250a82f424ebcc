package cli

import "github.com/valter-silva-au/pattern-metrics/internal/observability"

// Service instances, set during app initialization in app.go.
var (
	EventLog observability.EventLog
	Notifier observability.Notifier
)

// Settings from .pmconfig, overwritten by app.go.
var (
	AlertThresholds = observability.DefaultAlertThresholds()
	DefaultWindow   = observability.DefaultWindow

	// NewPatternLog builds an empty log for replaying an observation file.
	// Replays are covered by a single ingest.completed event.
	NewPatternLog = func() observability.PatternLog {
		return observability.NewMemoryPatternLog()
	}

	// NewLivePatternLog builds the log behind mcp serve, which audits every
	// recorded observation.
	NewLivePatternLog = func() observability.PatternLog {
		return NewPatternLog()
	}
)
