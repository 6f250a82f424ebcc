package cli

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/pattern-metrics/internal/core"
	"github.com/valter-silva-au/pattern-metrics/internal/ingest"
	"github.com/valter-silva-au/pattern-metrics/internal/observability"
)

// loadPatternLog reads the observation file at path into a fresh PatternLog
// and records an ingest.completed event.
func loadPatternLog(path string) (observability.PatternLog, error) {
	if path == "" {
		return nil, fmt.Errorf("--input is required")
	}

	observations, err := ingest.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading observations: %w", err)
	}

	log := NewPatternLog()
	count := ingest.Load(log, observations)

	if EventLog != nil {
		_ = EventLog.Write(observability.Event{
			Level:   "INFO",
			Type:    observability.EventIngestCompleted,
			Message: fmt.Sprintf("ingested %d observations", count),
			Data: map[string]any{
				"source": path,
				"count":  count,
			},
		})
	}

	return log, nil
}

// resolveWindow parses a --window flag value, falling back to the configured
// default when the flag is empty.
func resolveWindow(flag string) (time.Duration, error) {
	if flag == "" {
		return DefaultWindow, nil
	}
	return core.ParseWindow(flag)
}
