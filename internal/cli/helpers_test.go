package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valter-silva-au/pattern-metrics/internal/observability"
)

var testNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

// writeObservations writes content to a file named name in a temp dir.
func writeObservations(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// withTestServices swaps the package-level services for deterministic
// ones and restores them when the test ends.
func withTestServices(t *testing.T) {
	t.Helper()
	origEvents, origNotifier := EventLog, Notifier
	origThresholds, origWindow := AlertThresholds, DefaultWindow
	origFactory, origLiveFactory := NewPatternLog, NewLivePatternLog
	t.Cleanup(func() {
		EventLog, Notifier = origEvents, origNotifier
		AlertThresholds, DefaultWindow = origThresholds, origWindow
		NewPatternLog, NewLivePatternLog = origFactory, origLiveFactory
	})

	EventLog = nil
	Notifier = nil
	AlertThresholds = observability.DefaultAlertThresholds()
	DefaultWindow = time.Hour
	NewPatternLog = func() observability.PatternLog {
		return observability.NewMemoryPatternLog(observability.WithClock(func() time.Time { return testNow }))
	}
}

// lowConfidenceJSONL holds five observations that trip only confidence_low.
const lowConfidenceJSONL = `{"pattern_type":"recursion","meta_level":1,"script_type":"latin","confidence":0.2}
{"pattern_type":"recursion","meta_level":1,"script_type":"latin","confidence":0.2}
{"pattern_type":"analogy","meta_level":1,"script_type":"greek","confidence":0.2}
{"pattern_type":"analogy","meta_level":1,"script_type":"greek","confidence":0.2}
{"pattern_type":"analogy","meta_level":1,"script_type":"greek","confidence":0.2}
`
