package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/valter-silva-au/pattern-metrics/pkg/models"
)

// DefaultWindow is the trailing window used when none is configured.
const DefaultWindow = time.Hour

// DefaultRecentWindow is how many trailing confidence values feed
// ConfidenceTrends.RecentAverage.
const DefaultRecentWindow = 10

// Clock returns the current wall-clock instant.
type Clock func() time.Time

// MetaLevelProgression summarises the recorded meta-levels. Max and Min are
// nil until at least one observation has been recorded.
type MetaLevelProgression struct {
	Average float64  `json:"average"`
	Trend   float64  `json:"trend"`
	Max     *float64 `json:"max,omitempty"`
	Min     *float64 `json:"min,omitempty"`
}

// ConfidenceTrends summarises the recorded confidence scores. RecentAverage
// and Volatility are nil until at least one observation has been recorded.
type ConfidenceTrends struct {
	Average       float64  `json:"average"`
	Trend         float64  `json:"trend"`
	RecentAverage *float64 `json:"recent_average,omitempty"`
	Volatility    *float64 `json:"volatility,omitempty"`
}

// WindowMetrics aggregates the observations that fall inside a trailing window.
type WindowMetrics struct {
	WindowSize        string  `json:"window_size"`
	PatternCount      int     `json:"pattern_count"`
	AverageConfidence float64 `json:"average_confidence"`
	AverageMetaLevel  float64 `json:"average_meta_level"`
	PatternFrequency  float64 `json:"pattern_frequency"` // observations per second of window
}

// PatternLog records pattern observations and derives summaries from them.
// Record and RecordAt are the only mutators; every other method is a pure read.
type PatternLog interface {
	Record(obs models.Observation)
	RecordAt(obs models.Observation, at time.Time)
	Len() int
	PatternTypeCounts() map[string]int
	MetaLevelProgression() MetaLevelProgression
	ScriptTypeDistribution() map[string]float64
	ConfidenceTrends() ConfidenceTrends
	TimeWindowedMetrics(window time.Duration) *WindowMetrics
}

// PatternLogOption configures a PatternLog created by NewMemoryPatternLog.
type PatternLogOption func(*memoryPatternLog)

// WithClock replaces time.Now as the source of observation timestamps and of
// the window reference instant.
func WithClock(clock Clock) PatternLogOption {
	return func(l *memoryPatternLog) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithRecentWindow sets how many trailing confidence values are averaged for
// RecentAverage. Values below 1 are ignored.
func WithRecentWindow(n int) PatternLogOption {
	return func(l *memoryPatternLog) {
		if n >= 1 {
			l.recentWindow = n
		}
	}
}

// memoryPatternLog keeps four index-aligned, append-only logs. A single lock
// covers all of them so a reader never observes a half-applied Record.
type memoryPatternLog struct {
	mu           sync.RWMutex
	clock        Clock
	recentWindow int

	patternCounts map[string]int
	scriptCounts  map[string]int
	metaLevels    []float64
	confidence    []float64
	timestamps    []time.Time
}

// NewMemoryPatternLog creates an empty in-memory PatternLog. Memory grows with
// every observation; nothing is ever evicted.
func NewMemoryPatternLog(opts ...PatternLogOption) PatternLog {
	l := &memoryPatternLog{
		clock:         time.Now,
		recentWindow:  DefaultRecentWindow,
		patternCounts: make(map[string]int),
		scriptCounts:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends obs stamped with the log's clock. No field is validated:
// empty strings are ordinary keys and NaN or out-of-range values flow into
// the summaries unchanged.
func (l *memoryPatternLog) Record(obs models.Observation) {
	l.RecordAt(obs, l.clock())
}

func (l *memoryPatternLog) now() time.Time { return l.clock() }

// RecordAt appends obs stamped with at instead of the clock. Used when
// replaying observations that carry their own detection time.
func (l *memoryPatternLog) RecordAt(obs models.Observation, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.patternCounts[obs.PatternType] = l.patternCounts[obs.PatternType] + 1
	l.metaLevels = append(l.metaLevels, obs.MetaLevel)
	l.scriptCounts[obs.ScriptType] = l.scriptCounts[obs.ScriptType] + 1
	l.confidence = append(l.confidence, obs.Confidence)
	l.timestamps = append(l.timestamps, at)
}

// Len returns the number of recorded observations.
func (l *memoryPatternLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.timestamps)
}

// PatternTypeCounts returns a copy of the per-type occurrence counts.
func (l *memoryPatternLog) PatternTypeCounts() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[string]int, len(l.patternCounts))
	for k, v := range l.patternCounts {
		counts[k] = v
	}
	return counts
}

// MetaLevelProgression summarises meta-levels; Max and Min stay nil on an empty log.
func (l *memoryPatternLog) MetaLevelProgression() MetaLevelProgression {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.metaLevels) == 0 {
		return MetaLevelProgression{}
	}

	lo, hi := minMax(l.metaLevels)
	return MetaLevelProgression{
		Average: mean(l.metaLevels),
		Trend:   linearTrend(l.metaLevels),
		Max:     &hi,
		Min:     &lo,
	}
}

// ScriptTypeDistribution returns each script type's share of all
// observations. The result is empty, never nil, when nothing was recorded.
func (l *memoryPatternLog) ScriptTypeDistribution() map[string]float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, c := range l.scriptCounts {
		total += c
	}

	dist := make(map[string]float64, len(l.scriptCounts))
	if total == 0 {
		return dist
	}
	for script, c := range l.scriptCounts {
		dist[script] = float64(c) / float64(total)
	}
	return dist
}

// ConfidenceTrends summarises confidence; RecentAverage and Volatility stay nil on an empty log.
func (l *memoryPatternLog) ConfidenceTrends() ConfidenceTrends {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := len(l.confidence)
	if n == 0 {
		return ConfidenceTrends{}
	}

	recent := l.confidence
	if n > l.recentWindow {
		recent = l.confidence[n-l.recentWindow:]
	}
	recentAvg := mean(recent)
	volatility := populationStdDev(l.confidence)

	return ConfidenceTrends{
		Average:       mean(l.confidence),
		Trend:         linearTrend(l.confidence),
		RecentAverage: &recentAvg,
		Volatility:    &volatility,
	}
}

// TimeWindowedMetrics aggregates observations stamped at or after
// now-window, where now is read once per call. It returns nil when the log
// is empty, when no observation falls inside the window, or when window is
// not positive. PatternFrequency is normalised to the full window length,
// not to the span the selected observations actually cover.
func (l *memoryPatternLog) TimeWindowedMetrics(window time.Duration) *WindowMetrics {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.timestamps) == 0 || window <= 0 {
		return nil
	}

	windowStart := l.clock().Add(-window)

	var confidence, metaLevels []float64
	for i, ts := range l.timestamps {
		if ts.Before(windowStart) {
			continue
		}
		confidence = append(confidence, l.confidence[i])
		metaLevels = append(metaLevels, l.metaLevels[i])
	}

	if len(confidence) == 0 {
		return nil
	}

	return &WindowMetrics{
		WindowSize:        FormatWindow(window),
		PatternCount:      len(confidence),
		AverageConfidence: mean(confidence),
		AverageMetaLevel:  mean(metaLevels),
		PatternFrequency:  float64(len(confidence)) / window.Seconds(),
	}
}

// FormatWindow renders d as "H:MM:SS", prefixed with "N day(s), " for
// durations of a day or more and suffixed with ".ffffff" when d has a
// sub-second part. Negative durations borrow whole days, so -1h renders as
// "-1 day, 23:00:00".
func FormatWindow(d time.Duration) string {
	const usPerDay = int64(24 * time.Hour / time.Microsecond)

	us := d.Microseconds()
	days := us / usPerDay
	if us%usPerDay < 0 {
		days--
	}
	rem := us - days*usPerDay

	hours := rem / int64(time.Hour/time.Microsecond)
	rem %= int64(time.Hour / time.Microsecond)
	minutes := rem / int64(time.Minute/time.Microsecond)
	rem %= int64(time.Minute / time.Microsecond)
	seconds := rem / int64(time.Second/time.Microsecond)
	micros := rem % int64(time.Second/time.Microsecond)

	s := fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	if micros != 0 {
		s += fmt.Sprintf(".%06d", micros)
	}
	if days != 0 {
		plural := "s"
		if days == 1 || days == -1 {
			plural = ""
		}
		s = fmt.Sprintf("%d day%s, %s", days, plural, s)
	}
	return s
}
