package observability

import (
	"fmt"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	MinRecentConfidence float64 `yaml:"min_recent_confidence" json:"min_recent_confidence"`
	MaxVolatility       float64 `yaml:"max_volatility" json:"max_volatility"`
	MinConfidenceTrend  float64 `yaml:"min_confidence_trend" json:"min_confidence_trend"`
	MinSamples          int     `yaml:"min_samples" json:"min_samples"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		MinRecentConfidence: 0.5,
		MaxVolatility:       0.25,
		MinConfidenceTrend:  -0.05,
		MinSamples:          5,
	}
}

// AlertEngine evaluates alert conditions against recorded observations.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine checks PatternLog summaries against thresholds and writes every
// alert it raises to the event log when one is configured.
type alertEngine struct {
	patterns   PatternLog
	events     EventLog
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates an AlertEngine over patterns. events may be nil.
func NewAlertEngine(patterns PatternLog, events EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		patterns:   patterns,
		events:     events,
		thresholds: thresholds,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate returns the alerts whose conditions currently hold. Nothing fires
// until MinSamples observations have been recorded.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	n := ae.patterns.Len()
	if n == 0 || n < ae.thresholds.MinSamples {
		return nil, nil
	}

	now := ae.now()
	conf := ae.patterns.ConfidenceTrends()
	meta := ae.patterns.MetaLevelProgression()

	var alerts []Alert
	if conf.RecentAverage != nil && *conf.RecentAverage < ae.thresholds.MinRecentConfidence {
		alerts = append(alerts, Alert{
			ID:        "confidence-low",
			Condition: "confidence_low",
			Severity:  SeverityHigh,
			Message: fmt.Sprintf("recent average confidence %.3f is below %.3f",
				*conf.RecentAverage, ae.thresholds.MinRecentConfidence),
			TriggeredAt: now,
		})
	}
	if conf.Volatility != nil && *conf.Volatility > ae.thresholds.MaxVolatility {
		alerts = append(alerts, Alert{
			ID:        "confidence-volatile",
			Condition: "confidence_volatile",
			Severity:  SeverityMedium,
			Message: fmt.Sprintf("confidence volatility %.3f exceeds %.3f",
				*conf.Volatility, ae.thresholds.MaxVolatility),
			TriggeredAt: now,
		})
	}
	if conf.Trend < ae.thresholds.MinConfidenceTrend {
		alerts = append(alerts, Alert{
			ID:        "confidence-declining",
			Condition: "confidence_declining",
			Severity:  SeverityMedium,
			Message: fmt.Sprintf("confidence trend %.4f per observation is below %.4f",
				conf.Trend, ae.thresholds.MinConfidenceTrend),
			TriggeredAt: now,
		})
	}
	if meta.Trend < 0 {
		alerts = append(alerts, Alert{
			ID:          "meta-level-declining",
			Condition:   "meta_level_declining",
			Severity:    SeverityLow,
			Message:     fmt.Sprintf("meta-level trend %.4f per observation is negative", meta.Trend),
			TriggeredAt: now,
		})
	}

	if err := ae.audit(alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (ae *alertEngine) audit(alerts []Alert) error {
	if ae.events == nil {
		return nil
	}
	for _, a := range alerts {
		err := ae.events.Write(Event{
			Time:    a.TriggeredAt,
			Level:   "WARN",
			Type:    EventAlertTriggered,
			Message: a.Message,
			Data: map[string]any{
				"alert_id":  a.ID,
				"condition": a.Condition,
				"severity":  string(a.Severity),
			},
		})
		if err != nil {
			return fmt.Errorf("recording alert %s: %w", a.ID, err)
		}
	}
	return nil
}
