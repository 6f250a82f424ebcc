package observability

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valter-silva-au/pattern-metrics/pkg/models"
)

// auditedPatternLog writes a pattern.recorded event for every observation it
// forwards to the wrapped PatternLog. Queries pass straight through.
type auditedPatternLog struct {
	PatternLog
	events EventLog
}

// NewAuditedPatternLog wraps log so each recorded observation is also written
// to events. A nil events returns log unchanged.
func NewAuditedPatternLog(log PatternLog, events EventLog) PatternLog {
	if events == nil {
		return log
	}
	return &auditedPatternLog{PatternLog: log, events: events}
}

// clocked is implemented by logs that stamp observations with their own clock.
type clocked interface {
	now() time.Time
}

// Record stamps obs once so the stored timestamp and the audit event agree.
func (a *auditedPatternLog) Record(obs models.Observation) {
	at := time.Now()
	if c, ok := a.PatternLog.(clocked); ok {
		at = c.now()
	}
	a.RecordAt(obs, at)
}

func (a *auditedPatternLog) RecordAt(obs models.Observation, at time.Time) {
	a.PatternLog.RecordAt(obs, at)
	a.audit(obs, at.UTC())
}

// audit is best effort: a failing audit trail never blocks recording.
func (a *auditedPatternLog) audit(obs models.Observation, at time.Time) {
	_ = a.events.Write(Event{
		Time:    at,
		Level:   "INFO",
		Type:    EventPatternRecorded,
		Message: fmt.Sprintf("pattern %q recorded", obs.PatternType),
		Data: map[string]any{
			"observation_id": uuid.NewString(),
			"pattern_type":   obs.PatternType,
			"script_type":    obs.ScriptType,
			"meta_level":     obs.MetaLevel,
			"confidence":     obs.Confidence,
		},
	})
}
