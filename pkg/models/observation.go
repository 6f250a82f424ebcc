package models

import "time"

// Observation is one detected pattern handed to the metrics log by an
// upstream detector.
type Observation struct {
	PatternType string  `yaml:"pattern_type" json:"pattern_type"`
	MetaLevel   float64 `yaml:"meta_level" json:"meta_level"`
	ScriptType  string  `yaml:"script_type" json:"script_type"`
	Confidence  float64 `yaml:"confidence" json:"confidence"`

	// ObservedAt is only set by file ingest; live callers leave it zero and
	// the log stamps the observation with its own clock.
	ObservedAt *time.Time `yaml:"observed_at,omitempty" json:"observed_at,omitempty"`
}
