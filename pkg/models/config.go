package models

import "time"

// AlertConfig holds the thresholds the alert engine compares the
// confidence and meta-level summaries against.
type AlertConfig struct {
	MinRecentConfidence float64 `yaml:"min_recent_confidence" mapstructure:"min_recent_confidence"`
	MaxVolatility       float64 `yaml:"max_volatility" mapstructure:"max_volatility"`
	MinConfidenceTrend  float64 `yaml:"min_confidence_trend" mapstructure:"min_confidence_trend"`
	MinSamples          int     `yaml:"min_samples" mapstructure:"min_samples"`
}

// SlackConfig holds the Slack webhook used for alert notifications.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// NotificationConfig controls whether alerts are pushed to external channels.
type NotificationConfig struct {
	Enabled bool        `yaml:"enabled" mapstructure:"enabled"`
	Slack   SlackConfig `yaml:"slack" mapstructure:"slack"`
}

// GlobalConfig holds settings read from .pmconfig via Viper.
type GlobalConfig struct {
	DefaultWindow time.Duration      `yaml:"default_window" mapstructure:"default_window"`
	RecentWindow  int                `yaml:"recent_window" mapstructure:"recent_window"`
	EventsEnabled bool               `yaml:"events_enabled" mapstructure:"events_enabled"`
	EventsPath    string             `yaml:"events_path" mapstructure:"events_path"`
	Alerts        AlertConfig        `yaml:"alerts" mapstructure:"alerts"`
	Notifications NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
}
