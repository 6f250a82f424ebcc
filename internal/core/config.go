// Package core contains configuration loading and validation for
// pattern-metrics and the window-duration parsing shared by its surfaces.
package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/pattern-metrics/internal/observability"
	"github.com/valter-silva-au/pattern-metrics/pkg/models"
)

// ConfigFileName is the base name (without extension) of the config file.
const ConfigFileName = ".pmconfig"

// ConfigurationManager loads and validates the pattern-metrics configuration.
type ConfigurationManager interface {
	LoadConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML .pmconfig file and PMETRICS_* environment overrides.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .pmconfig from basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a GlobalConfig populated with sensible defaults.
func DefaultConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		DefaultWindow: observability.DefaultWindow,
		RecentWindow:  observability.DefaultRecentWindow,
		EventsEnabled: true,
		EventsPath:    ".pmetrics_events.jsonl",
		Alerts: models.AlertConfig{
			MinRecentConfidence: 0.5,
			MaxVolatility:       0.25,
			MinConfidenceTrend:  -0.05,
			MinSamples:          5,
		},
	}
}

// LoadConfig reads .pmconfig from the base path. A missing file yields the
// defaults; environment variables such as PMETRICS_WINDOW_DEFAULT override
// both.
func (cm *viperConfigManager) LoadConfig() (*models.GlobalConfig, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("PMETRICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("window.default", cfg.DefaultWindow.String())
	v.SetDefault("trends.recent_window", cfg.RecentWindow)
	v.SetDefault("events.enabled", cfg.EventsEnabled)
	v.SetDefault("events.path", cfg.EventsPath)
	v.SetDefault("alerts.min_recent_confidence", cfg.Alerts.MinRecentConfidence)
	v.SetDefault("alerts.max_volatility", cfg.Alerts.MaxVolatility)
	v.SetDefault("alerts.min_confidence_trend", cfg.Alerts.MinConfidenceTrend)
	v.SetDefault("alerts.min_samples", cfg.Alerts.MinSamples)
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.slack.webhook_url", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}

	window, err := ParseWindow(v.GetString("window.default"))
	if err != nil {
		return nil, fmt.Errorf("parsing window.default: %w", err)
	}
	cfg.DefaultWindow = window
	cfg.RecentWindow = v.GetInt("trends.recent_window")
	cfg.EventsEnabled = v.GetBool("events.enabled")
	cfg.EventsPath = v.GetString("events.path")
	cfg.Alerts = models.AlertConfig{
		MinRecentConfidence: v.GetFloat64("alerts.min_recent_confidence"),
		MaxVolatility:       v.GetFloat64("alerts.max_volatility"),
		MinConfidenceTrend:  v.GetFloat64("alerts.min_confidence_trend"),
		MinSamples:          v.GetInt("alerts.min_samples"),
	}
	cfg.Notifications = models.NotificationConfig{
		Enabled: v.GetBool("notifications.enabled"),
		Slack: models.SlackConfig{
			WebhookURL: v.GetString("notifications.slack.webhook_url"),
		},
	}

	return cfg, nil
}

// ValidateConfig checks cfg for invalid values and reports every problem
// found in a single error.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.DefaultWindow <= 0 {
		errs = append(errs, fmt.Sprintf("window.default must be positive, got %s", cfg.DefaultWindow))
	}
	if cfg.RecentWindow < 1 {
		errs = append(errs, fmt.Sprintf("trends.recent_window must be at least 1, got %d", cfg.RecentWindow))
	}
	if cfg.EventsEnabled && strings.TrimSpace(cfg.EventsPath) == "" {
		errs = append(errs, "events.path must not be empty when events are enabled")
	}
	if cfg.Alerts.MinRecentConfidence < 0 || cfg.Alerts.MinRecentConfidence > 1 {
		errs = append(errs, fmt.Sprintf(
			"alerts.min_recent_confidence %v is invalid, must be between 0 and 1",
			cfg.Alerts.MinRecentConfidence,
		))
	}
	if cfg.Alerts.MaxVolatility < 0 {
		errs = append(errs, fmt.Sprintf("alerts.max_volatility must be non-negative, got %v", cfg.Alerts.MaxVolatility))
	}
	if cfg.Alerts.MinSamples < 0 {
		errs = append(errs, fmt.Sprintf("alerts.min_samples must be non-negative, got %d", cfg.Alerts.MinSamples))
	}
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL == "" {
		errs = append(errs, "notifications.slack.webhook_url is required when notifications are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
