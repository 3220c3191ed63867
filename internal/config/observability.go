package config

import (
	"fmt"
	"time"
)

// ObservabilityConfig groups logging, APM and health check settings.
//
// ServiceName and Environment are always overwritten by LoadConfig so that
// every log line, trace and metric carries the same labels.
type ObservabilityConfig struct {
	ServiceName  string             `koanf:"service_name" validate:"required"`
	Environment  string             `koanf:"environment" validate:"required"`
	Logging      LoggingConfig      `koanf:"logging" validate:"required"`
	NewRelic     NewRelicConfig     `koanf:"new_relic"`
	HealthChecks HealthChecksConfig `koanf:"health_checks"`
}

// LoggingConfig holds application logging configuration.
type LoggingConfig struct {
	// Level is the verbosity threshold (debug/info/warn/error).
	Level string `koanf:"level" validate:"required"`

	// Format is "json" or "console".
	Format string `koanf:"format" validate:"required"`

	// SlowRequestThreshold: requests slower than this are logged at warn
	// level. Parsed as a duration string ("500ms", "2s"); zero disables it.
	SlowRequestThreshold time.Duration `koanf:"slow_request_threshold"`
}

// NewRelicConfig holds configuration for New Relic APM and tracing.
//
// An empty LicenseKey disables the agent entirely.
type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
	DebugLogging              bool   `koanf:"debug_logging"`
}

// HealthChecksConfig controls the dependency checks run by GET /status.
type HealthChecksConfig struct {
	// Enabled toggles the checks. When false /status only reports liveness.
	Enabled bool `koanf:"enabled"`

	// Timeout bounds a single check.
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`

	// Checks names the checks to run. Only "database" is known.
	Checks []string `koanf:"checks"`
}

// DefaultObservabilityConfig provides the defaults applied before the
// environment is decoded.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: ServiceName,
		Environment: "development",
		Logging: LoggingConfig{
			Level:                "info",
			Format:               "json",
			SlowRequestThreshold: 2 * time.Second,
		},
		NewRelic: NewRelicConfig{
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
			DebugLogging:              false, // Disabled by default to avoid mixed log formats
		},
		HealthChecks: HealthChecksConfig{
			Enabled: true,
			Timeout: 5 * time.Second,
			Checks:  []string{"database"},
		},
	}
}

// Validate applies rules that go beyond struct tags.
func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid logging format: %s (must be json or console)", c.Logging.Format)
	}

	if c.Logging.SlowRequestThreshold < 0 {
		return fmt.Errorf("logging slow_request_threshold must be non-negative")
	}

	for _, check := range c.HealthChecks.Checks {
		if check != "database" {
			return fmt.Errorf("unknown health check: %s", check)
		}
	}

	return nil
}

// GetLogLevel returns the effective log level to use at runtime.
//
// Production falls back to "info" and development to "debug" when no level
// is set.
func (c *ObservabilityConfig) GetLogLevel() string {
	switch c.Environment {
	case "production":
		if c.Logging.Level == "" {
			return "info"
		}
	case "development":
		if c.Logging.Level == "" {
			return "debug"
		}
	}

	return c.Logging.Level
}

// IsProduction reports whether the application is running in production mode.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}

// HasCheck reports whether the named health check is enabled.
func (c *ObservabilityConfig) HasCheck(name string) bool {
	if !c.HealthChecks.Enabled {
		return false
	}
	for _, check := range c.HealthChecks.Checks {
		if check == name {
			return true
		}
	}
	return false
}
