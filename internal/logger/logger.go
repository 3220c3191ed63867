// Package logger configures the application's logging and APM.
//
// It uses *zerolog* for structured logging and optionally integrates with
// *New Relic*, forwarding logs and attaching trace ids so a slow ERP query
// can be followed from the HTTP request down to the SQL statement.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/deppfellow/erp-gateway/internal/config"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/logcontext-v2/zerologWriter"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// TimeFormat is used by every console writer.
const TimeFormat = "2006-01-02 15:04:05"

// LoggerService owns the optional New Relic application.
//
// A LoggerService with a nil application is valid: every consumer checks
// GetApplication() and degrades to plain logging.
type LoggerService struct {
	nrApp *newrelic.Application
}

// NewLoggerService starts the New Relic agent when a license key is
// configured. Failures are reported on stderr and leave the agent disabled;
// the gateway keeps serving without APM.
func NewLoggerService(cfg *config.ObservabilityConfig) *LoggerService {
	service := &LoggerService{}

	if cfg.NewRelic.LicenseKey == "" {
		return service
	}

	configOptions := []newrelic.ConfigOption{
		newrelic.ConfigAppName(cfg.ServiceName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(cfg.NewRelic.AppLogForwardingEnabled),
		newrelic.ConfigDistributedTracerEnabled(cfg.NewRelic.DistributedTracingEnabled),
	}
	if cfg.NewRelic.DebugLogging {
		configOptions = append(configOptions, newrelic.ConfigDebugLogger(os.Stdout))
	}

	app, err := newrelic.NewApplication(configOptions...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize New Relic: %v\n", err)
		return service
	}

	service.nrApp = app
	return service
}

// Shutdown flushes pending New Relic data.
func (ls *LoggerService) Shutdown() {
	if ls.nrApp != nil {
		ls.nrApp.Shutdown(10 * time.Second)
	}
}

// GetApplication returns the New Relic application, or nil when disabled.
func (ls *LoggerService) GetApplication() *newrelic.Application {
	return ls.nrApp
}

// NewLoggerWithService builds the application logger.
//
//   - production + json: JSON lines on stdout, forwarded to New Relic when enabled
//   - everything else: human friendly console output
func NewLoggerWithService(cfg *config.ObservabilityConfig, loggerService *LoggerService) zerolog.Logger {
	logLevel := ParseLevel(cfg.GetLogLevel())

	zerolog.TimeFieldFormat = TimeFormat
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var writer io.Writer
	if cfg.IsProduction() && cfg.Logging.Format == "json" {
		writer = os.Stdout
		if loggerService != nil && loggerService.nrApp != nil {
			writer = zerologWriter.New(os.Stdout, loggerService.nrApp)
		}
	} else if cfg.Logging.Format == "json" {
		writer = os.Stdout
	} else {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: TimeFormat}
	}

	logger := zerolog.New(writer).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger()

	if !cfg.IsProduction() {
		logger = logger.With().Stack().Logger()
	}

	return logger
}

// ParseLevel maps debug/info/warn/error to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithTraceContext adds the New Relic trace and span ids of txn to logger.
func WithTraceContext(logger zerolog.Logger, txn *newrelic.Transaction) zerolog.Logger {
	if txn == nil {
		return logger
	}

	metadata := txn.GetTraceMetadata()
	return logger.With().
		Str("trace.id", metadata.TraceID).
		Str("span.id", metadata.SpanID).
		Logger()
}

// NewPgxLogger returns the logger used for SQL tracing in local runs.
// Long values are truncated and JSON arguments pretty printed.
func NewPgxLogger(level zerolog.Level) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: TimeFormat,
		FormatFieldValue: func(i any) string {
			switch v := i.(type) {
			case string:
				if len(v) > 200 {
					return v[:200] + "..."
				}
				return v
			case json.Number:
				return v.String()
			case []byte:
				var obj any
				if err := json.Unmarshal(v, &obj); err == nil {
					pretty, _ := json.MarshalIndent(obj, "", "    ")
					return "\n" + string(pretty)
				}
				return string(v)
			default:
				return fmt.Sprintf("%v", v)
			}
		},
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("component", "database").
		Logger()
}

// GetPgxTraceLogLevel converts a zerolog level into a pgx tracelog level.
func GetPgxTraceLogLevel(level zerolog.Level) int {
	switch level {
	case zerolog.TraceLevel:
		return int(tracelog.LogLevelTrace)
	case zerolog.DebugLevel:
		return int(tracelog.LogLevelDebug)
	case zerolog.InfoLevel:
		return int(tracelog.LogLevelInfo)
	case zerolog.WarnLevel:
		return int(tracelog.LogLevelWarn)
	case zerolog.ErrorLevel:
		return int(tracelog.LogLevelError)
	default:
		return int(tracelog.LogLevelNone)
	}
}
