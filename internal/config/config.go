// Package config loads the gateway configuration from the environment.
//
// It reads variables (optionally from a `.env` file), maps them into
// structured Go types and validates them so the process fails fast on
// missing or malformed settings.
//
// Responsibilities:
//   - Load environment variables with the ERP_GATEWAY_ prefix.
//   - Map env vars into nested structs, using "__" as the nesting separator.
//   - Apply defaults before decoding, then validate.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads a `.env` file into the process env, if present.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix ERP_GATEWAY_. After the prefix is
	removed the key is lowercased and "__" becomes the koanf delimiter ".",
	so single underscores survive inside field names:

	  ERP_GATEWAY_SERVER__CORS_ALLOWED_ORIGINS -> server.cors_allowed_origins
	  ERP_GATEWAY_DATABASE__CONNECT_TIMEOUT    -> database.connect_timeout

	Values of list settings are comma separated.
*/

// EnvPrefix is the prefix of every environment variable the gateway reads.
const EnvPrefix = "ERP_GATEWAY_"

// ServiceName labels logs, traces and metrics.
const ServiceName = "erp-gateway"

// listKeys are settings whose values are comma-separated lists.
var listKeys = map[string]bool{
	"server.cors_allowed_origins":       true,
	"observability.health_checks.checks": true,
}

// Config is the root configuration object for the application.
//
// TestDatabase and Observability are pointers because they are optional
// blocks: TestDatabase exists only in the test profile, Observability gets
// defaults when absent.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	TestDatabase  *TestDatabaseConfig  `koanf:"test_database"`
	Archive       ArchiveConfig        `koanf:"archive"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`
}

// DatabaseConfig describes the ERP database every request connects to.
//
// The DSN carries host, port, database name and TLS options. Credentials
// come from each request, never from here. Role, when set, is assumed by
// every session. MonitorUser/MonitorPassword are only used by the health
// endpoint to check connectivity.
type DatabaseConfig struct {
	DSN             string `koanf:"dsn" validate:"required"`
	Role            string `koanf:"role"`
	ConnectTimeout  int    `koanf:"connect_timeout" validate:"min=0"`
	MonitorUser     string `koanf:"monitor_user"`
	MonitorPassword string `koanf:"monitor_password"`
}

// TestDatabaseConfig is the test profile: a separate database and a fixed
// account integration tests authenticate with.
type TestDatabaseConfig struct {
	DSN      string `koanf:"dsn" validate:"required"`
	User     string `koanf:"user" validate:"required"`
	Password string `koanf:"password"`
	Role     string `koanf:"role"`
}

// ArchiveConfig controls the optional copy of CSV exports to S3-compatible
// object storage.
type ArchiveConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Bucket    string `koanf:"bucket" validate:"required_if=Enabled true"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	PathStyle bool   `koanf:"path_style"`
	Prefix    string `koanf:"prefix"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
}

// DefaultConfig returns the values used for every setting the environment
// leaves out.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"http://localhost:4200"},
		},
		Database: DatabaseConfig{
			ConnectTimeout: 10,
		},
		Archive: ArchiveConfig{
			Region: "us-east-1",
			Prefix: "csv_reports",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from environment variables, applies
// defaults, validates it and returns the result.
//
// Behavior summary:
//   - Loads env vars with prefix ERP_GATEWAY_
//   - Converts env keys into koanf keys ("__" -> ".")
//   - Splits list settings on commas
//   - Unmarshals over DefaultConfig
//   - Validates struct tags and observability rules
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key string, value string) (string, interface{}) {
		name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		name = strings.ReplaceAll(name, "__", ".")

		if listKeys[name] {
			return name, splitList(value)
		}
		return name, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := DefaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Service name and environment always follow the primary block.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// splitList turns "a, b,,c" into ["a" "b" "c"].
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
