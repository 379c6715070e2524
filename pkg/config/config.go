// Package config loads the daemon's environment-driven configuration once
// at startup, ahead of any task being spawned.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultProgramID = "omni1111111111111111111111111111111111111"

// Config is the fully resolved, validated configuration for one run of the
// daemon. It is constructed once by Load and passed explicitly to every
// component that needs it — there is no package-level ambient instance.
type Config struct {
	DatabaseURL string

	UpstreamAPIKey string
	UpstreamWSURL  string
	UpstreamRPCURL string
	ProgramID      string

	AllowedOrigins []string
	Production     bool

	DedupTimeoutSecs int
	DedupTickSecs    int

	GRPCPort      int
	WebSocketPort int
	HealthPort    int

	LogLevel string
	LogJSON  bool
}

// Load reads a .env file if present (ignored when absent, matching the
// upstream daemon's own dotenv convention) and then resolves configuration
// from the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		UpstreamAPIKey: os.Getenv("UPSTREAM_API_KEY"),
		UpstreamWSURL:  os.Getenv("UPSTREAM_WS_URL"),
		UpstreamRPCURL: envOr("UPSTREAM_RPC_URL", "https://api.mainnet-beta.solana.com"),
		ProgramID:      envOr("PROGRAM_ID", defaultProgramID),
		Production:     os.Getenv("NODE_ENV") == "production",
		LogLevel:       envOr("LOG_LEVEL", "info"),
		LogJSON:        envBool("LOG_JSON", false),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	var err error
	if cfg.DedupTimeoutSecs, err = envInt("DEDUP_TIMEOUT_SECS", 5); err != nil {
		return nil, err
	}
	if cfg.DedupTickSecs, err = envInt("DEDUP_TICK_SECS", 1); err != nil {
		return nil, err
	}
	if cfg.GRPCPort, err = envInt("GRPC_PORT", 9090); err != nil {
		return nil, err
	}
	if cfg.WebSocketPort, err = envInt("WEBSOCKET_PORT", 8081); err != nil {
		return nil, err
	}
	if cfg.HealthPort, err = envInt("HEALTH_PORT", 8080); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate returns a *ConfigError describing the first missing requirement.
func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return &ConfigError{Field: "DATABASE_URL", Reason: "required"}
	}
	if c.UpstreamAPIKey == "" {
		return &ConfigError{Field: "UPSTREAM_API_KEY", Reason: "required for upstream feed authentication"}
	}
	if c.Production && len(c.AllowedOrigins) == 0 {
		return &ConfigError{Field: "ALLOWED_ORIGINS", Reason: "required in production (NODE_ENV=production)"}
	}
	return nil
}

// ConfigError reports an invalid or missing configuration field. It is
// fatal: the process exits before any task is started.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ConfigError{Field: key, Reason: fmt.Sprintf("invalid integer %q", v)}
	}
	return n, nil
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
