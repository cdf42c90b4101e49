// Copyright 2025 Certen Protocol
//
// Config holds the engine's runtime settings: which calendars to talk
// to, how long to wait on them, and where to find a node to verify
// each supported chain against. Load reads environment variables;
// LoadFromFile reads a YAML document with ${VAR:-default} substitution.

package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the ots engine.
type Config struct {
	Calendars       []string         `yaml:"calendars"`
	CalendarTimeout Duration         `yaml:"calendar_timeout"`
	Verifiers       VerifierSettings `yaml:"verifiers"`
	Metrics         MetricsSettings  `yaml:"metrics"`
	LogLevel        string           `yaml:"log_level"`
}

// VerifierSettings holds the node endpoints used to check attestations
// against each supported chain.
type VerifierSettings struct {
	BitcoinRPCURL  string `yaml:"bitcoin_rpc_url"`
	BitcoinRPCUser string `yaml:"bitcoin_rpc_user"`
	BitcoinRPCPass string `yaml:"bitcoin_rpc_pass"`

	LitecoinRPCURL  string `yaml:"litecoin_rpc_url"`
	LitecoinRPCUser string `yaml:"litecoin_rpc_user"`
	LitecoinRPCPass string `yaml:"litecoin_rpc_pass"`

	EthereumRPCURL string `yaml:"ethereum_rpc_url"`

	Timeout Duration `yaml:"timeout"`
}

// MetricsSettings controls the Prometheus metrics endpoint.
type MetricsSettings struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// defaultCalendars mirrors the OpenTimestamps project's own public
// calendar servers.
var defaultCalendars = []string{
	"https://alice.btc.calendar.opentimestamps.org",
	"https://bob.btc.calendar.opentimestamps.org",
	"https://finney.calendar.eternitywall.com",
}

// Load builds a Config from environment variables, falling back to
// sensible defaults for anything unset.
func Load() *Config {
	return &Config{
		Calendars:       getEnvList("OTS_CALENDARS", defaultCalendars),
		CalendarTimeout: Duration(getEnvDuration("OTS_CALENDAR_TIMEOUT", 30*time.Second)),
		Verifiers: VerifierSettings{
			BitcoinRPCURL:   getEnv("OTS_BITCOIN_RPC_URL", ""),
			BitcoinRPCUser:  getEnv("OTS_BITCOIN_RPC_USER", ""),
			BitcoinRPCPass:  getEnv("OTS_BITCOIN_RPC_PASS", ""),
			LitecoinRPCURL:  getEnv("OTS_LITECOIN_RPC_URL", ""),
			LitecoinRPCUser: getEnv("OTS_LITECOIN_RPC_USER", ""),
			LitecoinRPCPass: getEnv("OTS_LITECOIN_RPC_PASS", ""),
			EthereumRPCURL:  getEnv("OTS_ETHEREUM_RPC_URL", ""),
			Timeout:         Duration(getEnvDuration("OTS_VERIFIER_TIMEOUT", 15*time.Second)),
		},
		Metrics: MetricsSettings{
			Enabled: getEnvBool("OTS_METRICS_ENABLED", false),
			Addr:    getEnv("OTS_METRICS_ADDR", ":9090"),
			Path:    getEnv("OTS_METRICS_PATH", "/metrics"),
		},
		LogLevel: getEnv("OTS_LOG_LEVEL", "info"),
	}
}

// LoadFromFile reads a YAML config document from path, expanding any
// ${VAR} / ${VAR:-default} references against the environment first.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	expanded := substituteEnvVars(string(data))

	cfg := Load()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Duration wraps time.Duration for YAML unmarshaling as a Go duration
// string ("30s", "2m") rather than a bare integer of nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns d as a time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 4 {
			defaultValue = groups[3]
		}
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
