package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix shared by all launcher environment variables.
const EnvPrefix = "SCRIBEVIEW_"

// Environment variables recognized by ApplyEnv.
const (
	EnvLogLevel    = EnvPrefix + "LOG_LEVEL"
	EnvLogFile     = EnvPrefix + "LOG_FILE"
	EnvBackendHost = EnvPrefix + "BACKEND_HOST"
	EnvBackendPort = EnvPrefix + "BACKEND_PORT"
	EnvNoBackend   = EnvPrefix + "NO_BACKEND"
)

// ApplyEnv overlays recognized environment variables onto the configuration.
// Values that fail to parse are ignored; the environment never makes the
// launcher refuse to start.
func ApplyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		cfg.Logging.File = v
	}
	if v, ok := os.LookupEnv(EnvBackendHost); ok && v != "" {
		cfg.Backend.Host = v
	}
	if v, ok := os.LookupEnv(EnvBackendPort); ok {
		if port, err := strconv.Atoi(v); err == nil && port >= 1 && port <= 65535 {
			cfg.Backend.Port = port
		}
	}
	if v, ok := os.LookupEnv(EnvNoBackend); ok && isTruthy(v) {
		cfg.Backend.Disabled = true
	}
}

// isTruthy reports whether an environment value means "on".
func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
