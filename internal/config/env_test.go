package config

import "testing"

func TestApplyEnvLogLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")

	cfg := Default()
	ApplyEnv(&cfg)

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %q", cfg.Logging.Level)
	}
}

func TestApplyEnvEmptyLogLevelIgnored(t *testing.T) {
	t.Setenv(EnvLogLevel, "")

	cfg := Default()
	ApplyEnv(&cfg)

	if cfg.Logging.Level != "info" {
		t.Errorf("empty level should keep default, got %q", cfg.Logging.Level)
	}
}

func TestApplyEnvHostAndPort(t *testing.T) {
	t.Setenv(EnvBackendHost, "0.0.0.0")
	t.Setenv(EnvBackendPort, "9005")

	cfg := Default()
	ApplyEnv(&cfg)

	if cfg.Backend.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %q", cfg.Backend.Host)
	}
	if cfg.Backend.Port != 9005 {
		t.Errorf("expected port 9005, got %d", cfg.Backend.Port)
	}
}

func TestApplyEnvBadPortIgnored(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a number", "eight"},
		{"zero", "0"},
		{"negative", "-1"},
		{"too large", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvBackendPort, tt.value)

			cfg := Default()
			ApplyEnv(&cfg)

			if cfg.Backend.Port != 8000 {
				t.Errorf("invalid port %q should keep default, got %d", tt.value, cfg.Backend.Port)
			}
		})
	}
}

func TestApplyEnvNoBackend(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("value "+tt.value, func(t *testing.T) {
			t.Setenv(EnvNoBackend, tt.value)

			cfg := Default()
			ApplyEnv(&cfg)

			if cfg.Backend.Disabled != tt.want {
				t.Errorf("NO_BACKEND=%q: disabled = %v, want %v", tt.value, cfg.Backend.Disabled, tt.want)
			}
		})
	}
}
