package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.Backend.Candidates) != 3 {
		t.Fatalf("expected 3 default candidates, got %d", len(cfg.Backend.Candidates))
	}
	if cfg.Backend.Candidates[0] != "../backend" {
		t.Errorf("expected first candidate ../backend, got %q", cfg.Backend.Candidates[0])
	}
	if !strings.Contains(cfg.Backend.Candidates[1], "Resources") {
		t.Errorf("expected packaged-resources candidate second, got %q", cfg.Backend.Candidates[1])
	}
	if cfg.Backend.EntryPoint != "main.py" {
		t.Errorf("expected entry point main.py, got %q", cfg.Backend.EntryPoint)
	}
	if cfg.Backend.Host != "127.0.0.1" {
		t.Errorf("expected host 127.0.0.1, got %q", cfg.Backend.Host)
	}
	if cfg.Backend.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Backend.Port)
	}

	if len(cfg.Backend.Strategies) != 2 {
		t.Fatalf("expected 2 default strategies, got %d", len(cfg.Backend.Strategies))
	}
	if cfg.Backend.Strategies[0].Name != "uv" {
		t.Errorf("expected primary strategy uv, got %q", cfg.Backend.Strategies[0].Name)
	}
	if cfg.Backend.Strategies[1].Name != "python" {
		t.Errorf("expected fallback strategy python, got %q", cfg.Backend.Strategies[1].Name)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "default is valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty entry point",
			mutate:  func(c *Config) { c.Backend.EntryPoint = "" },
			wantErr: true,
		},
		{
			name:    "entry point with separator",
			mutate:  func(c *Config) { c.Backend.EntryPoint = filepath.Join("sub", "main.py") },
			wantErr: true,
		},
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Backend.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Backend.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "empty host",
			mutate:  func(c *Config) { c.Backend.Host = "" },
			wantErr: true,
		},
		{
			name: "strategy without command",
			mutate: func(c *Config) {
				c.Backend.Strategies = append(c.Backend.Strategies, StrategyConfig{Name: "broken"})
			},
			wantErr: true,
		},
		{
			name:    "negative console buffer",
			mutate:  func(c *Config) { c.Console.Buffer = -1 },
			wantErr: true,
		},
		{
			name:    "no strategies is allowed",
			mutate:  func(c *Config) { c.Backend.Strategies = nil },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestExpandCandidates(t *testing.T) {
	b := BackendConfig{
		Candidates: []string{
			"../backend",
			"{exe}/../Resources/backend",
			"{exe}/backend",
		},
	}

	got := b.ExpandCandidates("/opt/app/bin")
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d: %v", len(got), got)
	}
	if got[0] != "../backend" {
		t.Errorf("relative candidate should pass through, got %q", got[0])
	}
	if got[1] != filepath.Clean("/opt/app/bin/../Resources/backend") {
		t.Errorf("expected cleaned resources path, got %q", got[1])
	}
	if got[2] != filepath.Clean("/opt/app/bin/backend") {
		t.Errorf("expected flat bundle path, got %q", got[2])
	}
}

func TestExpandCandidatesNoExeDir(t *testing.T) {
	b := BackendConfig{
		Candidates: []string{
			"../backend",
			"{exe}/backend",
		},
	}

	got := b.ExpandCandidates("")
	if len(got) != 1 {
		t.Fatalf("expected placeholder entries dropped, got %v", got)
	}
	if got[0] != "../backend" {
		t.Errorf("expected only the relative candidate, got %q", got[0])
	}
}

func TestBaseURL(t *testing.T) {
	b := BackendConfig{Host: "127.0.0.1", Port: 8000}
	if got := b.BaseURL(); got != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL() = %q, want %q", got, "http://127.0.0.1:8000")
	}
}
