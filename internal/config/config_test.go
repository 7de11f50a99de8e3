package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load([]string{"-env-file", filepath.Join(dir, "missing.env")})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if cfg.HTTPAddr != want.HTTPAddr || cfg.BaseURL != want.BaseURL || cfg.JWTSecret != DefaultSecret {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Forms.Patient.MRN != "MRN-001" {
		t.Errorf("default forms not loaded: %+v", cfg.Forms.Patient)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "console.yaml", `
base_url: http://profile:8000
subject: profile-user
roles: auditor
request_timeout: 5s
forms:
  patient:
    mrn: MRN-777
`)
	envFile := writeFile(t, dir, "test.env", "CONSOLE_JWT_SUBJECT=dotenv-user\n")
	t.Setenv("CONSOLE_API_BASE_URL", "http://env:8000")
	t.Cleanup(func() { os.Unsetenv("CONSOLE_JWT_SUBJECT") })

	cfg, err := Load([]string{
		"-config", profile,
		"-env-file", envFile,
		"-roles", "admin,clinician",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"env beats profile", cfg.BaseURL, "http://env:8000"},
		{"dotenv beats profile", cfg.Subject, "dotenv-user"},
		{"flag beats profile", cfg.Roles, "admin,clinician"},
		{"profile form", cfg.Forms.Patient.MRN, "MRN-777"},
		{"default form kept", cfg.Forms.DrugEntry.DrugName, "Norepinephrine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("request timeout = %v", cfg.RequestTimeout)
	}
}

func TestLoadBadInput(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.env")

	t.Run("bad profile", func(t *testing.T) {
		profile := writeFile(t, dir, "bad.yaml", "base_url: [unterminated\n")
		if _, err := Load([]string{"-config", profile, "-env-file", missing}); err == nil {
			t.Error("Load() accepted a broken profile")
		}
	})
	t.Run("missing profile", func(t *testing.T) {
		if _, err := Load([]string{"-config", filepath.Join(dir, "nope.yaml"), "-env-file", missing}); err == nil {
			t.Error("Load() accepted a missing profile")
		}
	})
	t.Run("bad ttl env", func(t *testing.T) {
		t.Setenv("CONSOLE_TOKEN_TTL_MINUTES", "soon")
		if _, err := Load([]string{"-env-file", missing}); err == nil {
			t.Error("Load() accepted a non-numeric ttl")
		}
	})
	t.Run("unknown flag", func(t *testing.T) {
		if _, err := Load([]string{"-nope"}); err == nil {
			t.Error("Load() accepted an unknown flag")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"no addr", func(c *Config) { c.HTTPAddr = "" }, true},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, true},
		{"rate without burst", func(c *Config) { c.RateBurst = 0 }, true},
		{"rate disabled", func(c *Config) { c.RateLimit = 0; c.RateBurst = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
