package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// TestParse_Defaults tests development defaults and generated keys.
func TestParse_Defaults(t *testing.T) {
	t.Setenv("MERAKI_ENV", "")
	t.Setenv("MERAKI_CSRF_KEY", "")
	t.Setenv("MERAKI_SESSION_KEY", "")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != "meraki.db" || cfg.SessionTTL != 24*time.Hour || cfg.SlowQuery != 50*time.Millisecond {
		t.Errorf("defaults = %+v", cfg)
	}
	if len(cfg.CSRFKey) != 32 || len(cfg.SessionKey) != 32 {
		t.Errorf("generated keys have lengths %d and %d", len(cfg.CSRFKey), len(cfg.SessionKey))
	}
	if !cfg.SeedSampleData || cfg.IsProduction() {
		t.Errorf("SeedSampleData = %v, IsProduction = %v", cfg.SeedSampleData, cfg.IsProduction())
	}
	if cfg.LoginURL() != "http://localhost:8080/login" {
		t.Errorf("LoginURL = %q", cfg.LoginURL())
	}
}

// TestParse_Production tests the production requirements.
func TestParse_Production(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing csrf key", map[string]string{"MERAKI_SESSION_KEY": testKey, "MERAKI_ADMIN_TOKEN": "t"}, "MERAKI_CSRF_KEY"},
		{"missing session key", map[string]string{"MERAKI_CSRF_KEY": testKey, "MERAKI_ADMIN_TOKEN": "t"}, "MERAKI_SESSION_KEY"},
		{"missing admin token", map[string]string{"MERAKI_CSRF_KEY": testKey, "MERAKI_SESSION_KEY": testKey}, "MERAKI_ADMIN_TOKEN"},
		{"short key", map[string]string{"MERAKI_CSRF_KEY": "abcd", "MERAKI_SESSION_KEY": testKey, "MERAKI_ADMIN_TOKEN": "t"}, "64 hex"},
		{"complete", map[string]string{"MERAKI_CSRF_KEY": testKey, "MERAKI_SESSION_KEY": testKey, "MERAKI_ADMIN_TOKEN": "t"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"MERAKI_CSRF_KEY", "MERAKI_SESSION_KEY", "MERAKI_ADMIN_TOKEN"} {
				t.Setenv(k, tt.env[k])
			}
			t.Setenv("MERAKI_ENV", EnvProduction)
			_, err := Parse()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

// TestLoad_DotEnv tests that a .env file fills unset variables.
func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MERAKI_ADDR=:9090\nMERAKI_SLOW_REQUEST=2s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MERAKI_ENV", "")
	t.Setenv("MERAKI_ADDR", "")
	os.Unsetenv("MERAKI_ADDR")
	t.Setenv("MERAKI_SLOW_REQUEST", "")
	os.Unsetenv("MERAKI_SLOW_REQUEST")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.SlowRequest != 2*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
}
