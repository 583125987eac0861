// Package config loads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvProduction is the MERAKI_ENV value that turns on the production checks.
const EnvProduction = "production"

// Config holds every setting the server reads at startup.
type Config struct {
	Env     string `env:"MERAKI_ENV" envDefault:"development"`
	Addr    string `env:"MERAKI_ADDR" envDefault:":8080"`
	DBPath  string `env:"MERAKI_DB_PATH" envDefault:"meraki.db"`
	BaseURL string `env:"MERAKI_BASE_URL" envDefault:"http://localhost:8080"`

	ResendKey    string `env:"MERAKI_RESEND_KEY"`
	EmailFrom    string `env:"MERAKI_EMAIL_FROM" envDefault:"Meraki Festival <noreply@meraki.example>"`
	EmailReplyTo string `env:"MERAKI_EMAIL_REPLY_TO" envDefault:"hello@meraki.example"`
	ContactInbox string `env:"MERAKI_CONTACT_INBOX" envDefault:"hello@meraki.example"`

	CSRFKeyHex    string        `env:"MERAKI_CSRF_KEY"`
	SessionKeyHex string        `env:"MERAKI_SESSION_KEY"`
	SessionTTL    time.Duration `env:"MERAKI_SESSION_TTL" envDefault:"24h"`
	AdminToken    string        `env:"MERAKI_ADMIN_TOKEN"`

	SeedSampleData bool          `env:"MERAKI_SEED_SAMPLE_DATA" envDefault:"true"`
	SlowQuery      time.Duration `env:"MERAKI_SLOW_QUERY" envDefault:"50ms"`
	SlowRequest    time.Duration `env:"MERAKI_SLOW_REQUEST" envDefault:"500ms"`
	RateLimit      int           `env:"MERAKI_RATE_LIMIT" envDefault:"10"`
	OTelEndpoint   string        `env:"MERAKI_OTEL_ENDPOINT"`

	// Decoded keys, filled by Load.
	CSRFKey    []byte `env:"-"`
	SessionKey []byte `env:"-"`
}

// IsProduction reports whether production checks apply.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// LoginURL is the absolute login page link put into credential emails.
func (c *Config) LoginURL() string {
	return c.BaseURL + "/login"
}

// Load reads an optional .env file, then the environment.
// PRE: none
// POST: CSRFKey and SessionKey are 32 bytes; in production both came from the environment
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("config_dotenv_skipped", "error", err.Error())
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	var err error
	if cfg.CSRFKey, err = loadKey("MERAKI_CSRF_KEY", cfg.CSRFKeyHex, cfg.IsProduction()); err != nil {
		return Config{}, err
	}
	if cfg.SessionKey, err = loadKey("MERAKI_SESSION_KEY", cfg.SessionKeyHex, cfg.IsProduction()); err != nil {
		return Config{}, err
	}
	if cfg.IsProduction() && cfg.AdminToken == "" {
		return Config{}, errors.New("MERAKI_ADMIN_TOKEN is required in production")
	}
	if cfg.RateLimit < 1 {
		return Config{}, fmt.Errorf("MERAKI_RATE_LIMIT must be at least 1, got %d", cfg.RateLimit)
	}
	return cfg, nil
}

// loadKey decodes a hex-encoded 32-byte secret. Outside production a missing
// key is replaced by a random one, so sessions do not survive a restart.
func loadKey(name, keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("%s must be 64 hex characters (32 bytes)", name)
		}
		return key, nil
	}
	if production {
		return nil, fmt.Errorf("%s is required in production", name)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate %s: %w", name, err)
	}
	slog.Warn("config_random_key", "name", name, "note", "set it for sessions that survive a restart")
	return key, nil
}
