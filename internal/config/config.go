package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"infusionconsole/internal/console"
)

// DefaultSecret is the development signing secret the platform's compose
// stack ships with. It is public.
const DefaultSecret = "dev-insecure-jwt-secret"

type Config struct {
	HTTPAddr       string        `yaml:"http_addr"`
	BaseURL        string        `yaml:"base_url"`
	Subject        string        `yaml:"subject"`
	Roles          string        `yaml:"roles"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       int           `yaml:"token_ttl_minutes"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimit      float64       `yaml:"rate_limit"`
	RateBurst      int           `yaml:"rate_burst"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	Forms          console.Forms `yaml:"forms"`
}

func Default() Config {
	return Config{
		HTTPAddr:       ":8090",
		BaseURL:        "http://localhost:8000",
		Subject:        "dev-admin",
		Roles:          "admin,clinician,auditor",
		JWTSecret:      DefaultSecret,
		TokenTTL:       60,
		RequestTimeout: 30 * time.Second,
		RateLimit:      20,
		RateBurst:      40,
		LogLevel:       "info",
		LogFormat:      "json",
		Forms:          console.DefaultForms(),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load builds the configuration from defaults, an optional YAML profile, a
// .env file, CONSOLE_* environment variables and finally flags, each layer
// overriding the previous one.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("infusionconsole", flag.ContinueOnError)
	var (
		profile  = fs.String("config", "", "YAML profile path (or CONSOLE_CONFIG)")
		envFile  = fs.String("env-file", ".env", "dotenv file to load if present")
		addr     = fs.String("addr", "", "listen address")
		baseURL  = fs.String("base-url", "", "platform API base URL")
		subject  = fs.String("subject", "", "token subject")
		roles    = fs.String("roles", "", "comma-separated token roles")
		secret   = fs.String("secret", "", "token signing secret (prefer env)")
		logLevel = fs.String("log-level", "", "debug, info, warn or error")
	)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", *envFile, err)
	}

	cfg := Default()
	path := *profile
	if path == "" {
		path = os.Getenv("CONSOLE_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	flagValues := []struct {
		v   string
		dst *string
	}{
		{*addr, &cfg.HTTPAddr},
		{*baseURL, &cfg.BaseURL},
		{*subject, &cfg.Subject},
		{*roles, &cfg.Roles},
		{*secret, &cfg.JWTSecret},
		{*logLevel, &cfg.LogLevel},
	}
	for _, f := range flagValues {
		if f.v != "" {
			*f.dst = f.v
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse profile %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.HTTPAddr = getenv("CONSOLE_HTTP_ADDR", c.HTTPAddr)
	c.BaseURL = getenv("CONSOLE_API_BASE_URL", c.BaseURL)
	c.Subject = getenv("CONSOLE_JWT_SUBJECT", c.Subject)
	c.Roles = getenv("CONSOLE_JWT_ROLES", c.Roles)
	c.JWTSecret = getenv("CONSOLE_JWT_SECRET", c.JWTSecret)
	c.LogLevel = getenv("CONSOLE_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenv("CONSOLE_LOG_FORMAT", c.LogFormat)

	if v := os.Getenv("CONSOLE_TOKEN_TTL_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid CONSOLE_TOKEN_TTL_MINUTES")
		}
		c.TokenTTL = n
	}
	if v := os.Getenv("CONSOLE_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New("invalid CONSOLE_REQUEST_TIMEOUT")
		}
		c.RequestTimeout = d
	}
	if v := os.Getenv("CONSOLE_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.New("invalid CONSOLE_RATE_LIMIT")
		}
		c.RateLimit = f
	}
	return nil
}

func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("http address required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request timeout must not be negative")
	}
	if c.RateLimit < 0 || (c.RateLimit > 0 && c.RateBurst <= 0) {
		return errors.New("rate limit needs a positive burst")
	}
	return nil
}
