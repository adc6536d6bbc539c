package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Upstream drivers.
const (
	DriverREST = "rest"
	DriverSDK  = "sdk"
)

// Config is resolved once at start and passed to constructors.
type Config struct {
	HTTPListen     string   `envconfig:"HTTP_LISTEN" default:":8080"`
	GeminiAPIKey   string   `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL  string   `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel    string   `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	UpstreamDriver string   `envconfig:"UPSTREAM_DRIVER" default:"rest"`
	RateLimit      float64  `envconfig:"RATE_LIMIT" default:"20"`
	BodyLimit      string   `envconfig:"BODY_LIMIT" default:"1M"`
	AllowOrigins   []string `envconfig:"ALLOW_ORIGINS" default:"*"`
	Debug          bool     `envconfig:"DEBUG"`
}

// Load reads the process environment. A missing GEMINI_API_KEY is not an
// error here; the relay reports it per request.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HasAPIKey reports whether an upstream credential is configured.
func (c *Config) HasAPIKey() bool {
	return c.GeminiAPIKey != ""
}

// Usage prints the recognized variables.
func Usage() error {
	return envconfig.Usage("", new(Config))
}
