// Package config loads process configuration once at startup. The resulting
// Config is immutable; nothing reads the environment after Load returns.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Quota is a fixed-window request allowance, e.g. "20/hour".
type Quota struct {
	Requests int
	Window   time.Duration
}

// Decode implements envconfig.Decoder for values like "100/day" or "5/min".
func (q *Quota) Decode(value string) error {
	parts := strings.SplitN(value, "/", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid quota %q, expected <count>/<window>", value)
	}
	count, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || count <= 0 {
		return fmt.Errorf("invalid quota count in %q", value)
	}
	var window time.Duration
	switch strings.TrimSpace(parts[1]) {
	case "sec", "second":
		window = time.Second
	case "min", "minute":
		window = time.Minute
	case "hour":
		window = time.Hour
	case "day":
		window = 24 * time.Hour
	default:
		return fmt.Errorf("invalid quota window in %q", value)
	}
	q.Requests = count
	q.Window = window
	return nil
}

// Throttle holds the per-scope rate limits.
type Throttle struct {
	Anon         Quota `envconfig:"THROTTLE_ANON" default:"100/day"`
	User         Quota `envconfig:"THROTTLE_USER" default:"1000/day"`
	Login        Quota `envconfig:"THROTTLE_LOGIN" default:"5/min"`
	Registration Quota `envconfig:"THROTTLE_REGISTRATION" default:"3/min"`
	OrderCreate  Quota `envconfig:"THROTTLE_ORDER_CREATE" default:"20/hour"`
}

// Pagination holds the list-endpoint page size bounds.
type Pagination struct {
	DefaultPageSize int `envconfig:"DEFAULT_PAGE_SIZE" default:"6"`
	MaxPageSize     int `envconfig:"MAX_PAGE_SIZE" default:"100"`
}

// Config is the full process configuration.
type Config struct {
	Port        string        `envconfig:"APP_PORT" default:"8080"`
	DatabaseURL string        `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5500,http://127.0.0.1:5500"`

	Throttle   Throttle
	Pagination Pagination
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
