// Package config reads process settings from the environment (and an
// optional .env file).
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
)

// MemoryDatabase selects the in-process store instead of Postgres.
const MemoryDatabase = "memory"

// Config holds environment-based settings for every command.
type Config struct {
	Environment string `env:"APP_ENV, default=production"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`

	ServerAddress  string `env:"SERVER_ADDRESS, default=:8080"`
	DatabaseURL    string `env:"DATABASE_URL, default=memory"`
	MigrationsPath string `env:"MIGRATIONS_PATH, default=./migrations"`
	JWTSecret      string `env:"JWT_SECRET"`
	TemplatesPath  string `env:"TEMPLATES_PATH, default=./web/templates"`
	SeedFile       string `env:"SEED_FILE, default=./config/seed.yaml"`
	// SeedAdminPassword overrides the seed file's admin password.
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD"`

	RedisAddress  string `env:"REDIS_ADDRESS"`
	RedisUsername string `env:"REDIS_USERNAME"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	// RedisPrefix namespaces the site and schedule cache keys.
	RedisPrefix string `env:"REDIS_PREFIX, default=masjid"`

	MQTTBroker string `env:"MQTT_BROKER"`
	MQTTPrefix string `env:"MQTT_PREFIX, default=masjid"`

	PrayerAPI     string `env:"PRAYER_API_URL"`
	PrayerCity    string `env:"PRAYER_CITY, default=Cape Town"`
	PrayerCountry string `env:"PRAYER_COUNTRY, default=South Africa"`
	PrayerMethod  int    `env:"PRAYER_METHOD, default=3"`
	Timezone      string `env:"VENUE_TIMEZONE, default=Africa/Johannesburg"`

	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT, default=20s"`

	APIBaseURL  string `env:"API_BASE_URL, default=http://localhost:8080/api"`
	CacheDir    string `env:"CACHE_DIR, default=./.cache"`
	DisplayName string `env:"DISPLAY_NAME, default=main"`

	// credentials for cmd/admin when not given as flags
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load reads .env when present, then the environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromLookuper(ctx, envconfig.OsLookuper())
}

// FromLookuper processes the config from l.
func FromLookuper(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Dev() bool { return strings.EqualFold(c.Environment, "dev") }

// Validate checks what the API server needs beyond the defaults.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if _, err := c.Venue(); err != nil {
		return err
	}
	return nil
}

// Venue is the time zone prayer times and broadcasts are expressed in.
func (c *Config) Venue() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid VENUE_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SetupLogging configures the global zerolog logger: a console writer in
// development, JSON otherwise.
func (c *Config) SetupLogging() {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if c.Dev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
