package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

const maxDirectoryTimeout = 60 * time.Second

// Site holds the wedding site configuration. It is read once at startup and
// passed by value afterwards.
type Site struct {
	WeddingDate      time.Time     `env:"WEDDING_DATE" envDefault:"2026-05-02T16:00:00-03:00"`
	CoupleNames      string        `env:"COUPLE_NAMES" envDefault:"Júlia & Vitor"`
	VenueName        string        `env:"VENUE_NAME" envDefault:"Espaço Quinta das Flores"`
	VenueMapURL      string        `env:"VENUE_MAP_URL" envDefault:"https://maps.google.com"`
	DirectoryURL     string        `env:"DIRECTORY_URL" envDefault:"http://localhost:8081/exec"`
	DirectoryTimeout time.Duration `env:"DIRECTORY_TIMEOUT" envDefault:"15s"`
	HTTPAddr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	SessionIdleTTL   time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	WhatsApp         WhatsApp
}

// WhatsApp configures the optional confirmation notifier.
type WhatsApp struct {
	DataDir     string `env:"WHATSAPP_DATA_DIR" envDefault:"data"`
	NotifyPhone string `env:"WHATSAPP_NOTIFY_PHONE"`
	CountryCode string `env:"WHATSAPP_COUNTRY_CODE" envDefault:"55"`
}

// Enabled reports whether confirmations should be forwarded over WhatsApp.
func (w WhatsApp) Enabled() bool {
	return w.NotifyPhone != ""
}

// Directory holds the configuration of the local guest directory.
type Directory struct {
	Addr           string   `env:"DIRECTORY_ADDR" envDefault:":8081"`
	DBPath         string   `env:"DIRECTORY_DB_PATH" envDefault:"data/guests.db"`
	AllowedOrigins []string `env:"DIRECTORY_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadSite loads the site configuration from environment variables
func LoadSite() (Site, error) {
	var cfg Site
	if err := env.Parse(&cfg); err != nil {
		return Site{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Site{}, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted safely.
func (c Site) Validate() error {
	if c.DirectoryURL == "" {
		return fmt.Errorf("DIRECTORY_URL is required")
	}
	u, err := url.Parse(c.DirectoryURL)
	if err != nil {
		return fmt.Errorf("invalid DIRECTORY_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("DIRECTORY_URL must be http or https, got %q", u.Scheme)
	}
	if c.DirectoryTimeout <= 0 || c.DirectoryTimeout > maxDirectoryTimeout {
		return fmt.Errorf("DIRECTORY_TIMEOUT must be in (0, %s], got %s", maxDirectoryTimeout, c.DirectoryTimeout)
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be positive, got %s", c.SessionIdleTTL)
	}
	return nil
}

// LoadDirectory loads the guest directory configuration from environment variables
func LoadDirectory() (Directory, error) {
	var cfg Directory
	if err := env.Parse(&cfg); err != nil {
		return Directory{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		return Directory{}, fmt.Errorf("DIRECTORY_DB_PATH is required")
	}
	return cfg, nil
}

// NewLogger builds the root logger. Components derive their own with
// Component.
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
