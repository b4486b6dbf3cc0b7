package sitecms

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// SiteConfig holds all configuration for a site.
type SiteConfig struct {
	Name        string // Organization name (default "Shield Foundation")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Default blog author for JSON-LD

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/site.db")
	StaticDir    string // User-owned static assets (default "public")

	AdminPassword string        // Required: admin login password
	SessionSecret string        // Required: cookie session encryption secret
	JWTSecret     string        // Bearer token signing key (default SessionSecret)
	TokenTTL      time.Duration // Bearer token lifetime (default 12h)
	CookieSecure  bool          // Set true for HTTPS

	CacheTTL           time.Duration // Public data cache TTL (default 5min)
	AnalyticsRetention time.Duration // How long page views are kept (default 90 days)

	LogLevel  string // debug, info, warn, error (default info)
	LogFormat string // json or console (default json)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Shield Foundation"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.JWTSecret == "" {
		c.JWTSecret = c.SessionSecret
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 12 * time.Hour
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.AnalyticsRetention == 0 {
		c.AnalyticsRetention = 90 * 24 * time.Hour
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

func (c SiteConfig) validate() error {
	if c.AdminPassword == "" {
		return errors.New("sitecms: AdminPassword is required")
	}
	if c.SessionSecret == "" {
		return errors.New("sitecms: SessionSecret is required")
	}
	return nil
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over it.
func LoadConfig() (SiteConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return SiteConfig{}, fmt.Errorf("sitecms: load .env: %w", err)
	}
	cfg := SiteConfig{
		Name:          os.Getenv("SITE_NAME"),
		URL:           os.Getenv("SITE_URL"),
		Description:   os.Getenv("SITE_DESCRIPTION"),
		Author:        os.Getenv("SITE_AUTHOR"),
		Addr:          os.Getenv("ADDR"),
		DatabasePath:  os.Getenv("DATABASE_PATH"),
		StaticDir:     os.Getenv("STATIC_DIR"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogFormat:     os.Getenv("LOG_FORMAT"),
	}
	var err error
	if cfg.TokenTTL, err = envDuration("TOKEN_TTL"); err != nil {
		return SiteConfig{}, err
	}
	if cfg.CacheTTL, err = envDuration("CACHE_TTL"); err != nil {
		return SiteConfig{}, err
	}
	if cfg.AnalyticsRetention, err = envDuration("ANALYTICS_RETENTION"); err != nil {
		return SiteConfig{}, err
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		if cfg.CookieSecure, err = strconv.ParseBool(v); err != nil {
			return SiteConfig{}, fmt.Errorf("sitecms: COOKIE_SECURE: %w", err)
		}
	}
	cfg.setDefaults()
	return cfg, nil
}

func envDuration(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("sitecms: %s: %w", key, err)
	}
	return d, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithLogger replaces the logger built from the config.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithContentBackend replaces the persistence collaborator used by admin
// editing sessions. The default is the App's Store.
func WithContentBackend(b ContentBackend) Option {
	return func(a *App) {
		a.contentBackend = b
	}
}
