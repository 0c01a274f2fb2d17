package bizsite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/digitalbiztech/bizsite/content"
	"github.com/digitalbiztech/bizsite/media"
)

// Media backends.
const (
	MediaSQLite = "sqlite"
	MediaMinIO  = "minio"
)

// SiteConfig holds all configuration for the site. Fields are read from the
// environment by LoadConfig; zero values get defaults in setDefaults.
type SiteConfig struct {
	Name        string `env:"SITE_NAME"`        // Site name (default "Digital Biz Tech")
	URL         string `env:"SITE_URL"`         // Canonical URL (default "http://localhost:3000")
	Description string `env:"SITE_DESCRIPTION"` // Meta description and RSS channel text

	Addr         string `env:"ADDR"`          // Listen address (default ":3000")
	DatabasePath string `env:"DATABASE_PATH"` // SQLite path (default "data/bizsite.db")

	DefaultsDir     string        `env:"DEFAULTS_DIR"`      // On-disk default JSON; embedded bundle when empty
	ProfilePath     string        `env:"SITE_PROFILE"`      // site.yaml override; embedded when empty
	ContentCacheTTL time.Duration `env:"CONTENT_CACHE_TTL"` // default 5m

	AdminPassword string `env:"ADMIN_PASSWORD"`       // Required: admin login password
	SessionSecret string `env:"ADMIN_SESSION_SECRET"` // Required: session encryption secret
	CookieSecure  bool   `env:"COOKIE_SECURE"`        // Set true for HTTPS

	LoginAttempts int           `env:"LOGIN_ATTEMPTS"` // per IP per LoginWindow (default 5)
	LoginWindow   time.Duration `env:"LOGIN_WINDOW"`   // default 1m
	ContactLimit  int           `env:"CONTACT_LIMIT"`  // submissions per IP per ContactWindow (default 5)
	ContactWindow time.Duration `env:"CONTACT_WINDOW"` // default 10m

	MediaBackend string            `env:"MEDIA_BACKEND"` // "sqlite" (default) or "minio"
	MinIO        media.MinIOConfig `envPrefix:"MINIO_"`

	MetricsEnabled bool `env:"METRICS_ENABLED"`

	LogLevel  string `env:"LOG_LEVEL"`  // debug, info, warn, error (default info)
	LogFormat string `env:"LOG_FORMAT"` // json or console (default json)

	OTLPEndpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TraceSampleRatio float64 `env:"OTEL_TRACE_SAMPLE_RATIO" envDefault:"1"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Digital Biz Tech"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Description == "" {
		c.Description = "Salesforce, AI, SAP and data engineering consulting."
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/bizsite.db"
	}
	if c.ContentCacheTTL == 0 {
		c.ContentCacheTTL = 5 * time.Minute
	}
	if c.LoginAttempts == 0 {
		c.LoginAttempts = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
	if c.ContactLimit == 0 {
		c.ContactLimit = 5
	}
	if c.ContactWindow == 0 {
		c.ContactWindow = 10 * time.Minute
	}
	if c.MediaBackend == "" {
		c.MediaBackend = MediaSQLite
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// Validate reports the first missing or inconsistent setting.
func (c SiteConfig) Validate() error {
	if c.AdminPassword == "" {
		return errors.New("bizsite: ADMIN_PASSWORD is required")
	}
	if c.SessionSecret == "" {
		return errors.New("bizsite: ADMIN_SESSION_SECRET is required")
	}
	switch c.MediaBackend {
	case MediaSQLite, "":
	case MediaMinIO:
		if c.MinIO.Endpoint == "" {
			return errors.New("bizsite: MINIO_ENDPOINT is required when MEDIA_BACKEND=minio")
		}
	default:
		return fmt.Errorf("bizsite: unknown MEDIA_BACKEND %q", c.MediaBackend)
	}
	return nil
}

// LoadConfig reads .env files (missing files are ignored) and then the
// process environment. Values already set in the environment win.
func LoadConfig(envFiles ...string) (SiteConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return SiteConfig{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (SiteConfig, error) {
	var cfg SiteConfig
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return SiteConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// NewLogger builds the zap logger described by LogLevel and LogFormat.
func (c SiteConfig) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	var zc zap.Config
	if c.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = level
	return zc.Build()
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the application logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithViews replaces the page components.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithClock overrides the time source used for dates and file names.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithDatabase uses an already opened database instead of DatabasePath.
// The caller keeps ownership of db.
func WithDatabase(db *sql.DB) Option {
	return func(a *App) {
		a.DB = db
		a.ownsDB = false
	}
}

// DefaultsFS is the directory of default collections: DefaultsDir when set,
// otherwise the embedded bundle.
func (c SiteConfig) DefaultsFS() fs.FS {
	if c.DefaultsDir == "" {
		return content.Defaults()
	}
	return os.DirFS(c.DefaultsDir)
}
