package basicseo

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eringen/basicseo/seo"
	"github.com/eringen/basicseo/sitemap"
)

// SiteConfig holds all configuration for a basicseo site.
type SiteConfig struct {
	Name string `yaml:"name"` // Site name (default "Site")
	URL  string `yaml:"url"`  // Canonical URL (default "http://localhost:3000")

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/site.db")
	StaticDir    string `yaml:"static_dir"`    // User assets and uploads (default "public")

	AdminPassword string        `yaml:"admin_password"` // Required: admin login password
	SessionSecret string        `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool          `yaml:"cookie_secure"`  // Set true for HTTPS
	LoginAttempts int           `yaml:"login_attempts"` // Failed logins allowed per window (default 5)
	LoginWindow   time.Duration `yaml:"login_window"`   // (default 1m)

	FrontPageID int64 `yaml:"front_page_id"` // Page shown at "/"; 0 lists recent posts
	ShopPageID  int64 `yaml:"shop_page_id"`  // Page rendered as the shop; 0 disables the shop view

	// SupportedPostTypes get SEO overrides (default post, page, product).
	SupportedPostTypes []string      `yaml:"supported_post_types"`
	PostTypes          []PostTypeDef `yaml:"post_types"`
	Taxonomies         []TaxonomyDef `yaml:"taxonomies"`

	CategoryTieBreak string `yaml:"category_tie_break"` // first, lowest-id, alphabetic, deepest
	SitemapFormat    string `yaml:"sitemap_format"`     // html or xml
	TermTimestamps   string `yaml:"term_timestamps"`    // generated or members
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Site"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.LoginAttempts <= 0 {
		c.LoginAttempts = 5
	}
	if c.LoginWindow <= 0 {
		c.LoginWindow = time.Minute
	}
	if len(c.SupportedPostTypes) == 0 {
		c.SupportedPostTypes = seo.DefaultResolverConfig().PostTypes
	}
	if len(c.PostTypes) == 0 {
		c.PostTypes = DefaultPostTypes()
	}
	if len(c.Taxonomies) == 0 {
		c.Taxonomies = DefaultTaxonomies()
	}
}

// validate checks the knobs that take a fixed set of values.
func (c *SiteConfig) validate() error {
	var errs []error
	if _, err := seo.ParseTieBreak(c.CategoryTieBreak); err != nil {
		errs = append(errs, err)
	}
	if _, err := sitemap.ParseFormat(c.SitemapFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := sitemap.ParseTermTimestamps(c.TermTimestamps); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// postType returns the registered definition of name.
func (c *SiteConfig) postType(name string) (PostTypeDef, bool) {
	for _, pt := range c.PostTypes {
		if pt.Name == name {
			return pt, true
		}
	}
	return PostTypeDef{}, false
}

// taxonomy returns the registered definition of name.
func (c *SiteConfig) taxonomy(name string) (TaxonomyDef, bool) {
	for _, tx := range c.Taxonomies {
		if tx.Name == name {
			return tx, true
		}
	}
	return TaxonomyDef{}, false
}

// LoadConfig reads an optional YAML file and then applies environment
// overrides. A .env file in the working directory is loaded first; existing
// environment variables win over it.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("basicseo: load .env: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("basicseo: read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("basicseo: parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("basicseo: invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(c *SiteConfig) {
	c.Name = EnvOr("SITE_NAME", c.Name)
	c.URL = EnvOr("SITE_URL", c.URL)
	c.Addr = EnvOr("ADDR", c.Addr)
	c.DatabasePath = EnvOr("DATABASE_PATH", c.DatabasePath)
	c.StaticDir = EnvOr("STATIC_DIR", c.StaticDir)
	c.AdminPassword = EnvOr("ADMIN_PASSWORD", c.AdminPassword)
	c.SessionSecret = EnvOr("SESSION_SECRET", c.SessionSecret)
	c.CategoryTieBreak = EnvOr("CATEGORY_TIE_BREAK", c.CategoryTieBreak)
	c.SitemapFormat = EnvOr("SITEMAP_FORMAT", c.SitemapFormat)
	c.TermTimestamps = EnvOr("TERM_TIMESTAMPS", c.TermTimestamps)
	if v, err := strconv.ParseBool(os.Getenv("COOKIE_SECURE")); err == nil {
		c.CookieSecure = v
	}
	if v, err := strconv.ParseInt(os.Getenv("FRONT_PAGE_ID"), 10, 64); err == nil {
		c.FrontPageID = v
	}
	if v, err := strconv.ParseInt(os.Getenv("SHOP_PAGE_ID"), 10, 64); err == nil {
		c.ShopPageID = v
	}
	if v := os.Getenv("SUPPORTED_POST_TYPES"); v != "" {
		c.SupportedPostTypes = FilterEmpty(strings.Split(v, ","))
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the application logger (default zap.NewNop).
func WithLogger(log *zap.Logger) Option {
	return func(a *App) {
		if log != nil {
			a.Log = log
		}
	}
}

// WithStore uses an already opened store instead of opening DatabasePath.
// The App does not close it.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
		a.externalStore = true
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets and uploads.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithClock replaces time.Now for sitemap generation.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
