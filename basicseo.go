// Package basicseo is a small publishing host with editor-controlled SEO
// metadata, built with Go, Echo and templ. It stores pages, posts, products
// and their taxonomies in SQLite, emits title/description/Open Graph tags,
// serves a hierarchical sitemap and canonicalises attachment pages.
//
// Templates are supplied through ViewFuncs; DefaultViews returns the
// built-in ones.
package basicseo

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/basicseo/seo"
	"github.com/eringen/basicseo/sitemap"
	"github.com/eringen/basicseo/views"
)

// ViewFuncs holds the templ components the handlers render. Nil fields fall
// back to DefaultViews.
type ViewFuncs struct {
	Page          func(p views.PageData) templ.Component
	NotFound      func(p views.PageData) templ.Component
	ServerError   func() templ.Component
	AdminLogin    func(showError bool, csrfToken string) templ.Component
	AdminEntities func(d views.AdminEntitiesData) templ.Component
	AdminEntity   func(d views.AdminEntityData) templ.Component
	AdminTerms    func(d views.AdminTermsData) templ.Component
	AdminTerm     func(d views.AdminTermData) templ.Component
}

// DefaultViews returns the built-in templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Page:          views.Page,
		NotFound:      views.NotFound,
		ServerError:   views.ServerError,
		AdminLogin:    views.AdminLogin,
		AdminEntities: views.AdminEntities,
		AdminEntity:   views.AdminEntity,
		AdminTerms:    views.AdminTerms,
		AdminTerm:     views.AdminTerm,
	}
}

func (v *ViewFuncs) fill() {
	d := DefaultViews()
	if v.Page == nil {
		v.Page = d.Page
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
	if v.AdminLogin == nil {
		v.AdminLogin = d.AdminLogin
	}
	if v.AdminEntities == nil {
		v.AdminEntities = d.AdminEntities
	}
	if v.AdminEntity == nil {
		v.AdminEntity = d.AdminEntity
	}
	if v.AdminTerms == nil {
		v.AdminTerms = d.AdminTerms
	}
	if v.AdminTerm == nil {
		v.AdminTerm = d.AdminTerm
	}
}

// App is the central application. It wires the store, the SEO components,
// handlers, middleware and templates together.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Host    *Host
	Views   ViewFuncs
	Log     *zap.Logger
	Metrics *Metrics

	Overrides   *seo.OverrideStore
	Resolver    *seo.Resolver
	Breadcrumbs *seo.BreadcrumbBuilder
	Attachments *seo.AttachmentCanonicalizer
	Sitemaps    *sitemap.Dispatcher

	loginLimiter  *LoginLimiter
	customRoutes  []func(*App)
	externalStore bool
	now           func() time.Time
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, v ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	v.fill()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  v,
		Log:    zap.NewNop(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens the store and wires components, middleware and routes. Start
// calls it; tests call it directly and drive a.Echo.
func (a *App) Init() error {
	if a.Config.AdminPassword == "" {
		return errors.New("basicseo: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("basicseo: SessionSecret is required")
	}
	if err := a.Config.validate(); err != nil {
		return fmt.Errorf("basicseo: invalid config: %w", err)
	}

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("basicseo: init store: %w", err)
		}
		a.Store = store
	}

	a.wire()
	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// wire builds the SEO and sitemap components over the store. Config values
// were validated in Init.
func (a *App) wire() {
	cfg := &a.Config
	a.Host = NewHost(a.Store, cfg, a.Log)
	a.Metrics = NewMetrics()
	a.loginLimiter = NewLoginLimiter(cfg.LoginAttempts, cfg.LoginWindow)

	tieBreak, _ := seo.ParseTieBreak(cfg.CategoryTieBreak)
	content := seo.NewIntrospector(a.Host, a.Store,
		seo.WithTieBreak(tieBreak),
		seo.WithLogger(a.Log.Named("seo")))
	a.Overrides = seo.NewOverrideStore(a.Store, a.Log.Named("seo"))
	a.Resolver = seo.NewResolver(a.Overrides, content, seo.ResolverConfig{
		ShopPageID: cfg.ShopPageID,
		PostTypes:  cfg.SupportedPostTypes,
		Taxonomies: []string{seo.TaxonomyProductCategory},
	}, a.Log.Named("seo"))
	a.Breadcrumbs = seo.NewBreadcrumbBuilder(content)
	a.Attachments = seo.NewAttachmentCanonicalizer(content)

	a.Sitemaps = NewSitemaps(a.Host, *cfg, a.Log, a.now)
}

// NewSitemaps builds the sitemap dispatcher for a validated configuration.
// A nil now uses time.Now.
func NewSitemaps(host *Host, cfg SiteConfig, log *zap.Logger, now func() time.Time) *sitemap.Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	format, _ := sitemap.ParseFormat(cfg.SitemapFormat)
	termTimes, _ := sitemap.ParseTermTimestamps(cfg.TermTimestamps)
	opts := []sitemap.Option{
		sitemap.WithFormat(format),
		sitemap.WithTermTimestamps(termTimes),
		sitemap.WithLogger(log.Named("sitemap")),
	}
	if now != nil {
		opts = append(opts, sitemap.WithClock(now))
	}
	return sitemap.NewDispatcher(sitemap.NewGenerator(host, opts...))
}

// Start initializes the app and serves until the server stops.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Log.Info("listening", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.URL))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets under /public/basicseo/, user assets and uploads
	// under the rest of /public.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	assets := http.StripPrefix("/public/basicseo/", http.FileServer(http.FS(embeddedFS)))
	e.GET("/public/basicseo/*", echo.WrapHandler(assets))
	e.Static("/public", a.Config.StaticDir)

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/metrics", echo.WrapHandler(a.Metrics.Handler()))

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/entity/new/", a.handleAdminNewEntity)
	e.GET("/admin/entity/:id/", a.handleAdminEntity)
	e.POST("/admin/entity/", a.handleAdminSave)
	e.POST("/admin/entity/:id/seo/", a.handleAdminEntitySEO)
	e.DELETE("/admin/entity/:id/", a.handleAdminDelete)
	e.GET("/admin/terms/", a.handleAdminTerms)
	e.GET("/admin/term/:id/", a.handleAdminTerm)
	e.POST("/admin/term/:id/seo/", a.handleAdminTermSEO)
	e.POST("/admin/media/upload/", a.handleMediaUpload)

	// Public routes
	e.GET("/", a.handleHome)
	e.GET("/*", a.handleContent)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil && !a.externalStore {
		return a.Store.Close()
	}
	return nil
}
