// Package bizsite is the Digital Biz Tech marketing site: public pages for
// services, products, case studies, blog, careers and contact, plus an admin
// panel that edits the content behind them.
//
// Content lives in collections that are read from a key-value store and fall
// back to bundled JSON. Pages are rendered by the components in ViewFuncs, so
// callers can replace any page without touching the handlers.
package bizsite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/digitalbiztech/bizsite/analytics"
	"github.com/digitalbiztech/bizsite/content"
	"github.com/digitalbiztech/bizsite/media"
	"github.com/digitalbiztech/bizsite/views"
)

// ViewFuncs holds the page components the handlers render. DefaultViews
// returns the built-in set.
type ViewFuncs struct {
	Home        func(views.HomePage) templ.Component
	Services    func(views.ServicesPage) templ.Component
	Service     func(views.ServicePage) templ.Component
	Products    func(views.ProductsPage) templ.Component
	CaseStudies func(views.CaseStudiesPage) templ.Component
	CaseStudy   func(views.CaseStudyPage) templ.Component
	Blog        func(views.BlogPage) templ.Component
	Post        func(views.PostPage) templ.Component
	Careers     func(views.CareersPage) templ.Component
	About       func(views.AboutPage) templ.Component
	Contact     func(views.ContactPage) templ.Component
	NotFound    func(views.ErrorPage) templ.Component
	ServerError func(views.ErrorPage) templ.Component

	AdminLogin     func(views.LoginPage) templ.Component
	AdminDashboard func(views.DashboardPage) templ.Component
	AdminList      func(views.ManagerListPage) templ.Component
	AdminForm      func(views.ManagerFormPage) templ.Component
	AdminLegalDocs func(views.LegalDocsPage) templ.Component
	AdminMedia     func(views.MediaPage) templ.Component
	AdminInquiries func(views.InquiriesPage) templ.Component
}

// DefaultViews returns the components from the views package.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		Services:    views.Services,
		Service:     views.Service,
		Products:    views.Products,
		CaseStudies: views.CaseStudies,
		CaseStudy:   views.CaseStudy,
		Blog:        views.Blog,
		Post:        views.Post,
		Careers:     views.Careers,
		About:       views.About,
		Contact:     views.Contact,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,

		AdminLogin:     views.AdminLogin,
		AdminDashboard: views.AdminDashboard,
		AdminList:      views.AdminList,
		AdminForm:      views.AdminForm,
		AdminLegalDocs: views.AdminLegalDocs,
		AdminMedia:     views.AdminMedia,
		AdminInquiries: views.AdminInquiries,
	}
}

// App wires together the stores, caches, handlers, middleware and views.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Logger    *zap.Logger
	DB        *sql.DB
	Content   *content.Store
	Blog      *BlogIndex
	Media     *media.Library
	Inquiries *InquiryStore
	Profile   *content.Profile
	Metrics   *analytics.Metrics
	Views     ViewFuncs

	loginLimiter   *RateLimiter
	contactLimiter *RateLimiter
	managers       []manager
	customRoutes   []func(*App)
	now            func() time.Time
	ownsDB         bool
}

// New creates an App. Call Setup before serving requests.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Logger: zap.NewNop(),
		Views:  DefaultViews(),
		now:    time.Now,
		ownsDB: true,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup validates the configuration, opens storage and registers middleware
// and routes.
func (a *App) Setup(ctx context.Context) error {
	if err := a.Config.Validate(); err != nil {
		return err
	}

	profile, err := content.LoadProfile(a.Config.ProfilePath)
	if err != nil {
		return fmt.Errorf("bizsite: %w", err)
	}
	a.Profile = profile

	if a.DB == nil {
		db, err := OpenDatabase(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("bizsite: open database: %w", err)
		}
		a.DB = db
	}

	if a.Config.MetricsEnabled && a.Metrics == nil {
		m, err := analytics.NewMetrics(nil)
		if err != nil {
			return fmt.Errorf("bizsite: init metrics: %w", err)
		}
		a.Metrics = m
	}

	kv, err := content.NewSQLiteKV(a.DB)
	if err != nil {
		return fmt.Errorf("bizsite: init content: %w", err)
	}
	a.Content = content.NewStore(kv, a.Config.DefaultsFS(),
		content.WithLogger(a.Logger.Named("content")),
		content.WithCacheTTL(a.Config.ContentCacheTTL),
		content.WithSaveHook(a.contentChanged),
	)
	a.Blog = NewBlogIndex(a.Content, a.Config.ContentCacheTTL)

	backend, err := a.mediaBackend(ctx)
	if err != nil {
		return fmt.Errorf("bizsite: init media: %w", err)
	}
	libOpts := []media.Option{
		media.WithLogger(a.Logger.Named("media")),
		media.WithClock(a.now),
	}
	if a.Metrics != nil {
		libOpts = append(libOpts, media.WithUploadHook(a.Metrics.Uploaded))
	}
	a.Media = media.NewLibrary(backend, libOpts...)

	a.Inquiries, err = NewInquiryStore(a.DB)
	if err != nil {
		return fmt.Errorf("bizsite: init inquiries: %w", err)
	}

	a.loginLimiter = NewRateLimiter(a.Config.LoginAttempts, a.Config.LoginWindow)
	a.contactLimiter = NewRateLimiter(a.Config.ContactLimit, a.Config.ContactWindow)
	a.managers = a.buildManagers()

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) mediaBackend(ctx context.Context) (media.Backend, error) {
	if a.Config.MediaBackend == MediaMinIO {
		return media.NewMinIOBackend(ctx, a.Config.MinIO)
	}
	return media.NewSQLiteBackend(a.DB)
}

func (a *App) contentChanged(kind content.Kind) {
	if kind == content.KindBlogs {
		a.Blog.Invalidate()
	}
	if a.Metrics != nil {
		a.Metrics.ContentSaved(string(kind))
	}
	a.Logger.Info("content saved", zap.String("kind", string(kind)))
}

// Handler returns the HTTP handler, instrumented with OpenTelemetry.
func (a *App) Handler() http.Handler {
	return otelhttp.NewHandler(a.Echo, "bizsite",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
		}))
}

// Run serves HTTP on Config.Addr and watches the defaults directory until
// ctx is cancelled, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("listening", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.URL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return a.WatchDefaults(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// WatchDefaults reloads the default collections whenever a file in
// DefaultsDir changes. It returns immediately when the embedded defaults are
// in use.
func (a *App) WatchDefaults(ctx context.Context) error {
	if a.Config.DefaultsDir == "" {
		return nil
	}
	w := &content.Watcher{
		Dir:    a.Config.DefaultsDir,
		Logger: a.Logger.Named("watcher"),
		OnChange: func() {
			a.Content.InvalidateDefaults()
			a.Blog.Invalidate()
			a.Logger.Info("default content reloaded", zap.String("dir", a.Config.DefaultsDir))
		},
	}
	return w.Run(ctx)
}

// Close releases the limiters and, unless it was supplied by the caller,
// the database.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.contactLimiter != nil {
		a.contactLimiter.Stop()
	}
	if a.DB != nil && a.ownsDB {
		return a.DB.Close()
	}
	return nil
}
