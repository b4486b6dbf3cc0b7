// Package sitecms is the website and content-management backend of a
// non-profit organization. It serves the public pages (home, about,
// programs, impact, gallery, blog, contact), a public JSON API, and an
// authenticated admin API for editing records and site content documents.
//
// Users provide page templates via the ViewFuncs struct (see the views
// package for defaults); sitecms owns the handlers, middleware, storage and
// admin editing sessions.
package sitecms

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/shieldfoundation/sitecms/analytics"
	"github.com/shieldfoundation/sitecms/content"
)

// ContentBackend loads and saves whole content documents.
type ContentBackend = content.Backend

// PageData is passed to every page template.
type PageData struct {
	Site      SiteConfig
	Content   content.Document
	Meta      PageMeta
	Path      string
	CsrfToken string
}

// ViewFuncs holds the page components the framework calls when rendering.
// This is the inversion-of-control mechanism that lets users own the markup.
type ViewFuncs struct {
	Home           func(d PageData, news []NewsArticle, stats []ImpactStat, stories []SuccessStory) templ.Component
	About          func(d PageData, team []TeamMember) templ.Component
	Programs       func(d PageData, stories []SuccessStory) templ.Component
	Impact         func(d PageData, stats []ImpactStat, stories []SuccessStory) templ.Component
	Gallery        func(d PageData, items []GalleryItem) templ.Component
	Blog           func(d PageData, posts []BlogPost, activeTag string, tags []string) templ.Component
	Post           func(d PageData, post BlogPost, related []BlogPost) templ.Component
	Contact        func(d PageData, info ContactInfo, sent bool, errMsg string) templ.Component
	AdminLogin     func(d PageData, showError bool) templ.Component
	AdminDashboard func(d PageData, ov Overview, tables []TableInfo, docs []string) templ.Component
	NotFound       func(d PageData) templ.Component
	ServerError    func(d PageData) templ.Component
}

// App is the central application. It wires together the store, cache,
// handlers, middleware, editing sessions and user-provided templates.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Store     *Store
	Cache     *PublicCache
	Views     ViewFuncs
	Logger    *zap.Logger
	Tokens    *TokenIssuer
	Sessions  *content.Sessions
	Analytics *analytics.Tracker

	loginLimiter   *RateLimiter
	contactLimiter *RateLimiter
	contentBackend ContentBackend
	customRoutes   []func(*App)
	stopPrune      chan struct{}
	initialized    bool
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens the database, seeds default content and registers middleware
// and routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if err := a.Config.validate(); err != nil {
		return err
	}

	if a.Logger == nil {
		logger, err := NewLogger(a.Config.LogLevel, a.Config.LogFormat)
		if err != nil {
			return fmt.Errorf("sitecms: init logger: %w", err)
		}
		a.Logger = logger
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("sitecms: init store: %w", err)
	}
	a.Store = store

	if err := SeedDefaultContent(context.Background(), a.Store); err != nil {
		return fmt.Errorf("sitecms: seed content: %w", err)
	}

	if a.contentBackend == nil {
		a.contentBackend = a.Store
	}
	a.Cache = NewPublicCache(a.Store, a.Config.CacheTTL)
	a.Tokens = NewTokenIssuer(a.Config.JWTSecret, a.Config.TokenTTL, a.Config.Name)
	a.Sessions = content.NewSessions(a.contentBackend)
	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.contactLimiter = NewRateLimiter(5, 10*time.Minute)
	a.startSessionPruning()

	if err := a.initAnalytics(); err != nil {
		return fmt.Errorf("sitecms: init analytics: %w", err)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the app and serves HTTP until the server is closed.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Logger.Info("server starting",
		zap.String("addr", a.Config.Addr),
		zap.String("site", a.Config.Name),
		zap.String("database", a.Config.DatabasePath))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) initAnalytics() error {
	ctx := context.Background()
	as, err := analytics.NewStore(a.Store.DB())
	if err != nil {
		return err
	}
	var host string
	if u, err := url.Parse(a.Config.URL); err == nil {
		host = u.Host
	}
	a.Analytics, err = analytics.NewTracker(ctx, as, host, a.Logger, untrackedPath)
	if err != nil {
		return err
	}
	a.Analytics.StartCleanup(a.Config.AnalyticsRetention, 24*time.Hour)
	return nil
}

// untrackedPath excludes assets, machine endpoints and the admin area from
// page view analytics.
func untrackedPath(path string) bool {
	for _, prefix := range []string{"/public/", "/api/", "/admin"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return path == "/feed.xml" || path == "/sitemap.xml" || path == "/robots.txt"
}

// startSessionPruning ends editing sessions older than the token lifetime;
// their tokens can no longer be used.
func (a *App) startSessionPruning() {
	a.stopPrune = make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := a.Sessions.Prune(time.Now().Add(-a.Config.TokenTTL)); n > 0 {
					a.Logger.Info("pruned editing sessions", zap.Int("count", n))
				}
			case <-a.stopPrune:
				return
			}
		}
	}()
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public pages
	e.GET("/", a.handleHome)
	e.GET("/about/", a.handleAbout)
	e.GET("/programs/", a.handlePrograms)
	e.GET("/impact/", a.handleImpact)
	e.GET("/gallery/", a.handleGallery)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/contact/", a.handleContact)
	e.POST("/contact/", a.handleContactSubmit)

	// Server-rendered admin
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", a.handleAdminLogout)

	// Public API
	api := e.Group("/api")
	api.GET("/content/:name", a.apiPublicContent)
	api.GET("/news", a.apiPublicNews)
	api.GET("/blog", a.apiPublicBlog)
	api.GET("/blog/:slug", a.apiPublicPost)
	api.GET("/stories", a.apiPublicStories)
	api.GET("/team", a.apiPublicTeam)
	api.GET("/gallery", a.apiPublicGallery)
	api.GET("/stats", a.apiPublicStats)
	api.GET("/contact-info", a.apiPublicContactInfo)
	api.POST("/contact", a.apiContactSubmit)

	api.POST("/auth/login", a.apiLogin)
	api.GET("/auth/verify", a.apiVerify, a.requireAdmin)
	api.POST("/auth/logout", a.apiLogout, a.requireAdmin)

	// Admin API
	admin := api.Group("/admin", a.requireAdmin)
	a.registerAdminAPI(admin)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopPrune != nil {
		close(a.stopPrune)
		a.stopPrune = nil
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.contactLimiter != nil {
		a.contactLimiter.Stop()
	}
	if a.Analytics != nil {
		a.Analytics.Stop()
	}
	var err error
	if a.Store != nil {
		err = a.Store.Close()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return err
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("sitecms: required environment variable %s is not set", key)
	}
	return v
}
