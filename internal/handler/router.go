package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/prn-tf/reuniteit/internal/auth"
)

// Router assembles the full HTTP surface.
type Router struct {
	authHandler    *AuthHandler
	reportHandler  *ReportHandler
	profileHandler *ProfileHandler
	adminHandler   *AdminHandler
	renderer       *Renderer
	authMiddleware func(http.Handler) http.Handler
	metrics        *Metrics
	uploadsDir     string
	uploadsURL     string
	logger         zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	AuthHandler    *AuthHandler
	ReportHandler  *ReportHandler
	ProfileHandler *ProfileHandler
	AdminHandler   *AdminHandler
	Renderer       *Renderer
	AuthMiddleware func(http.Handler) http.Handler
	Metrics        *Metrics

	// UploadsDir, when non-empty, is served at UploadsURL for the
	// filesystem storage backend. The S3 backend serves its own URLs.
	UploadsDir string
	UploadsURL string

	Logger zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		authHandler:    cfg.AuthHandler,
		reportHandler:  cfg.ReportHandler,
		profileHandler: cfg.ProfileHandler,
		adminHandler:   cfg.AdminHandler,
		renderer:       cfg.Renderer,
		authMiddleware: cfg.AuthMiddleware,
		metrics:        cfg.Metrics,
		uploadsDir:     cfg.UploadsDir,
		uploadsURL:     cfg.UploadsURL,
		logger:         cfg.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}
	r.Use(rt.authMiddleware)

	r.Get("/health", rt.handleHealth)

	rt.authHandler.RegisterRoutes(r)
	rt.reportHandler.RegisterRoutes(r)
	rt.adminHandler.RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		rt.profileHandler.RegisterRoutes(r)
		rt.reportHandler.RegisterProtectedRoutes(r)
	})

	rt.registerStaticPages(r)

	if rt.uploadsDir != "" {
		fs := http.StripPrefix(rt.uploadsURL+"/", http.FileServer(http.Dir(rt.uploadsDir)))
		r.Get(rt.uploadsURL+"/*", fs.ServeHTTP)
	}

	r.NotFound(rt.handleNotFound)

	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// StaticPageData contains data for the informational pages.
type StaticPageData struct {
	PageData
	Heading    string
	Paragraphs []string
}

func (rt *Router) registerStaticPages(r chi.Router) {
	pages := []struct {
		path        string
		title       string
		description string
		heading     string
		paragraphs  []string
	}{
		{
			path:        "/about-us",
			title:       "About Us | ReuniteIt",
			description: "Learn more about ReuniteIt and our mission to reunite lost items with their owners.",
			heading:     "About ReuniteIt",
			paragraphs: []string{
				"ReuniteIt helps communities reunite lost items with their owners.",
				"Report what you lost or found, and let others do the searching with you.",
			},
		},
		{
			path:        "/contact",
			title:       "Contact | ReuniteIt",
			description: "Get in touch with the ReuniteIt team for support or partnership inquiries.",
			heading:     "Contact",
			paragraphs: []string{
				"Questions, feedback, or partnership inquiries? Reach the team at support@reuniteit.example.",
			},
		},
		{
			path:        "/privacy-policy",
			title:       "Privacy Policy | ReuniteIt",
			description: "Read our privacy policy and how we handle user data responsibly.",
			heading:     "Privacy Policy",
			paragraphs: []string{
				"We store only the account details you give us and the reports you post.",
				"Passwords are stored as one-way hashes and are never shared or displayed.",
			},
		},
		{
			path:        "/terms-of-service",
			title:       "Terms of Service | ReuniteIt",
			description: "Read the terms of service for using ReuniteIt.",
			heading:     "Terms of Service",
			paragraphs: []string{
				"Post only truthful reports about items you actually lost or found.",
				"Listings that abuse the service are removed by the moderators.",
			},
		},
	}

	for _, page := range pages {
		page := page
		r.Get(page.path, func(w http.ResponseWriter, req *http.Request) {
			rt.renderer.Render(w, http.StatusOK, "static_page.html", StaticPageData{
				PageData: PageData{
					Title:       page.title,
					Description: page.description,
					URL:         rt.renderer.PageURL(page.path),
					User:        auth.UserFrom(req.Context()),
				},
				Heading:    page.heading,
				Paragraphs: page.paragraphs,
			})
		})
	}
}

func (rt *Router) handleNotFound(w http.ResponseWriter, r *http.Request) {
	rt.renderer.Render(w, http.StatusNotFound, "not_found.html", PageData{
		Title:       "404 | Page Not Found",
		Description: "The page you are looking for could not be found.",
		URL:         rt.renderer.PageURL(r.URL.Path),
		HideAuthNav: true,
	})
}
