// Package web serves the course reports over HTTP.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/coursestats/internal/analyzer"
	"github.com/JonMunkholm/coursestats/internal/config"
	"github.com/JonMunkholm/coursestats/internal/course"
	"github.com/JonMunkholm/coursestats/internal/store"
	"github.com/JonMunkholm/coursestats/internal/web/middleware"
)

// Archiver persists record snapshots. *store.Store implements it.
type Archiver interface {
	Archive(ctx context.Context, records []course.Record) (store.ArchiveResult, error)
	Batches(ctx context.Context, limit int) ([]store.ArchiveResult, error)
}

// Server is the HTTP front end for an Analyzer.
type Server struct {
	analyzer *analyzer.Analyzer
	archiver Archiver
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires routes and middleware. archiver may be nil, in which case
// the archive endpoints answer 501.
func NewServer(a *analyzer.Analyzer, archiver Archiver, cfg *config.Config) *Server {
	s := &Server{
		analyzer: a,
		archiver: archiver,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.router.Use(httprate.Limit(
			s.cfg.Rate.RequestsPerMinute,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "60")
				respondMessage(w, r, analyzer.UserMessage{
					Message: "Rate limit exceeded",
					Action:  "Wait a minute before retrying",
					Code:    "RATE001",
				}, http.StatusTooManyRequests)
			}),
		))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleDashboard)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/institutions", s.handleInstitutions)
		r.Get("/institution-subjects", s.handleInstitutionSubjects)
		r.Get("/instructors", s.handleInstructors)
		r.Get("/catalog", s.handleCatalog)

		r.Route("/courses", func(r chi.Router) {
			r.Get("/top", s.handleTopCourses)
			r.Get("/search", s.handleSearchCourses)
			r.Get("/recommend", s.handleRecommendCourses)
		})

		r.Route("/archive", func(r chi.Router) {
			r.Get("/", s.handleListArchives)
			r.With(middleware.APIKeyAuth(s.cfg.Database.ArchiveAPIKeys)).Post("/", s.handleArchive)
		})
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
