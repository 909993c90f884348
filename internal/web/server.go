// Package web provides the HTTP server and handlers for the admin dashboard.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/JonMunkholm/crefinex/internal/auth"
	"github.com/JonMunkholm/crefinex/internal/config"
	"github.com/JonMunkholm/crefinex/internal/core"
	mw "github.com/JonMunkholm/crefinex/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DataService is the resource backend the handlers drive.
type DataService interface {
	ListResources() []core.ResourceInfo
	ListResourcesByGroup() map[string][]core.ResourceInfo
	Counts(ctx context.Context) []core.ResourceCount
	Rows(ctx context.Context, key string) (*core.RowSet, error)
	DeleteMany(ctx context.Context, key string, ids []string) (core.DeleteResult, error)
	LogAudit(ctx context.Context, params core.AuditLogParams) (*core.AuditEntry, error)
	ListAudit(ctx context.Context, filter core.AuditLogFilter) ([]core.AuditEntry, error)
}

// Authenticator checks sign-in credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*auth.User, error)
}

// Server is the HTTP server for the dashboard.
type Server struct {
	cfg      *config.Config
	data     DataService
	authn    Authenticator
	sessions *auth.Manager
	routes   auth.Routes
	validate *requestValidator
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires the router. Background sweeps of the rate limiters stop
// when ctx is done.
func NewServer(ctx context.Context, cfg *config.Config, data DataService, authn Authenticator) *Server {
	routes := auth.DefaultRoutes()
	routes.LoginPath = cfg.Auth.LoginPath
	routes.DefaultRedirect = cfg.Auth.DefaultRedirect
	if !slices.Contains(routes.Auth, cfg.Auth.LoginPath) {
		routes.Auth = append(routes.Auth, cfg.Auth.LoginPath)
	}
	routes.Trusted = mw.HasValidAPIKey(cfg.Security)

	s := &Server{
		cfg:   cfg,
		data:  data,
		authn: authn,
		sessions: auth.NewManager(auth.ManagerConfig{
			Secret:     cfg.Auth.Secret,
			TTL:        cfg.Auth.SessionTTL,
			CookieName: cfg.Auth.CookieName,
			Secure:     cfg.Auth.SecureCookie,
		}),
		routes:   routes,
		validate: newRequestValidator(),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware(ctx)
	s.setupRoutes(ctx)
	return s
}

func (s *Server) setupMiddleware(ctx context.Context) {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.AuditMetadata)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(mw.SecurityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := mw.NewRateLimiter(ctx, s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.Middleware)
	}

	s.router.Use(auth.Guard(s.sessions, s.routes))
}

func (s *Server) setupRoutes(ctx context.Context) {
	mutationLimit := s.perRouteLimit(ctx, s.cfg.Rate.MutationLimit)
	loginLimit := s.perRouteLimit(ctx, s.cfg.Rate.LoginLimit)

	s.router.Get("/healthz", s.handleHealth)

	// Pages
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/dashboard", s.handleDashboard)
	s.router.Get("/dashboard/{resource}", s.handleTableView)
	s.router.Get("/audit-log", s.handleAuditLog)

	// Sign-in
	s.router.Get(s.cfg.Auth.LoginPath, s.handleLoginPage)
	s.router.With(loginLimit).Post(s.cfg.Auth.LoginPath, s.handleLogin)
	s.router.Post("/auth/logout", s.handleLogout)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(s.cfg.Security))

		r.Get("/resources", s.handleListResources)
		r.Get("/resources/{resource}/rows", s.handleRows)
		r.Get("/resources/{resource}/export", s.handleExport)
		r.With(mutationLimit).Post("/resources/{resource}/delete", s.handleDelete)

		r.Get("/audit", s.handleAuditJSON)
	})
}

// perRouteLimit returns a tighter limiter for a route group, or a no-op
// when rate limiting is off.
func (s *Server) perRouteLimit(ctx context.Context, perMinute int) func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled || perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw.NewRateLimiter(ctx, perMinute, time.Minute).Middleware
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
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

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "path", r.URL.Path, "error", err)
	}
}
