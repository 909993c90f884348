package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/JonMunkholm/crefinex/internal/core"
)

// Routes classifies request paths for the guard.
type Routes struct {
	// APIAuthPrefix paths are never redirected.
	APIAuthPrefix string
	// Public paths are reachable without a session.
	Public []string
	// Auth paths are the sign-in pages; signed-in users are sent away from them.
	Auth []string
	// LoginPath receives anonymous visitors.
	LoginPath string
	// DefaultRedirect is where signed-in users land.
	DefaultRedirect string
	// Trusted reports requests authenticated without a session, such as API
	// key holders. They skip the session check.
	Trusted func(r *http.Request) bool
}

// DefaultRoutes returns the dashboard routing table.
func DefaultRoutes() Routes {
	return Routes{
		APIAuthPrefix:   "/api/auth",
		Public:          []string{"/healthz"},
		Auth:            []string{"/auth/login"},
		LoginPath:       "/auth/login",
		DefaultRedirect: "/dashboard",
	}
}

// Decision is the outcome of a guard check.
type Decision struct {
	// Redirect is set when the request must be redirected.
	Redirect string
}

// Decide applies the routing policy to a request path and query.
func (rt Routes) Decide(path, rawQuery string, loggedIn bool) Decision {
	if rt.APIAuthPrefix != "" && strings.HasPrefix(path, rt.APIAuthPrefix) {
		return Decision{}
	}
	if slices.Contains(rt.Auth, path) {
		if loggedIn {
			return Decision{Redirect: rt.DefaultRedirect}
		}
		return Decision{}
	}
	if !loggedIn && !slices.Contains(rt.Public, path) {
		callback := path
		if rawQuery != "" {
			callback += "?" + rawQuery
		}
		return Decision{Redirect: rt.LoginPath + "?callbackUrl=" + url.QueryEscape(callback)}
	}
	return Decision{}
}

// SafeCallback returns target when it is a local path, otherwise fallback.
func SafeCallback(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}

// Guard returns middleware enforcing rt. Valid sessions are attached to the
// request context for handlers and the audit log. Anonymous API calls get
// 401 instead of a redirect.
func Guard(m *Manager, rt Routes) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := m.FromRequest(r)
			loggedIn := err == nil
			if loggedIn {
				ctx := WithClaims(r.Context(), claims)
				ctx = core.ContextWithUser(ctx, claims.Email)
				r = r.WithContext(ctx)
			} else if errors.Is(err, ErrSessionExpired) {
				m.ClearCookie(w)
			}

			if !loggedIn && rt.Trusted != nil && rt.Trusted(r) {
				next.ServeHTTP(w, r)
				return
			}

			d := rt.Decide(r.URL.Path, r.URL.RawQuery, loggedIn)
			if d.Redirect == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !loggedIn && strings.HasPrefix(r.URL.Path, "/api/") {
				slog.Debug("guard: anonymous api request", "path", r.URL.Path)
				msg := core.MapError(ErrUnauthenticated)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"` + msg.Message + `","code":"` + msg.Code + `"}`))
				return
			}

			// HTMX follows HX-Redirect instead of a 3xx on partial requests.
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", d.Redirect)
				w.WriteHeader(http.StatusOK)
				return
			}
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
		})
	}
}
