package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/JonMunkholm/crefinex/internal/auth"
	"github.com/JonMunkholm/crefinex/internal/config"
	"github.com/JonMunkholm/crefinex/internal/logging"
)

// APIKeyAuth returns middleware that checks the X-API-Key header against the
// configured keys. With RequireAPIKey off every request passes; with it on
// and no keys configured only signed-in sessions pass.
func APIKeyAuth(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}
			// The dashboard calls the API with its session cookie.
			if _, ok := auth.ClaimsFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" {
				logging.FromContext(r.Context()).Warn("api key missing", "path", r.URL.Path, "method", r.Method)
				writeJSONError(w, http.StatusUnauthorized, "Falta la clave de acceso", "AUTH_MISSING_KEY")
				return
			}
			if !isValidAPIKey(key, cfg.APIKeys) {
				logging.FromContext(r.Context()).Warn("api key rejected", "path", r.URL.Path, "method", r.Method)
				writeJSONError(w, http.StatusForbidden, "Clave de acceso inválida", "AUTH_INVALID_KEY")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HasValidAPIKey returns a predicate reporting whether an /api request
// carries an accepted X-API-Key. It is always false with RequireAPIKey off.
func HasValidAPIKey(cfg config.SecurityConfig) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if !cfg.RequireAPIKey || !strings.HasPrefix(r.URL.Path, "/api/") {
			return false
		}
		key := r.Header.Get("X-API-Key")
		return key != "" && isValidAPIKey(key, cfg.APIKeys)
	}
}

// isValidAPIKey compares key against every configured key in constant time.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, k := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return valid == 1
}
