package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/crefinex/internal/core"
)

var errRateLimited = errors.New("rate limit exceeded")

// AuditMetadata stores the client IP and user agent in the request context
// for audit entries. It must run after TrustedRealIP.
func AuditMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithIPAddress(r.Context(), ClientIP(r))
		ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q,"code":%q}`, message, code)
}
