package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/crefinex/internal/core"
	"github.com/JonMunkholm/crefinex/internal/logging"
	"github.com/JonMunkholm/crefinex/internal/web/templates"
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Action string            `json:"action,omitempty"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondError logs the technical error and answers with the mapped
// user-facing message as an HTMX fragment, JSON or plain text.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
	case wantsJSON(r):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg.Message, Action: msg.Action, Code: msg.Code})
	default:
		http.Error(w, msg.Message+" ("+msg.Code+")", status)
	}
}

// respondValidation answers a payload that failed validation.
func (s *Server) respondValidation(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	msg := core.MapError(errInvalidPayload)
	writeJSON(w, r, http.StatusUnprocessableEntity, ErrorResponse{
		Error:  msg.Message,
		Code:   msg.Code,
		Fields: fields,
	})
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client expects JSON. API routes always do.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}
