package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/crefinex/internal/auth"
	"github.com/JonMunkholm/crefinex/internal/core"
	"github.com/JonMunkholm/crefinex/internal/web/templates"
)

// LoginResponse is the JSON answer to a successful sign-in.
type LoginResponse struct {
	Success  string `json:"success"`
	Redirect string `json:"redirect"`
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	_ = templates.LoginPage(templates.LoginParams{
		CallbackURL: r.URL.Query().Get("callbackUrl"),
	}).Render(r.Context(), w)
}

// handleLogin checks credentials, sets the session cookie and sends the
// user to the callback URL.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLoginRequest(r)
	if err != nil {
		s.respondError(w, r, errInvalidPayload, http.StatusBadRequest)
		return
	}

	params := templates.LoginParams{Email: req.Email, CallbackURL: req.CallbackURL}
	if fields := s.validate.Struct(req); fields != nil {
		if wantsJSON(r) {
			s.respondValidation(w, r, fields)
			return
		}
		params.FieldErrors = fields
		s.renderLogin(w, r, params, http.StatusUnprocessableEntity)
		return
	}

	user, err := s.authn.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, auth.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
			s.audit(r, core.AuditLogParams{Action: core.ActionLoginFailed, UserEmail: strings.TrimSpace(req.Email)})
		}
		logger(r).Warn("login failed", "email", req.Email, "error", err)
		if wantsJSON(r) {
			s.respondError(w, r, err, status)
			return
		}
		params.FormError = core.MapError(err).Message
		s.renderLogin(w, r, params, status)
		return
	}

	token, expires, err := s.sessions.Issue(*user)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.sessions.SetCookie(w, token, expires)
	s.audit(r, core.AuditLogParams{Action: core.ActionLogin, UserEmail: user.Email})
	logger(r).Info("login", "email", user.Email)

	target := auth.SafeCallback(req.CallbackURL, s.routes.DefaultRedirect)
	switch {
	case wantsJSON(r):
		writeJSON(w, r, http.StatusOK, LoginResponse{Success: "Sesión iniciada", Redirect: target})
	case isHTMX(r):
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
	default:
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, params templates.LoginParams, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if isHTMX(r) {
		// HTMX only swaps 2xx responses by default.
		_ = templates.LoginForm(params).Render(r.Context(), w)
		return
	}
	w.WriteHeader(status)
	_ = templates.LoginPage(params).Render(r.Context(), w)
}

func decodeLoginRequest(r *http.Request) (LoginRequest, error) {
	var req LoginRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Email = r.PostForm.Get("email")
	req.Password = r.PostForm.Get("password")
	req.CallbackURL = r.PostForm.Get("callbackUrl")
	return req, nil
}

// handleLogout clears the session and returns to the sign-in page.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, ok := auth.ClaimsFromContext(r.Context()); ok {
		s.audit(r, core.AuditLogParams{Action: core.ActionLogout, UserEmail: c.Email})
	}
	s.sessions.ClearCookie(w)
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", s.routes.LoginPath)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, s.routes.LoginPath, http.StatusSeeOther)
}

// audit records an entry; failures are logged and never block the request.
func (s *Server) audit(r *http.Request, params core.AuditLogParams) {
	if _, err := s.data.LogAudit(r.Context(), params); err != nil {
		logger(r).Error("audit write failed", "action", params.Action, "error", err)
	}
}
