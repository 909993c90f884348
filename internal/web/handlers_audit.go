package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/crefinex/internal/core"
	"github.com/JonMunkholm/crefinex/internal/logging"
	"github.com/JonMunkholm/crefinex/internal/web/templates"
)

const auditPageSize = core.DefaultAuditLimit

func logger(r *http.Request) *slog.Logger {
	return logging.FromContext(r.Context())
}

// auditFilter reads resource, action, since (YYYY-MM-DD) and page.
func auditFilter(r *http.Request) (core.AuditLogFilter, int) {
	q := r.URL.Query()
	page := parsePositive(q.Get("page"), 1)
	f := core.AuditLogFilter{
		ResourceKey: q.Get("resource"),
		Action:      core.AuditAction(q.Get("action")),
		Limit:       auditPageSize,
		Offset:      (page - 1) * auditPageSize,
	}
	if since := q.Get("since"); since != "" {
		if t, err := time.Parse(time.DateOnly, since); err == nil {
			f.Since = t
		}
	}
	return f, page
}

// handleAuditLog renders the audit log page, or only the entries for HTMX.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	filter, page := auditFilter(r)
	entries, err := s.data.ListAudit(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	params := templates.AuditLogParams{
		Entries:   entries,
		Resources: s.data.ListResources(),
		Resource:  filter.ResourceKey,
		Action:    string(filter.Action),
		Page:      page,
	}
	link := func(p int) string {
		v := r.URL.Query()
		v.Set("page", strconv.Itoa(p))
		return "/audit-log?" + v.Encode()
	}
	if page > 1 {
		params.PrevURL = link(page - 1)
	}
	if len(entries) == auditPageSize {
		params.NextURL = link(page + 1)
	}

	if isHTMX(r) {
		_ = templates.AuditLogPartial(params).Render(r.Context(), w)
		return
	}
	_ = templates.AuditLogPage(s.sidebar(r, "audit", ""), params).Render(r.Context(), w)
}

// handleAuditJSON returns audit entries as JSON.
func (s *Server) handleAuditJSON(w http.ResponseWriter, r *http.Request) {
	filter, _ := auditFilter(r)
	entries, err := s.data.ListAudit(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}
	writeJSON(w, r, http.StatusOK, entries)
}
