package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/JonMunkholm/crefinex/internal/core"
	"github.com/JonMunkholm/crefinex/internal/datatable"
	"github.com/JonMunkholm/crefinex/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// maxDeleteBody bounds the JSON body of a delete request.
const maxDeleteBody = 1 << 20

// handleDelete deletes the posted ids.
//
// JSON clients get the action result {error, success} with status 200; an
// unknown resource is 404 and a malformed body 400. HTMX requests go
// through a table so ids no longer present are dropped, and receive a toast
// fragment plus a table-refresh trigger on success.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "resource")

	req, err := decodeDeleteRequest(w, r)
	if err != nil {
		s.respondError(w, r, errInvalidPayload, http.StatusBadRequest)
		return
	}
	if fields := s.validate.Struct(req); fields != nil {
		s.respondValidation(w, r, fields)
		return
	}

	if isHTMX(r) {
		s.deleteThroughTable(w, r, key, req.IDs)
		return
	}

	result, err := s.data.DeleteMany(r.Context(), key, req.IDs)
	if err != nil {
		s.respondError(w, r, err, errorStatus(err))
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// decodeDeleteRequest accepts a JSON body or form-encoded ids.
func decodeDeleteRequest(w http.ResponseWriter, r *http.Request) (DeleteRequest, error) {
	var req DeleteRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxDeleteBody)

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return req, err
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.IDs = r.PostForm["ids"]
	return req, nil
}

func (s *Server) deleteThroughTable(w http.ResponseWriter, r *http.Request, key string, ids []string) {
	set, err := s.data.Rows(r.Context(), key)
	if err != nil {
		s.respondError(w, r, err, errorStatus(err))
		return
	}

	var note *datatable.Notification
	t := datatable.New(set.Columns, set.Rows, datatable.Options[datatable.Record]{
		DeleteAction: func(ctx context.Context, ids []string) (datatable.DeleteResult, error) {
			res, err := s.data.DeleteMany(ctx, key, ids)
			if err != nil {
				return datatable.DeleteResult{}, err
			}
			return res.TableResult(), nil
		},
		Notifier: datatable.NotifierFunc(func(n datatable.Notification) { note = &n }),
		Logger:   logger(r),
	})

	outcome, err := t.RequestBulkDelete(r.Context(), ids)
	if err != nil {
		msg := core.MapError(err)
		note = &datatable.Notification{Title: msg.Message, Description: msg.Action, Variant: datatable.VariantDestructive}
	}
	if outcome == datatable.BulkSuccess {
		w.Header().Set("HX-Trigger", "table-refresh")
	}
	if note == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = templates.Toast(*note).Render(r.Context(), w)
}
