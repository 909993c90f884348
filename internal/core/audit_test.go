package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

func TestDetermineSeverity(t *testing.T) {
	tests := map[AuditAction]AuditSeverity{
		ActionRowDelete:   SeverityHigh,
		ActionLoginFailed: SeverityMedium,
		ActionLogin:       SeverityLow,
		ActionLogout:      SeverityLow,
	}
	for action, want := range tests {
		if got := determineSeverity(action); got != want {
			t.Errorf("determineSeverity(%s) = %s, want %s", action, got, want)
		}
	}
}

func TestLogAudit_ContextMetadata(t *testing.T) {
	db := newFakeDB()
	auditInserts(db)
	svc := NewService(db, Options{})

	ctx := ContextWithUserAgent(ContextWithIPAddress(context.Background(), "192.168.1.4"), "curl/8")
	entry, err := svc.LogAudit(ctx, AuditLogParams{Action: ActionLogin, UserEmail: "admin@crefinex.com"})
	if err != nil {
		t.Fatalf("LogAudit() error = %v", err)
	}
	if entry.IPAddress != "192.168.1.4" || entry.UserAgent != "curl/8" {
		t.Errorf("entry metadata = %+v", entry)
	}
	if entry.Severity != SeverityLow {
		t.Errorf("Severity = %s", entry.Severity)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("CreatedAt should come from the insert")
	}
}

func TestLogAudit_InsertError(t *testing.T) {
	db := newFakeDB()
	db.rows["INSERT INTO audit_log"] = func([]any) *fakeRow {
		return &fakeRow{err: errors.New("relation \"audit_log\" does not exist")}
	}
	svc := NewService(db, Options{})

	if _, err := svc.LogAudit(context.Background(), AuditLogParams{Action: ActionLogout}); err == nil {
		t.Error("LogAudit() expected error")
	}
}

func TestListAudit(t *testing.T) {
	db := newFakeDB()
	created := time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC)
	db.queries["FROM audit_log"] = func(args []any) (*fakeRows, error) {
		return newFakeRows(
			[]string{"id", "action", "severity", "resource_key", "batch_id", "user_email",
				"ip_address", "user_agent", "row_ids", "rows_affected", "reason", "created_at"},
			[]any{
				"e1", "row_delete", "high",
				pgtype.Text{String: "courses", Valid: true},
				pgtype.Text{String: "b1", Valid: true},
				pgtype.Text{String: "admin@crefinex.com", Valid: true},
				pgtype.Text{}, pgtype.Text{},
				[]string{"1", "2"},
				pgtype.Int8{Int64: 2, Valid: true},
				pgtype.Text{},
				pgtype.Timestamptz{Time: created, Valid: true},
			},
		), nil
	}
	svc := NewService(db, Options{})

	entries, err := svc.ListAudit(context.Background(), AuditLogFilter{ResourceKey: "courses", Action: ActionRowDelete})
	if err != nil {
		t.Fatalf("ListAudit() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ListAudit() len = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.ResourceKey != "courses" || e.RowsAffected != 2 || len(e.RowIDs) != 2 || !e.CreatedAt.Equal(created) {
		t.Errorf("entry = %+v", e)
	}

	call := db.callsMatching("FROM audit_log")[0]
	if !strings.Contains(call.sql, "action = $1 AND resource_key = $2") {
		t.Errorf("where clause = %q", call.sql)
	}
	if !strings.Contains(call.sql, "LIMIT $3 OFFSET $4") {
		t.Errorf("paging clause = %q", call.sql)
	}
	if call.args[2] != DefaultAuditLimit {
		t.Errorf("limit arg = %v, want %d", call.args[2], DefaultAuditLimit)
	}
}

func TestPruneAudit_Batches(t *testing.T) {
	db := newFakeDB()
	results := []string{"DELETE 2", "DELETE 2", "DELETE 1"}
	db.execs["DELETE FROM audit_log"] = func([]any) (pgconn.CommandTag, error) {
		tag := results[0]
		results = results[1:]
		return pgconn.NewCommandTag(tag), nil
	}
	svc := NewService(db, Options{})

	n, err := svc.PruneAudit(context.Background(), 30, 2)
	if err != nil {
		t.Fatalf("PruneAudit() error = %v", err)
	}
	if n != 5 {
		t.Errorf("PruneAudit() = %d, want 5", n)
	}
	if got := len(db.callsMatching("DELETE FROM audit_log")); got != 3 {
		t.Errorf("batches = %d, want 3", got)
	}
}

func TestPruneAudit_DisabledRetention(t *testing.T) {
	db := newFakeDB()
	svc := NewService(db, Options{})

	n, err := svc.PruneAudit(context.Background(), 0, 100)
	if err != nil || n != 0 {
		t.Errorf("PruneAudit() = %d, %v", n, err)
	}
	if len(db.callsMatching("DELETE")) != 0 {
		t.Error("no delete expected when retention is disabled")
	}
}

func TestStartAuditPruner_StopsOnCancel(t *testing.T) {
	db := newFakeDB()
	db.execs["DELETE FROM audit_log"] = func([]any) (pgconn.CommandTag, error) {
		return pgconn.NewCommandTag("DELETE 0"), nil
	}
	svc := NewService(db, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartAuditPruner(ctx, PruneConfig{RetentionDays: 7, Interval: 10 * time.Millisecond})
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop after cancel")
	}
	if got := len(db.callsMatching("DELETE FROM audit_log")); got < 2 {
		t.Errorf("prune runs = %d, want at least 2", got)
	}
}
