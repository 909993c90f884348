package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionRowDelete   AuditAction = "row_delete"
	ActionLogin       AuditAction = "login"
	ActionLoginFailed AuditAction = "login_failed"
	ActionLogout      AuditAction = "logout"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// DefaultAuditLimit is the page size used when a filter sets none.
const DefaultAuditLimit = 50

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID           string        `json:"id"`
	Action       AuditAction   `json:"action"`
	Severity     AuditSeverity `json:"severity"`
	ResourceKey  string        `json:"resourceKey,omitempty"`
	BatchID      string        `json:"batchId,omitempty"`
	UserEmail    string        `json:"userEmail,omitempty"`
	IPAddress    string        `json:"ipAddress,omitempty"`
	UserAgent    string        `json:"userAgent,omitempty"`
	RowIDs       []string      `json:"rowIds,omitempty"`
	RowsAffected int64         `json:"rowsAffected,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// AuditLogParams contains parameters for creating an audit log entry.
// Request metadata missing here is taken from the context.
type AuditLogParams struct {
	Action       AuditAction
	ResourceKey  string
	BatchID      string
	UserEmail    string
	IPAddress    string
	UserAgent    string
	RowIDs       []string
	RowsAffected int64
	Reason       string
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionRowDelete:
		return SeverityHigh
	case ActionLoginFailed:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// LogAudit creates a new audit log entry.
func (s *Service) LogAudit(ctx context.Context, params AuditLogParams) (*AuditEntry, error) {
	if params.IPAddress == "" {
		params.IPAddress = GetIPAddressFromContext(ctx)
	}
	if params.UserAgent == "" {
		params.UserAgent = GetUserAgentFromContext(ctx)
	}
	if params.UserEmail == "" {
		params.UserEmail = GetUserFromContext(ctx)
	}

	entry := &AuditEntry{
		ID:           uuid.NewString(),
		Action:       params.Action,
		Severity:     determineSeverity(params.Action),
		ResourceKey:  params.ResourceKey,
		BatchID:      params.BatchID,
		UserEmail:    params.UserEmail,
		IPAddress:    params.IPAddress,
		UserAgent:    params.UserAgent,
		RowIDs:       params.RowIDs,
		RowsAffected: params.RowsAffected,
		Reason:       params.Reason,
	}

	const query = `INSERT INTO audit_log (id, action, severity, resource_key, batch_id,
		user_email, ip_address, user_agent, row_ids, rows_affected, reason)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	err := s.db.QueryRow(ctx, query,
		entry.ID,
		string(entry.Action),
		string(entry.Severity),
		toPgText(entry.ResourceKey),
		entry.BatchID,
		toPgText(entry.UserEmail),
		toPgText(entry.IPAddress),
		toPgText(entry.UserAgent),
		entry.RowIDs,
		toPgInt8(entry.RowsAffected),
		toPgText(entry.Reason),
	).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}

	return entry, nil
}

// AuditLogFilter contains filtering options for querying audit logs.
type AuditLogFilter struct {
	ResourceKey string
	Action      AuditAction
	Since       time.Time
	Limit       int
	Offset      int
}

// whereBuilder accumulates AND-ed equality conditions with positional args.
type whereBuilder struct {
	conditions []string
	args       []any
}

// add appends column = $n when value is non-empty.
func (w *whereBuilder) add(column, value string) {
	if value == "" {
		return
	}
	w.args = append(w.args, value)
	w.conditions = append(w.conditions, fmt.Sprintf("%s = $%d", column, len(w.args)))
}

// addSince appends column >= $n when t is set.
func (w *whereBuilder) addSince(column string, t time.Time) {
	if t.IsZero() {
		return
	}
	w.args = append(w.args, toPgTimestamptz(t))
	w.conditions = append(w.conditions, fmt.Sprintf("%s >= $%d", column, len(w.args)))
}

func (w *whereBuilder) nextArg() int {
	return len(w.args) + 1
}

func (w *whereBuilder) build() (string, []any) {
	if len(w.conditions) == 0 {
		return "", w.args
	}
	return " WHERE " + strings.Join(w.conditions, " AND "), w.args
}

// ListAudit returns audit entries, newest first.
func (s *Service) ListAudit(ctx context.Context, filter AuditLogFilter) ([]AuditEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultAuditLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var wb whereBuilder
	wb.add("action", string(filter.Action))
	wb.add("resource_key", filter.ResourceKey)
	wb.addSince("created_at", filter.Since)

	next := wb.nextArg()
	where, args := wb.build()
	query := `SELECT id::text, action, severity, resource_key, batch_id::text,
		user_email, ip_address, user_agent, row_ids, rows_affected, reason, created_at
		FROM audit_log` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", next, next+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]AuditEntry, 0)
	for rows.Next() {
		entry, err := scanAuditRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

// scanAuditRow scans a single row from audit_log into an AuditEntry.
func scanAuditRow(rows pgx.Rows) (*AuditEntry, error) {
	var (
		id           string
		action       string
		severity     string
		resourceKey  pgtype.Text
		batchID      pgtype.Text
		userEmail    pgtype.Text
		ipAddress    pgtype.Text
		userAgent    pgtype.Text
		rowIDs       []string
		rowsAffected pgtype.Int8
		reason       pgtype.Text
		createdAt    pgtype.Timestamptz
	)

	err := rows.Scan(
		&id, &action, &severity, &resourceKey, &batchID,
		&userEmail, &ipAddress, &userAgent, &rowIDs, &rowsAffected, &reason, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan audit entry: %w", err)
	}

	return &AuditEntry{
		ID:           id,
		Action:       AuditAction(action),
		Severity:     AuditSeverity(severity),
		ResourceKey:  resourceKey.String,
		BatchID:      batchID.String,
		UserEmail:    userEmail.String,
		IPAddress:    ipAddress.String,
		UserAgent:    userAgent.String,
		RowIDs:       rowIDs,
		RowsAffected: rowsAffected.Int64,
		Reason:       reason.String,
		CreatedAt:    createdAt.Time,
	}, nil
}

// PruneAudit deletes entries older than retentionDays in batches of
// batchSize and returns how many were removed.
func (s *Service) PruneAudit(ctx context.Context, retentionDays, batchSize int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 5000
	}

	const query = `DELETE FROM audit_log WHERE id IN (
		SELECT id FROM audit_log
		WHERE created_at < now() - make_interval(days => $1)
		LIMIT $2)`

	var total int64
	for {
		tag, err := s.db.Exec(ctx, query, retentionDays, batchSize)
		if err != nil {
			return total, fmt.Errorf("prune audit log: %w", err)
		}
		total += tag.RowsAffected()
		if tag.RowsAffected() < int64(batchSize) {
			return total, nil
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
}
