// Package core provides the business logic behind the dashboard tables.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/crefinex/internal/datatable"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// ResourceInfo contains display information about a resource.
type ResourceInfo struct {
	Key   string // Unique identifier: "courses"
	Group string // Navigation group: "Educación"
	Label string // Display name: "Cursos"
	Path  string // Dashboard path: "/dashboard/courses"

	// Description is shown under the page title.
	Description string
}

// ResourceDefinition contains everything needed to list and delete the rows
// of one resource.
type ResourceDefinition struct {
	Info ResourceInfo

	// Table is the database table rows are deleted from.
	Table string

	Columns []datatable.Column[datatable.Record]

	// SelectSQL returns every row of the resource. It must produce an "id"
	// column; the other column names become Record keys.
	SelectSQL string

	// DeleteSQL deletes the rows whose id is in $1 (a text array).
	// Defaults to DELETE FROM <Table> WHERE id::text = ANY($1).
	DeleteSQL string
}

// deleteQuery returns the statement used by DeleteMany.
func (d ResourceDefinition) deleteQuery() string {
	if d.DeleteSQL != "" {
		return d.DeleteSQL
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s::text = ANY($1)",
		quoteIdentifier(d.Table), quoteIdentifier("id"))
}

// countQuery returns the statement used by Counts.
func (d ResourceDefinition) countQuery() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdentifier(d.Table))
}

// DeleteResult is the outcome of a bulk delete as shown to the user.
// Exactly one of Error and Success is set.
type DeleteResult struct {
	Error   string `json:"error,omitempty"`
	Success string `json:"success,omitempty"`
	Deleted int64  `json:"deleted,omitempty"`
	BatchID string `json:"batchId,omitempty"`
}

// TableResult converts the result to the shape the table engine consumes.
func (r DeleteResult) TableResult() datatable.DeleteResult {
	return datatable.DeleteResult{Error: r.Error, Success: r.Success}
}

// ResourceCount is the number of rows of one resource, or the error that
// prevented counting them.
type ResourceCount struct {
	Info  ResourceInfo `json:"info"`
	Count int64        `json:"count"`
	Error string       `json:"error,omitempty"`
}

// RowSet is the result of fetching every row of a resource.
type RowSet struct {
	Resource  ResourceInfo
	Columns   []datatable.Column[datatable.Record]
	Rows      []datatable.Record
	FetchedAt time.Time
}
