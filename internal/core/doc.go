// Package core provides the data operations behind the dashboard tables.
//
// This package contains the domain logic independent of any UI or transport
// layer. It is used by the web handlers, the terminal browser, and tests.
//
// # Resource Registry
//
// Resources are registered at init time using [Register]. Each
// [ResourceDefinition] names the SQL that lists its rows and the columns the
// table engine renders:
//
//	core.Register(core.ResourceDefinition{
//	    Info:      core.ResourceInfo{Key: "books", Group: "Libros", Label: "Libros"},
//	    Columns:   []datatable.Column[datatable.Record]{{ID: "id"}, {ID: "name", Header: "Nombre"}},
//	    SelectSQL: "SELECT id, name FROM books",
//	})
//
// # Bulk Delete
//
// [Service.DeleteMany] is the delete collaborator of a table. It validates
// the ids, waits for a slot on the [MutationLimiter], deletes with a single
// statement and writes a row_delete audit entry tagged with a batch id.
// Failures come back as user-facing text in [DeleteResult].Error.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError].
// Each error category has a code for support reference (DB, VAL, TBL, AUTH,
// RATE, REQ, ERR000).
//
// # Audit Logging
//
// Deletes and sign-ins are recorded in the audit log with severity levels.
// Entries older than the retention period are pruned by
// [Service.StartAuditPruner].
package core
