package datatable

import (
	"context"
	"errors"
	"log/slog"
)

var (
	// ErrNoDeleteAction is returned when bulk delete is requested on a table
	// built without a DeleteAction.
	ErrNoDeleteAction = errors.New("bulk delete is not enabled")

	// ErrNoRowsSelected is returned when none of the requested ids is present
	// in the current row collection.
	ErrNoRowsSelected = errors.New("no rows selected")

	// ErrBulkDeleteInFlight is returned while a previous request is pending.
	ErrBulkDeleteInFlight = errors.New("bulk delete already in progress")
)

// DeleteResult is what a DeleteAction reports. Exactly one field is
// expected to be set; both empty is a no-op.
type DeleteResult struct {
	Error   string `json:"error,omitempty"`
	Success string `json:"success,omitempty"`
}

// DeleteAction deletes the rows with the given ids. A returned error is a
// transport failure and is reported like a DeleteResult error.
type DeleteAction func(ctx context.Context, ids []string) (DeleteResult, error)

// Variant is the visual style of a notification.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantSuccess     Variant = "success"
	VariantDestructive Variant = "destructive"
)

// Notification is a transient message for the user.
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Variant     Variant `json:"variant"`
}

// Notifier surfaces notifications to the user.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// BulkOutcome is the result of a bulk delete as seen by the table.
type BulkOutcome int

const (
	BulkNoop BulkOutcome = iota
	BulkSuccess
	BulkError
)

func (o BulkOutcome) String() string {
	switch o {
	case BulkSuccess:
		return "success"
	case BulkError:
		return "error"
	default:
		return "noop"
	}
}

// Notification titles shown for failed deletes.
const (
	titleDeleteFailed    = "Parece que hubo un problema"
	titleTransportFailed = "Algo ha salido mal"
	descTransportFailed  = "Error al eliminar los registros"
)

// BulkDeleteInFlight reports whether a bulk delete is pending. Views use it
// to disable the trigger.
func (t *Table[T]) BulkDeleteInFlight() bool {
	return t.pending.Load()
}

// BulkDeleteEnabled reports whether the table was given a DeleteAction.
func (t *Table[T]) BulkDeleteEnabled() bool {
	return t.opts.DeleteAction != nil
}

// RequestBulkDelete deletes the given rows through the DeleteAction.
//
// Ids not present in the current row collection are dropped first; if none
// remain the action is not invoked. Only one request runs at a time. On
// success the deleted ids leave the selection; on error the selection is kept
// so the user can retry. Rows are never removed here: the caller refreshes
// them with SetRows once the delete is confirmed.
func (t *Table[T]) RequestBulkDelete(ctx context.Context, ids []string) (BulkOutcome, error) {
	action := t.opts.DeleteAction
	if action == nil {
		return BulkNoop, ErrNoDeleteAction
	}

	t.mu.Lock()
	valid := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := t.present[id]; ok && !seen[id] {
			seen[id] = true
			valid = append(valid, id)
		}
	}
	t.mu.Unlock()

	if len(valid) == 0 {
		return BulkNoop, ErrNoRowsSelected
	}
	if !t.pending.CompareAndSwap(false, true) {
		return BulkNoop, ErrBulkDeleteInFlight
	}
	defer t.pending.Store(false)

	result, err := action(ctx, valid)
	if err != nil {
		t.logger.Error("bulk delete failed",
			slog.Int("count", len(valid)),
			slog.String("error", err.Error()),
		)
		t.notify(Notification{
			Title:       titleTransportFailed,
			Description: descTransportFailed,
			Variant:     VariantDestructive,
		})
		return BulkError, nil
	}

	switch {
	case result.Error != "":
		t.logger.Warn("bulk delete rejected",
			slog.Int("count", len(valid)),
			slog.String("error", result.Error),
		)
		t.notify(Notification{
			Title:       titleDeleteFailed,
			Description: result.Error,
			Variant:     VariantDestructive,
		})
		return BulkError, nil
	case result.Success != "":
		t.mu.Lock()
		notify := t.dispatchLocked(ClearSelectionAction{IDs: valid})
		t.mu.Unlock()
		notify()

		t.logger.Info("bulk delete completed", slog.Int("count", len(valid)))
		t.notify(Notification{
			Title:   result.Success,
			Variant: VariantSuccess,
		})
		return BulkSuccess, nil
	default:
		return BulkNoop, nil
	}
}

// RequestBulkDeleteSelected deletes every selected row still present.
func (t *Table[T]) RequestBulkDeleteSelected(ctx context.Context) (BulkOutcome, error) {
	return t.RequestBulkDelete(ctx, t.SelectedIDs())
}

func (t *Table[T]) notify(n Notification) {
	if t.opts.Notifier != nil {
		t.opts.Notifier.Notify(n)
	}
}
