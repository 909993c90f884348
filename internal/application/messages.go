package application

import (
	"github.com/JonMunkholm/crefinex/internal/core"
	"github.com/JonMunkholm/crefinex/internal/datatable"
	tea "github.com/charmbracelet/bubbletea"
)

// DoneMsg reports a finished menu action.
type DoneMsg string

// ErrMsg reports a failed action.
type ErrMsg struct{ Err error }

type rowsLoadedMsg struct {
	set    *core.RowSet
	reload bool
}

// filterInput is one pending edit of a filter box. An empty ColumnID is
// the global search.
type filterInput struct {
	ColumnID string
	Raw      string
}

type filterCommitMsg struct {
	gen   int
	input filterInput
}

type deleteDoneMsg struct {
	gen     int
	outcome datatable.BulkOutcome
	note    *datatable.Notification
	err     error
}

// waitForCommit delivers the next debounced filter value to Update.
func waitForCommit(ch <-chan filterCommitMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
