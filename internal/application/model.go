// Package application is the terminal front end: a menu of resources and a
// table screen driven by the datatable engine.
package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/crefinex/internal/core"
	"github.com/JonMunkholm/crefinex/internal/datatable"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// DataSource is the resource backend the terminal UI drives.
type DataSource interface {
	ListResourcesByGroup() map[string][]core.ResourceInfo
	Counts(ctx context.Context) []core.ResourceCount
	Rows(ctx context.Context, key string) (*core.RowSet, error)
	DeleteMany(ctx context.Context, key string, ids []string) (core.DeleteResult, error)
}

// Options configures the terminal UI. Zero values fall back to defaults.
type Options struct {
	PageSize        int
	SuggestionLimit int
	Debounce        time.Duration
	Timeout         time.Duration
	Logger          *slog.Logger
}

type screen int

const (
	screenMenu screen = iota
	screenTable
)

// Model is the root bubbletea model.
type Model struct {
	data DataSource
	opts Options

	root    *Menu
	current *Menu
	cursor  int

	screen screen
	table  *tableScreen
	gen    int

	status string
	failed bool

	commits chan filterCommitMsg
	help    help.Model
	width   int
	height  int
}

// New builds the model and its menu tree.
func New(data DataSource, opts Options) *Model {
	if opts.PageSize <= 0 {
		opts.PageSize = datatable.DefaultPageSize
	}
	if opts.Debounce <= 0 {
		opts.Debounce = datatable.DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	m := &Model{
		data:    data,
		opts:    opts,
		commits: make(chan filterCommitMsg, 8),
		help:    help.New(),
	}
	m.root = buildMenuTree(m)
	m.current = m.root
	return m
}

func (m *Model) Init() tea.Cmd {
	return waitForCommit(m.commits)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.closeTable()
			return m, tea.Quit
		}
		if m.screen == screenTable && m.table != nil {
			cmd, back := m.table.update(msg)
			if back {
				m.closeTable()
				m.screen = screenMenu
			}
			return m, cmd
		}
		return m, m.updateMenu(msg)

	case rowsLoadedMsg:
		if msg.reload && m.table != nil && m.table.resource.Key == msg.set.Resource.Key {
			m.table.setRows(msg.set.Rows)
			return m, nil
		}
		m.closeTable()
		m.gen++
		m.table = newTableScreen(m.gen, msg.set, m)
		m.screen = screenTable
		m.status, m.failed = "", false
		return m, nil

	case filterCommitMsg:
		if m.table != nil && msg.gen == m.table.gen {
			m.table.commit(msg.input)
		}
		return m, waitForCommit(m.commits)

	case deleteDoneMsg:
		if m.table == nil || msg.gen != m.table.gen {
			return m, nil
		}
		if m.table.deleted(msg) {
			return m, m.loadRows(m.table.resource.Key, true)
		}
		return m, nil

	case DoneMsg:
		m.status, m.failed = string(msg), false
		return m, nil

	case ErrMsg:
		m.status, m.failed = core.MapError(msg.Err).Message, true
		m.opts.Logger.Error("action failed", "error", msg.Err)
		if m.screen == screenTable && m.table != nil {
			m.table.notify(m.status, datatable.VariantDestructive)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	items := m.current.Items
	switch {
	case key.Matches(msg, menuKeys.Quit):
		return tea.Quit

	case key.Matches(msg, menuKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, menuKeys.Down):
		if m.cursor < len(items)-1 {
			m.cursor++
		}

	case key.Matches(msg, menuKeys.Back):
		if m.current.Parent != nil {
			m.current = m.current.Parent
			m.cursor = 0
		}

	case key.Matches(msg, menuKeys.Select):
		if len(items) == 0 {
			return nil
		}
		item := items[m.cursor]
		if item.Label == backLabel || item.Submenu != nil {
			if item.Submenu != nil {
				m.current = item.Submenu
			} else if m.current.Parent != nil {
				m.current = m.current.Parent
			}
			m.cursor = 0
			return nil
		}
		if item.Action != nil {
			m.status, m.failed = "Cargando...", false
			return item.Action()
		}
	}
	return nil
}

func (m *Model) closeTable() {
	if m.table != nil {
		m.table.close()
	}
}

func (m *Model) View() string {
	if m.screen == screenTable && m.table != nil {
		return m.table.view(m.width) + "\n" + m.help.View(tableKeys)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.current.Title))
	b.WriteString("\n")
	for i, item := range m.current.Items {
		if i == m.cursor {
			b.WriteString(menuCursor.Render("> " + item.Label))
		} else {
			b.WriteString("  " + item.Label)
		}
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString("\n")
		if m.failed {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(subtleStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + m.help.View(menuKeys))
	return b.String()
}
