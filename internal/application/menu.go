package application

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/crefinex/internal/core"
	tea "github.com/charmbracelet/bubbletea"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

const backLabel = "Volver"

type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func() tea.Cmd
}

type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

/* ----------------------------------------
	MENU TREE DEFINITION
---------------------------------------- */

func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == backLabel {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

func buildMenuTree(m *Model) *Menu {
	byGroup := m.data.ListResourcesByGroup()
	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	items := make([]MenuItem, 0, len(groups)+2)
	for _, g := range groups {
		items = append(items, MenuItem{Label: g + " ->", Submenu: loadGroupMenu(m, g, byGroup[g])})
	}
	items = append(items,
		MenuItem{Label: "Resumen", Action: m.summary},
		MenuItem{Label: "Salir", Action: func() tea.Cmd { return tea.Quit }},
	)

	root := &Menu{Title: "Crefinex", Items: items}
	linkParents(root, nil)
	return root
}

/* ----------------------------------------
	LOAD MENUS
---------------------------------------- */

func loadGroupMenu(m *Model, group string, resources []core.ResourceInfo) *Menu {
	items := make([]MenuItem, 0, len(resources)+1)
	for _, info := range resources {
		items = append(items, MenuItem{
			Label:  info.Label,
			Action: func() tea.Cmd { return m.loadRows(info.Key, false) },
		})
	}
	items = append(items, MenuItem{Label: backLabel})
	return &Menu{Title: group, Items: items}
}

// summary counts every resource.
func (m *Model) summary() tea.Cmd {
	data, timeout := m.data, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var b strings.Builder
		for i, c := range data.Counts(ctx) {
			if i > 0 {
				b.WriteString(" · ")
			}
			if c.Error != "" {
				fmt.Fprintf(&b, "%s: %s", c.Info.Label, c.Error)
				continue
			}
			fmt.Fprintf(&b, "%s: %d", c.Info.Label, c.Count)
		}
		return DoneMsg(b.String())
	}
}

// loadRows fetches every row of a resource.
func (m *Model) loadRows(key string, reload bool) tea.Cmd {
	data, timeout := m.data, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		set, err := data.Rows(ctx, key)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return rowsLoadedMsg{set: set, reload: reload}
	}
}
