package application

import "github.com/charmbracelet/bubbles/key"

type menuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

var menuKeys = menuKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "arriba")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "abajo")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "abrir")),
	Back:   key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "volver")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "salir")),
}

func (k menuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Quit}
}

func (k menuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type tableKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Sort      key.Binding
	Search    key.Binding
	Filter    key.Binding
	Clear     key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Delete    key.Binding
	Next      key.Binding
	Prev      key.Binding
	Back      key.Binding
}

var tableKeys = tableKeyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "arriba")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "abajo")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "columna anterior")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "columna siguiente")),
	Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "ordenar")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "buscar")),
	Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filtrar columna")),
	Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "limpiar filtros")),
	Toggle:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("espacio", "seleccionar")),
	ToggleAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "seleccionar página")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "eliminar")),
	Next:      key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "página siguiente")),
	Prev:      key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "página anterior")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "volver")),
}

func (k tableKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sort, k.Search, k.Filter, k.Toggle, k.Delete, k.Next, k.Prev, k.Back}
}

func (k tableKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Sort, k.Search, k.Filter, k.Clear},
		{k.Toggle, k.ToggleAll, k.Delete},
		{k.Next, k.Prev, k.Back},
	}
}
