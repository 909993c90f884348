package application

import (
	"github.com/JonMunkholm/crefinex/internal/datatable"
	"github.com/charmbracelet/lipgloss"
)

const maxColWidth = 24

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#16a34a")).MarginBottom(1)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle   = lipgloss.NewStyle().Bold(true).PaddingRight(2)
	focusedHeader = headerStyle.Foreground(lipgloss.Color("#16a34a")).Underline(true)
	cellStyle     = lipgloss.NewStyle().PaddingRight(2)
	cursorRow     = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	menuCursor    = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))

	variantStyles = map[datatable.Variant]lipgloss.Style{
		datatable.VariantDefault:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		datatable.VariantSuccess:     lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a")),
		datatable.VariantDestructive: errorStyle,
	}
)

func noteStyle(v datatable.Variant) lipgloss.Style {
	if s, ok := variantStyles[v]; ok {
		return s
	}
	return variantStyles[datatable.VariantDefault]
}
