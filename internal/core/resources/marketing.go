package resources

import (
	"github.com/JonMunkholm/crefinex/internal/core"
)

func init() {
	core.Register(core.ResourceDefinition{
		Info: core.ResourceInfo{
			Key:         "marketing_sections",
			Group:       GroupMarketing,
			Label:       "Secciones",
			Description: "Secciones publicadas en el sitio de Crefinex",
		},
		Table: "marketing_sections",
		Columns: []Column{
			idColumn(),
			textColumn("title", "Título"),
			textColumn("subtitle", "Subtítulo"),
			textColumn("page", "Página"),
			numberColumn("position", "Posición"),
			dateColumn("updated_at", "Actualizado", ""),
		},
		SelectSQL: `SELECT m.id, m.title, m.subtitle, m.page, m.position, m.updated_at
			FROM marketing_sections m
			ORDER BY m.page, m.position`,
	})
}
