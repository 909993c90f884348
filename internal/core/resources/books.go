package resources

import (
	"github.com/JonMunkholm/crefinex/internal/core"
)

func init() {
	registerLevels()
	registerBooks()
}

func registerLevels() {
	core.Register(core.ResourceDefinition{
		Info: core.ResourceInfo{
			Key:         "levels",
			Group:       GroupBooks,
			Label:       "Niveles",
			Description: "Niveles a los que pertenecen cursos y libros",
		},
		Table: "levels",
		Columns: []Column{
			idColumn(),
			numberColumn("order", "Orden"),
			textColumn("name", "Nombre"),
			numberColumn("courses", "Cursos"),
			numberColumn("books", "Libros"),
		},
		SelectSQL: `SELECT l.id, l."order", l.name,
			(SELECT COUNT(*) FROM courses c WHERE c.level_id = l.id) AS courses,
			(SELECT COUNT(*) FROM books b WHERE b.level_id = l.id) AS books
			FROM levels l
			ORDER BY l."order"`,
	})
}

func registerBooks() {
	core.Register(core.ResourceDefinition{
		Info: core.ResourceInfo{
			Key:         "books",
			Group:       GroupBooks,
			Label:       "Libros",
			Description: "Visualiza todos los libros de Crefinex",
		},
		Table: "books",
		Columns: []Column{
			idColumn(),
			textColumn("name", "Nombre"),
			textColumn("description", "Descripción"),
			textColumn("level", "Nivel"),
			priceColumn("price", "Precio en Dolares"),
			dateColumn("created_at", "Registrado", ""),
		},
		SelectSQL: `SELECT b.id, b.name, b.description,
			'Nivel ' || l."order" || ' - ' || l.name AS level,
			b.price, b.created_at
			FROM books b
			LEFT JOIN levels l ON l.id = b.level_id
			ORDER BY b.created_at DESC`,
	})
}
