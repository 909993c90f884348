package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/JonMunkholm/crefinex/internal/core"
	"github.com/JonMunkholm/crefinex/internal/datatable"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestTablePartial_Empty(t *testing.T) {
	html := render(t, TablePartial(TableParams{
		Resource:  core.ResourceInfo{Key: "courses", Label: "Cursos"},
		Columns:   []ColumnView{{ID: "title", Header: "Título", CanFilter: true, CanSort: true}},
		PageCount: 1,
		PageSizes: []int{10, 20},
		PageSize:  10,
	}))

	assert.Contains(t, html, "Sin resultados.")
	assert.Contains(t, html, `placeholder="Buscar..."`)
	assert.Contains(t, html, "Página 1 de 1")
	assert.Contains(t, html, `<option value="10" selected>`)
	assert.Contains(t, html, `<option value="20">`)
}

func TestTablePartial_DeleteButtonSingleFlight(t *testing.T) {
	html := render(t, TablePartial(TableParams{
		Columns:   []ColumnView{{ID: "title", Header: "Título"}},
		PageCount: 1,
		DeleteURL: "/api/resources/courses/delete",
	}))

	assert.Contains(t, html, `hx-post="/api/resources/courses/delete"`)
	assert.Contains(t, html, `hx-disabled-elt="this"`)
	assert.Contains(t, html, `hx-sync="this:drop"`)
}

func TestTablePartial_RangeInputs(t *testing.T) {
	html := render(t, TablePartial(TableParams{
		Columns: []ColumnView{
			{ID: "price", Header: "Precio", Kind: datatable.KindNumber, CanFilter: true, MinHint: "10", MaxHint: "90"},
			{ID: "startDate", Header: "Inicio", Kind: datatable.KindDate, CanFilter: true},
			{ID: "id", Header: "ID"},
		},
		PageCount: 1,
	}))

	assert.Contains(t, html, `name="min[price]"`)
	assert.Contains(t, html, `placeholder="Min. (10)"`)
	assert.Contains(t, html, `placeholder="Max. (90)"`)
	assert.Contains(t, html, "Seleccionar fechas")
	assert.NotContains(t, html, `name="filter[id]"`)
}

func TestTablePartial_EscapesCells(t *testing.T) {
	html := render(t, TablePartial(TableParams{
		Columns:   []ColumnView{{ID: "name", Header: "Nombre"}},
		Rows:      []RowView{{ID: "1", Selected: true, Cells: []string{"<script>alert(1)</script>"}}},
		PageCount: 1,
	}))

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, `value="1" checked>`)
}

func TestToast(t *testing.T) {
	html := render(t, Toast(datatable.Notification{Title: "Se eliminó 1 registro", Variant: datatable.VariantSuccess}))
	assert.Contains(t, html, `data-variant="success"`)
	assert.Contains(t, html, "Se eliminó 1 registro")

	html = render(t, Toast(datatable.Notification{Title: "Algo ha salido mal"}))
	assert.Contains(t, html, `data-variant="default"`)
}

func TestLoginForm_FieldErrors(t *testing.T) {
	html := render(t, LoginForm(LoginParams{
		Email:       "admin@crefinex.com",
		CallbackURL: "/dashboard/books",
		FieldErrors: map[string]string{"password": "Contraseña requerida"},
	}))

	assert.Contains(t, html, "Correo electrónico")
	assert.Contains(t, html, `data-error-for="password"`)
	assert.Contains(t, html, `value="/dashboard/books"`)
}

func TestDashboard(t *testing.T) {
	html := render(t, Dashboard(SidebarParams{ActivePage: "dashboard"}, []ResourceGroup{{
		Name: "Libros",
		Cards: []core.ResourceCount{
			{Info: core.ResourceInfo{Key: "books", Label: "Libros", Path: "/dashboard/books"}, Count: 12},
			{Info: core.ResourceInfo{Key: "levels", Label: "Niveles", Path: "/dashboard/levels"}, Error: "No se pudo conectar"},
		},
	}}))

	assert.Contains(t, html, "12 registros")
	assert.Contains(t, html, "No se pudo conectar")
	assert.Contains(t, html, `data-resource="levels"`)
	assert.Contains(t, html, `<a href="/dashboard" class="block" data-active>`)
}

func TestPagerLink_DisabledWithoutURL(t *testing.T) {
	html := render(t, TablePartial(TableParams{PageCount: 2, NextURL: "/dashboard/books?page=2"}))

	assert.Contains(t, html, `<button type="button" disabled>Anterior</button>`)
	assert.Contains(t, html, `href="/dashboard/books?page=2"`)
	assert.Contains(t, html, "Página 1 de 2")
}

func TestAuditLogPartial(t *testing.T) {
	html := render(t, AuditLogPartial(AuditLogParams{
		Entries: []core.AuditEntry{{
			Action:       core.ActionRowDelete,
			Severity:     core.SeverityHigh,
			ResourceKey:  "courses",
			UserEmail:    "admin@crefinex.com",
			RowIDs:       []string{"1", "2"},
			RowsAffected: 2,
		}},
		Page: 1,
	}))

	assert.Contains(t, html, "Eliminación")
	assert.Contains(t, html, `data-severity="high"`)
	assert.Contains(t, html, `<td title="1, 2">2</td>`)
	assert.Contains(t, html, "Página 1")
	assert.NotContains(t, html, "Sin resultados.")
}
