// Package resources registers all dashboard resources with the core registry.
// Import this package to ensure all resources are registered.
package resources

import (
	"github.com/JonMunkholm/crefinex/internal/datatable"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	GroupEducation = "Educación"
	GroupBooks     = "Libros"
	GroupMarketing = "Marketing"
)

// Column is the column type every resource declares.
type Column = datatable.Column[datatable.Record]

// idColumn is the row identity column. It sorts but is never filtered.
func idColumn() Column {
	return Column{ID: "id", Header: "ID", DisableFilter: true}
}

func textColumn(id, header string) Column {
	return Column{ID: id, Header: header, Kind: datatable.KindText}
}

func numberColumn(id, header string) Column {
	return Column{ID: id, Header: header, Kind: datatable.KindNumber}
}

// dateColumn renders dates as dd/mm/yyyy and empty values as missing.
func dateColumn(id, header, missing string) Column {
	return Column{
		ID:     id,
		Header: header,
		Kind:   datatable.KindDate,
		Cell: func(r datatable.Record) string {
			t, ok := datatable.Time(r[id])
			if !ok {
				if s, isText := r[id].(string); isText {
					if parsed, ok := datatable.ParseDate(s); ok {
						return parsed.Format("02/01/2006")
					}
				}
				return missing
			}
			return t.Format("02/01/2006")
		},
	}
}

// priceColumn renders amounts in dollars with two decimals.
func priceColumn(id, header string) Column {
	return Column{
		ID:     id,
		Header: header,
		Kind:   datatable.KindNumber,
		Cell: func(r datatable.Record) string {
			f, ok := datatable.Number(r[id])
			if !ok {
				return ""
			}
			return formatDollars(f)
		},
	}
}

var dollars = message.NewPrinter(language.LatinAmericanSpanish)

func formatDollars(f float64) string {
	return dollars.Sprintf("$%.2f", f)
}
