// Package templates renders the dashboard HTML. The *_templ.go files are
// generated from the .templ sources with `templ generate`; handlers render
// full pages or the HTMX partials.
package templates
