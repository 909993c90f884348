// # Error Codes Reference
//
// This file defines user-facing error messages with codes for support
// reference. Users quote the code; support staff look it up here and then
// search the logs for the technical error.
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key           Patterns: "duplicate key"
//	DB002 - Unique constraint       Patterns: "unique constraint", "violates unique"
//	DB003 - Related rows exist      Patterns: "foreign key constraint", "violates foreign key"
//	DB004 - Connection refused      Patterns: "connection refused"
//	DB005 - Connection reset        Patterns: "connection reset"
//	DB006 - Timeout                 Patterns: "timeout", "context deadline exceeded"
//	DB007 - Deadlock                Patterns: "deadlock"
//	DB008 - Invalid identifier      Patterns: "invalid input syntax"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Nothing selected       Patterns: "no ids provided", "no rows selected"
//	VAL002 - Too many rows          Patterns: "too many ids"
//	VAL003 - Malformed request      Patterns: "invalid payload"
//	VAL004 - Invalid filter         Patterns: "filter value does not match", "unknown column"
//
// # Resource Errors (TBL001-TBL099)
//
//	TBL001 - Unknown resource       Patterns: "unknown resource"
//	TBL002 - Column not sortable    Patterns: "not sortable"
//
// # Authentication Errors (AUTH001-AUTH099)
//
//	AUTH001 - Invalid credentials   Patterns: "invalid credentials"
//	AUTH002 - Session expired       Patterns: "session expired", "token is expired"
//	AUTH003 - Not signed in         Patterns: "unauthenticated"
//
// # Throttling (RATE001-RATE099)
//
//	RATE001 - Rate limited          Patterns: "rate limit"
//	RATE002 - System busy           Patterns: "too many concurrent mutations"
//
// # Requests (REQ001-REQ099)
//
//	REQ001 - Request cancelled      Patterns: "context canceled"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application logs for the
// original technical error.
//
// # Pattern Matching
//
// Patterns are matched case-insensitively using strings.Contains. The first
// matching pattern wins, so specific patterns come before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-facing error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgRelatedRows = UserMessage{
		Message: "Algunos registros tienen datos relacionados",
		Action:  "Elimine primero los registros que dependen de ellos",
		Code:    "DB003",
	}
	msgTimeout = UserMessage{
		Message: "La operación tardó demasiado",
		Action:  "Intente de nuevo con menos registros",
		Code:    "DB006",
	}
	msgNothingSelected = UserMessage{
		Message: "No se seleccionó ningún registro",
		Action:  "Seleccione al menos un registro",
		Code:    "VAL001",
	}
	msgInvalidFilter = UserMessage{
		Message: "El filtro no es válido",
		Action:  "Revise el valor del filtro",
		Code:    "VAL004",
	}
	msgSessionExpired = UserMessage{
		Message: "Su sesión ha expirado",
		Action:  "Inicie sesión nuevamente",
		Code:    "AUTH002",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Order matters: the first match wins.
var errorPatterns = []errorPattern{
	// Database constraints
	{"duplicate key", UserMessage{
		Message: "Ya existe un registro con este identificador",
		Action:  "Revise los datos duplicados",
		Code:    "DB001",
	}},
	{"unique constraint", UserMessage{
		Message: "Este valor debe ser único y ya existe",
		Action:  "Revise los datos duplicados",
		Code:    "DB002",
	}},
	{"violates unique", UserMessage{
		Message: "Se encontró un valor duplicado",
		Action:  "Revise los datos duplicados",
		Code:    "DB002",
	}},
	{"foreign key constraint", msgRelatedRows},
	{"violates foreign key", msgRelatedRows},

	// Database connectivity
	{"connection refused", UserMessage{
		Message: "No se pudo conectar con la base de datos",
		Action:  "Intente de nuevo en unos momentos",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Se interrumpió la conexión con la base de datos",
		Action:  "Intente de nuevo",
		Code:    "DB005",
	}},
	{"context deadline exceeded", msgTimeout},
	{"timeout", msgTimeout},
	{"deadlock", UserMessage{
		Message: "La base de datos estaba ocupada con operaciones en conflicto",
		Action:  "Intente de nuevo",
		Code:    "DB007",
	}},
	{"invalid input syntax", UserMessage{
		Message: "Uno de los identificadores no es válido",
		Action:  "Recargue la tabla e intente de nuevo",
		Code:    "DB008",
	}},

	// Validation
	{"no ids provided", msgNothingSelected},
	{"no rows selected", msgNothingSelected},
	{"too many ids", UserMessage{
		Message: "Se seleccionaron demasiados registros",
		Action:  "Elimine los registros en lotes más pequeños",
		Code:    "VAL002",
	}},
	{"invalid payload", UserMessage{
		Message: "La solicitud no es válida",
		Action:  "Recargue la página e intente de nuevo",
		Code:    "VAL003",
	}},
	{"filter value does not match", msgInvalidFilter},
	{"unknown column", msgInvalidFilter},

	// Resources
	{"unknown resource", UserMessage{
		Message: "La sección solicitada no existe",
		Action:  "Verifique la dirección",
		Code:    "TBL001",
	}},
	{"not sortable", UserMessage{
		Message: "Esta columna no se puede ordenar",
		Action:  "Ordene por otra columna",
		Code:    "TBL002",
	}},

	// Authentication
	{"invalid credentials", UserMessage{
		Message: "Correo o contraseña incorrectos",
		Action:  "Verifique sus datos e intente de nuevo",
		Code:    "AUTH001",
	}},
	{"session expired", msgSessionExpired},
	{"token is expired", msgSessionExpired},
	{"unauthenticated", UserMessage{
		Message: "Debe iniciar sesión",
		Action:  "Inicie sesión para continuar",
		Code:    "AUTH003",
	}},

	// Throttling
	{"rate limit", UserMessage{
		Message: "Demasiadas solicitudes",
		Action:  "Espere un momento antes de intentar de nuevo",
		Code:    "RATE001",
	}},
	{"too many concurrent mutations", UserMessage{
		Message: "El sistema está ocupado con otras eliminaciones",
		Action:  "Espere un momento e intente de nuevo",
		Code:    "RATE002",
	}},

	// Requests
	{"context canceled", UserMessage{
		Message: "La solicitud fue cancelada",
		Action:  "Intente de nuevo",
		Code:    "REQ001",
	}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Algo ha salido mal",
	Action:  "Intente de nuevo o contacte a soporte",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message.
// If no pattern matches, the generic ERR000 message is returned.
//
// Example:
//
//	msg := MapError(errors.New("violates foreign key constraint"))
//	// msg.Code == "DB003"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Código: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Código: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-facing message.
// The original error is preserved for logging.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
