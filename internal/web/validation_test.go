package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestValidator_Login(t *testing.T) {
	v := newRequestValidator()

	assert.Nil(t, v.Struct(LoginRequest{Email: "admin@crefinex.com", Password: "x"}))

	fields := v.Struct(LoginRequest{Email: "", Password: " "})
	assert.Equal(t, map[string]string{
		"email":    "Este campo es requerido",
		"password": "Contraseña requerida",
	}, fields)

	fields = v.Struct(LoginRequest{Email: "admin", Password: "x"})
	assert.Equal(t, "Correo electrónico inválido", fields["email"])
}

func TestRequestValidator_Delete(t *testing.T) {
	v := newRequestValidator()

	assert.Nil(t, v.Struct(DeleteRequest{}), "empty ids are answered by the service")
	assert.Nil(t, v.Struct(DeleteRequest{IDs: []string{"1", "6f1c2a9e-5b7d-4c3e-9a1f-0d2e3b4c5d6e"}}))

	fields := v.Struct(DeleteRequest{IDs: []string{strings.Repeat("x", 201)}})
	assert.Equal(t, "El valor supera los 200 caracteres", fields["ids[0]"])
}
