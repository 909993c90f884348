package web

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const notBlankTag = "notblank"

// fieldMessages are the Spanish texts for the tags request payloads use.
var fieldMessages = map[string]string{
	"required":  "Este campo es requerido",
	notBlankTag: "Este campo es requerido",
	"email":     "Correo electrónico inválido",
	"max":       "El valor supera los {0} caracteres",
}

// fieldOverrides replace the required text for specific fields.
var fieldOverrides = map[string]string{
	"password": "Contraseña requerida",
}

// requestValidator validates decoded request payloads and reports field
// errors keyed by JSON name.
type requestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newRequestValidator() *requestValidator {
	v := validator.New()

	loc := es.New()
	uni := ut.New(loc, loc)
	trans, _ := uni.GetTranslator("es")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		if s, ok := fl.Field().Interface().(string); ok {
			return strings.TrimSpace(s) != ""
		}
		return false
	})

	for tag, text := range fieldMessages {
		registerTranslation(v, trans, tag, text)
	}

	return &requestValidator{validate: v, translator: trans}
}

func registerTranslation(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(
		tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Param())
			return s
		},
	)
}

// Struct validates s. The returned map is nil when s is valid.
func (rv *requestValidator) Struct(s any) map[string]string {
	err := rv.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg := fe.Translate(rv.translator)
		if text, ok := fieldOverrides[fe.Field()]; ok && (fe.Tag() == "required" || fe.Tag() == notBlankTag) {
			msg = text
		}
		out[fe.Field()] = msg
	}
	return out
}

// LoginRequest is the credential sign-in form.
type LoginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"notblank"`
	CallbackURL string `json:"callbackUrl"`
}

// DeleteRequest is the bulk delete payload. An empty list is answered with
// an error result rather than a validation failure.
type DeleteRequest struct {
	IDs []string `json:"ids" validate:"dive,max=200"`
}
