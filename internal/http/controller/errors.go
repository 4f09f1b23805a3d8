package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Messages returned in {"error": ...} bodies.
const (
	msgProductNotFound     = "Producto no encontrado"
	msgImageNotFound       = "Imagen no encontrada"
	msgInternalError       = "Error interno del servidor"
	msgResourceNotFound    = "Recurso no encontrado"
	msgMethodNotAllowed    = "Método no permitido"
	msgDatabaseUnavailable = "Base de datos no disponible"
	msgEmptyBody           = "El cuerpo de la petición está vacío"
	msgInvalidJSON         = "JSON inválido"
	msgBodyNotObject       = "El cuerpo de la petición debe ser un objeto JSON"
	msgInvalidPageToken    = "Token de página inválido"
	msgInvalidLimit        = "El parámetro limit debe ser un número entero"
	msgTrailingData        = "Datos inesperados después del objeto JSON"
)

// errTrailingData rejects bodies that carry anything but whitespace after the JSON object.
var errTrailingData = errors.New("unexpected data after JSON object")

// bindStrictJSON decodes exactly one JSON value from the request body and
// validates it against its binding tags.
func bindStrictJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil {
		return io.EOF
	}

	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(obj); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}

	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(obj)
}

// bindingErrorMessage turns a gin binding error into a message a client can act on.
func bindingErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		msgs := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			msgs = append(msgs, fieldErrorMessage(fe))
		}
		return strings.Join(msgs, "; ")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return msgBodyNotObject
		}
		return fmt.Sprintf("%s: tipo inválido, se esperaba %s", typeErr.Field, jsonTypeName(typeErr.Type.Kind().String()))
	}

	if errors.Is(err, errTrailingData) {
		return msgTrailingData
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return msgInvalidJSON
	}
	if errors.Is(err, io.EOF) {
		return msgEmptyBody
	}
	return err.Error()
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: campo obligatorio", field)
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s: máximo %s caracteres", field, fe.Param())
		}
		return fmt.Sprintf("%s: debe ser menor o igual a %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s: debe ser mayor o igual a %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s: valor inválido", field)
	}
}

func jsonTypeName(kind string) string {
	switch kind {
	case "string":
		return "texto"
	case "int", "int32", "int64":
		return "número entero"
	default:
		return kind
	}
}
