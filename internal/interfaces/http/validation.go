package http

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal se valida como número: gt=0, gte=0 y compañía.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// Los mensajes usan el nombre JSON del campo.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// bindAndValidate parsea el cuerpo JSON y aplica los tags validate.
// Devuelve false si ya escribió la respuesta de error; el handler debe retornar sin escribir otra.
func bindAndValidate(c *fiber.Ctx, req interface{}) bool {
	if err := c.BodyParser(req); err != nil {
		_ = badRequest(c, "INVALID_BODY", "cuerpo inválido")
		return false
	}
	if err := validate.Struct(req); err != nil {
		_ = badRequest(c, "VALIDATION", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		if fe.Param() != "" {
			fields = append(fields, fmt.Sprintf("%s (%s=%s)", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	sort.Strings(fields)
	return "campos inválidos: " + strings.Join(fields, ", ")
}
