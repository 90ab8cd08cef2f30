package helper

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Validate is the shared validator instance; decimal.Decimal fields validate as numbers
// so tags like gte=0 or lte=100 work on money and percentages.
var Validate = NewValidator()

func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// FieldErrors flattens validator errors into field → messages.
func FieldErrors(err error) map[string][]string {
	out := map[string][]string{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["_"] = []string{err.Error()}
		return out
	}
	for _, fe := range ve {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out[fe.Field()] = append(out[fe.Field()], msg)
	}
	return out
}

// ValidationFailure carries per-field validator messages up to the response writer.
type ValidationFailure struct {
	Fields map[string][]string
}

func (e *ValidationFailure) Error() string { return "validation failed" }

// BindAndValidate reads the JSON body into out and runs struct validation.
func BindAndValidate(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := Validate.Struct(out); err != nil {
		return &ValidationFailure{Fields: FieldErrors(err)}
	}
	return nil
}

// FromFiberError writes err in the standard error shape: *ValidationFailure → 422,
// *fiber.Error → its code, anything else → 500.
func FromFiberError(c *fiber.Ctx, err error) error {
	var vf *ValidationFailure
	if errors.As(err, &vf) {
		return JsonValidationError(c, vf.Fields)
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	return JsonError(c, fiber.StatusInternalServerError, err.Error())
}
