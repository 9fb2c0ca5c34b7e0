package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Tag names registered on top of the built-in validator/v10 set.
const (
	TagNotBlank = "notblank"
	TagPhone    = "phone"
)

var (
	phonePattern = regexp.MustCompile(`^\+?\d{8,}$`)
	whitespace   = regexp.MustCompile(`\s`)
)

// Validator checks structs tagged with `validate` and reports failures keyed by
// the `field` tag of each struct field.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("field"); name != "" && name != "-" {
			return name
		}
		return f.Name
	})

	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation(TagNotBlank, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation(TagPhone, func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})

	return &Validator{v: v}
}

// Struct validates obj. It returns nil when obj is valid, otherwise the
// failing tag per field name.
func (v *Validator) Struct(obj interface{}) (map[string]string, error) {
	err := v.v.Struct(obj)
	if err == nil {
		return nil, nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, err
	}
	failed := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		failed[fe.Field()] = fe.Tag()
	}
	return failed, nil
}

// IsPhone reports whether s, stripped of whitespace, is an optional plus sign
// followed by at least eight digits.
func IsPhone(s string) bool {
	return phonePattern.MatchString(whitespace.ReplaceAllString(s, ""))
}
