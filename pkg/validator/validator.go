package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

// ValidationErrors is returned by ValidateStruct when one or more rules fail.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+":"+fe.Tag)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

var (
	once     sync.Once
	instance *playground.Validate
)

func get() *playground.Validate {
	once.Do(func() {
		instance = playground.New(playground.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
	})
	return instance
}

// ValidateStruct runs the `validate` struct tags on s.
func ValidateStruct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var failures playground.ValidationErrors
	if !errors.As(err, &failures) {
		return err
	}

	out := make(ValidationErrors, 0, len(failures))
	for _, fe := range failures {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}
