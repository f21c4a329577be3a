// Package validator wraps go-playground/validator and turns its field errors
// into apperr validation errors.
package validator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"mdr-travel/go_backend/internal/apperr"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

var (
	defaultOnce sync.Once
	defaultVal  *Validator
)

// Default returns a shared instance; validator.Validate caches struct metadata.
func Default() *Validator {
	defaultOnce.Do(func() { defaultVal = New() })
	return defaultVal
}

// FieldError is one failed rule, keyed by the struct namespace.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Struct validates s. messages maps "Namespace.Field" or "Namespace.Field|rule"
// to a human message; unmatched failures get a generic one.
func (val *Validator) Struct(s interface{}, messages map[string]string) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.KindValidation, "invalid input", err)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Namespace()+"|"+fe.Tag()]
		if !ok {
			msg, ok = messages[fe.Namespace()]
		}
		if !ok {
			msg = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		}
		fields = append(fields, FieldError{Field: fe.Namespace(), Rule: fe.Tag(), Message: msg})
	}
	return apperr.Validation(fields[0].Message).WithDetails(fields)
}
