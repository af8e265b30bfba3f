// Package validate wraps go-playground/validator with the conventions used
// by haulage inputs: JSON field names in messages and Money compared by its
// minor-unit amount.
//
// Two extra tags apply to Money fields. "inr" rejects any currency other
// than types.DefaultCurrency and "maxamount" caps the amount at
// types.MaxAmount.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/xraph/haulage/types"
)

// Violation is one failed rule.
type Violation struct {
	Field   string
	Message string
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if m, ok := field.Interface().(types.Money); ok {
				return m.Amount
			}
			return nil
		}, types.Money{})
		_ = v.RegisterValidation("inr", isDefaultCurrency)
		_ = v.RegisterValidation("maxamount", withinMaxAmount)
	})
	return v
}

// isDefaultCurrency looks the Money back up on the parent struct, since the
// custom type func has already reduced the field to its amount.
func isDefaultCurrency(fl validator.FieldLevel) bool {
	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() != reflect.Struct {
		return false
	}
	f := parent.FieldByName(fl.StructFieldName())
	if !f.IsValid() || !f.CanInterface() {
		return false
	}
	m, ok := f.Interface().(types.Money)
	if !ok {
		return false
	}
	return m.Currency == "" || m.Currency == types.DefaultCurrency
}

func withinMaxAmount(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int64:
		return fl.Field().Int() <= types.MaxAmount
	default:
		return false
	}
}

// Struct checks s against its validate tags and returns every violation.
func Struct(s interface{}) []Violation {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Violation{{Field: "input", Message: err.Error()}}
	}
	out := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Violation{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// fieldPath drops the top-level struct name: "IssueInput.items[0].qty"
// becomes "items[0].qty".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "inr":
		return "must be in " + strings.ToUpper(types.DefaultCurrency)
	case "maxamount":
		return "is larger than the largest supported amount"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
