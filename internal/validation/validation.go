// Package validation checks decoded request bodies against struct tags and
// turns failures into field-keyed apperr validation errors.
//
// Field keys are the json names ("user.email" for nested fields). Messages
// come from the `msg` tag when present, otherwise from the failing rule and
// the `label` tag.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/devextech/devex-api/internal/apperr"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("mindigits", minDigits)
		validate = v
	})
	return validate
}

// Struct validates s. It returns nil or an *apperr.Error of KindValidation.
func Struct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal("Validation failed", err)
	}

	fields := make(map[string][]string, len(verrs))
	messages := make([]string, 0, len(verrs))
	root := reflect.Indirect(reflect.ValueOf(s)).Type()

	for _, fe := range verrs {
		key := fieldKey(fe)
		msg := message(root, fe)
		fields[key] = append(fields[key], msg)
		messages = append(messages, msg)
	}

	return apperr.Validation(strings.Join(messages, ", "), fields)
}

// fieldKey strips the root struct name from the json namespace.
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(root reflect.Type, fe validator.FieldError) string {
	field, ok := lookupField(root, fe.StructNamespace())
	label := fe.Field()
	if ok {
		if override := field.Tag.Get("msg"); override != "" {
			return override
		}
		if l := field.Tag.Get("label"); l != "" {
			label = l
		}
	}

	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "Please enter a valid email address."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match.", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url", "http_url":
		return label + " must be a valid URL."
	case "mindigits":
		return fmt.Sprintf("%s must be at least %s digits.", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}

// lookupField walks a struct namespace such as "Req.User.Email".
func lookupField(root reflect.Type, structNS string) (reflect.StructField, bool) {
	parts := strings.Split(structNS, ".")
	if len(parts) < 2 {
		return reflect.StructField{}, false
	}

	t := root
	var field reflect.StructField
	for _, name := range parts[1:] {
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return reflect.StructField{}, false
		}
		f, ok := t.FieldByName(name)
		if !ok {
			return reflect.StructField{}, false
		}
		field = f
		t = f.Type
	}
	return field, true
}

// minDigits counts decimal digits in a string, ignoring separators like
// spaces, dashes and a leading plus.
func minDigits(fl validator.FieldLevel) bool {
	var want int
	if _, err := fmt.Sscanf(fl.Param(), "%d", &want); err != nil {
		return false
	}

	n := 0
	for _, r := range fl.Field().String() {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n >= want
}
