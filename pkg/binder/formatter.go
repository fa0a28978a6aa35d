package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

const (
	email    = "email"
	mx       = "max"
	mn       = "min"
	ne       = "ne"
	oneof    = "oneof"
	required = "required"
	urlTag   = "url"
)

type messageFunc func(field string, err validator.FieldError) string

var validationMessages = map[string]messageFunc{
	email: func(field string, _ validator.FieldError) string {
		return fmt.Sprintf("%q is not a valid email", field)
	},
	mx: func(field string, err validator.FieldError) string {
		return boundMessage(field, err, "less")
	},
	mn: func(field string, err validator.FieldError) string {
		return boundMessage(field, err, "greater")
	},
	ne: func(field string, err validator.FieldError) string {
		return fmt.Sprintf("%q can't be %q", field, err.Param())
	},
	oneof: func(field string, err validator.FieldError) string {
		quoted := []string{}
		for _, p := range strings.Fields(err.Param()) {
			quoted = append(quoted, fmt.Sprintf("%q", p))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(quoted, ", "))
	},
	required: func(field string, _ validator.FieldError) string {
		return fmt.Sprintf("%q is required", field)
	},
	urlTag: func(field string, _ validator.FieldError) string {
		return fmt.Sprintf("%q is not a valid URL", field)
	},
}

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	if msg, ok := validationMessages[err.Tag()]; ok {
		return msg(err.Field(), err)
	}
	return fmt.Sprintf("%q is invalid", err.Field())
}

// boundMessage words min and max failures. Numbers compare by value, strings
// and slices by length.
func boundMessage(field string, err validator.FieldError, direction string) string {
	//exhaustive:ignore
	switch err.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s than or equal to %s", field, direction, err.Param())
	case reflect.Slice:
		return fmt.Sprintf("%q length must be %s than or equal to %s", field, direction, plural(err.Param(), "element"))
	default:
		return fmt.Sprintf("%q length must be %s than or equal to %s", field, direction, plural(err.Param(), "character"))
	}
}

func plural(n, noun string) string {
	if n == "1" {
		return n + " " + noun
	}
	return n + " " + noun + "s"
}
