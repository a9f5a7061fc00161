package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidateJSONValue accepts a raw JSON field only when it holds a value other than null
func ValidateJSONValue(fl validator.FieldLevel) bool {
	raw, ok := fl.Field().Interface().(json.RawMessage)
	if !ok {
		return false
	}
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null")) && json.Valid(raw)
}

// ValidateChatEndpoint restricts local model endpoints to absolute http(s) URLs
func ValidateChatEndpoint(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// RegisterRequestValidators registers all request-related custom validators
func RegisterRequestValidators(v *validator.Validate) {
	v.RegisterValidation("json_value", ValidateJSONValue)
	v.RegisterValidation("chat_endpoint", ValidateChatEndpoint)
}

// New returns a validator with the custom validators registered and field
// names taken from form/json tags.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	RegisterRequestValidators(v)
	return v
}

// Describe turns validation errors into one client-facing sentence
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		parts = append(parts, fmt.Sprintf("invalid fields: %s", strings.Join(invalid, ", ")))
	}
	return strings.Join(parts, "; ")
}
