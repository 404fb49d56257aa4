package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/oksasatya/user-auth-service/pkg/apperror"
)

// MinPasswordLength is the shortest password accepted at signup and reset.
const MinPasswordLength = 6

var (
	mobilePattern = regexp.MustCompile(`^\+?[1-9][0-9]{6,14}$`)
	mobileStrip   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

	initOnce sync.Once
	stdOnce  sync.Once
	std      *validator.Validate
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags and the custom mobile/notblank rules.
func Init() {
	initOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			Register(v)
		}
	})
}

// Register installs the project rules on v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("mobile", isMobile)
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterAlias("pwd", fmt.Sprintf("min=%d", MinPasswordLength))
	v.RegisterAlias("phone", "mobile")
}

// Default returns a standalone validator with the project rules, for code
// that validates outside of Gin binding.
func Default() *validator.Validate {
	stdOnce.Do(func() {
		std = validator.New(validator.WithRequiredStructEnabled())
		Register(std)
	})
	return std
}

// IsMobile reports whether s looks like a phone number once common
// separators are removed.
func IsMobile(s string) bool {
	return mobilePattern.MatchString(mobileStrip.Replace(s))
}

func isMobile(fl validator.FieldLevel) bool {
	return IsMobile(fl.Field().String())
}

// ToFieldErrors converts binding and validation errors into per-field messages.
func ToFieldErrors(err error) []apperror.FieldError {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return []apperror.FieldError{{Field: "payload", Message: "request body is too large"}}
	case errors.Is(err, io.EOF):
		return []apperror.FieldError{{Field: "payload", Message: "request body is required"}}
	case errors.As(err, &ute):
		if ute.Field != "" {
			return []apperror.FieldError{{Field: ute.Field, Message: "must be a " + ute.Type.String()}}
		}
		return []apperror.FieldError{{Field: "payload", Message: "invalid json"}}
	case errors.As(err, &se), errors.Is(err, io.ErrUnexpectedEOF):
		return []apperror.FieldError{{Field: "payload", Message: "invalid json"}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, apperror.FieldError{Field: fe.Field(), Message: formatFieldError(fe)})
		}
		return out
	}

	return []apperror.FieldError{{Field: "payload", Message: "invalid payload"}}
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "notblank":
		return "must not be blank"
	case "mobile", "phone":
		return "must be a valid phone number"
	case "uuid":
		return "must be a valid UUID"
	case "jwt":
		return "must be a valid JWT token"
	case "pwd":
		return fmt.Sprintf("must be at least %d characters long", MinPasswordLength)
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", fe.Tag(), param)
		}
		return fmt.Sprintf("validation failed for '%s'", fe.Tag())
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
