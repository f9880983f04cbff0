package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("qrcode", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		return code != "" && !strings.ContainsAny(code, "/?# ")
	})
	return v
}

// Error is a validation failure caught before any network call.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

type StartSessionInput struct {
	QRCode         string `validate:"required,max=128,qrcode"`
	NumberOfGuests int    `validate:"min=1,max=50"`
}

// Struct validates any struct carrying validate tags and returns the first
// failure as *Error.
func Struct(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &Error{Message: err.Error()}
	}
	fe := verrs[0]
	return &Error{Field: fe.Field(), Message: message(fe)}
}

func StartSession(qrCode string, guests int) error {
	return Struct(StartSessionInput{QRCode: strings.TrimSpace(qrCode), NumberOfGuests: guests})
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "qrcode":
		return "is not a valid table code"
	case "email":
		return "must be a valid email"
	default:
		return "is invalid"
	}
}
