package entity

import (
	"strings"

	"github.com/oksasatya/user-auth-service/pkg/apperror"
	"github.com/oksasatya/user-auth-service/pkg/validation"
)

// Signup is the input for creating an account.
type Signup struct {
	Email        string  `json:"email" validate:"required,email,max=254"`
	Password     string  `json:"password" validate:"required,pwd,max=128"`
	Name         *string `json:"name" validate:"omitempty,notblank,max=100"`
	MobileNumber *string `json:"mobileNumber" validate:"omitempty,phone"`
}

// NormalizeEmail lowercases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// Normalize returns a copy with the email normalized and optional fields trimmed.
func (s Signup) Normalize() Signup {
	s.Email = NormalizeEmail(s.Email)
	s.Name = trimPtr(s.Name)
	s.MobileNumber = trimPtr(s.MobileNumber)
	return s
}

func (p ProfileUpdate) Normalize() ProfileUpdate {
	p.Name = trimPtr(p.Name)
	p.MobileNumber = trimPtr(p.MobileNumber)
	return p
}

func ValidateSignup(s Signup) error {
	return validateStruct(s)
}

func ValidateProfile(p ProfileUpdate) error {
	return validateStruct(p)
}

// ValidatePassword checks a new password against the signup length rules.
func ValidatePassword(password string) error {
	if err := validation.Default().Var(password, "required,pwd,max=128"); err != nil {
		fields := validation.ToFieldErrors(err)
		for i := range fields {
			fields[i].Field = "password"
		}
		return apperror.Validation(fields...)
	}
	return nil
}

func validateStruct(v any) error {
	if err := validation.Default().Struct(v); err != nil {
		return apperror.Validation(validation.ToFieldErrors(err)...)
	}
	return nil
}
