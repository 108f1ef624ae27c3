package core

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Shared validator instance for format checks (email syntax, E.164).
var validate = validator.New()

// RegisterInput is the request payload for account creation.
type RegisterInput struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Address     string `json:"address"`
}

// Normalize trims free-text fields and canonicalizes the email to
// lowercase. Called before validation and before any store access so
// uniqueness is checked against the stored form.
func (in *RegisterInput) Normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Address = strings.TrimSpace(in.Address)
}

// ValidateRegisterInput enforces input shape before any store
// mutation. Required-field checks run first; format checks second,
// because the format checks assume presence. Pure over its input.
func ValidateRegisterInput(in RegisterInput, requirePhoneFormat bool) error {
	switch {
	case in.FullName == "":
		return &ValidationError{Message: "full name is required"}
	case in.Email == "":
		return &ValidationError{Message: "email is required"}
	case in.PhoneNumber == "":
		return &ValidationError{Message: "phone number is required"}
	case in.Password == "":
		return &ValidationError{Message: "password is required"}
	}

	if err := validate.Var(in.Email, "email"); err != nil {
		return &ValidationError{Message: "invalid email format"}
	}
	if len(in.Password) < 8 {
		return &ValidationError{Message: "password too short"}
	}
	if requirePhoneFormat {
		if err := validate.Var(in.PhoneNumber, "e164"); err != nil {
			return &ValidationError{Message: "invalid phone number format"}
		}
	}
	return nil
}

// normalizeEmail applies the same canonical form used at registration.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateLoginInput checks presence of login fields.
func ValidateLoginInput(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return &ValidationError{Message: "email and password are required"}
	}
	return nil
}
