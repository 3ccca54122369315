package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"smartreads/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 8

// ValidationError carries the message shown to the user for a rejected form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type SignUpInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            models.UserRole
	TermsAccepted   bool
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Validate reports the first failing rule, in form order.
func (in SignUpInput) Validate() error {
	switch {
	case strings.TrimSpace(in.FirstName) == "":
		return &ValidationError{Field: "firstName", Message: "First name is required."}
	case strings.TrimSpace(in.LastName) == "":
		return &ValidationError{Field: "lastName", Message: "Last name is required."}
	case !IsValidEmail(in.Email):
		return &ValidationError{Field: "email", Message: "Please enter a valid email address."}
	case utf8.RuneCountInString(in.Password) < minPasswordLength:
		return &ValidationError{Field: "password", Message: "Password must be at least 8 characters long."}
	case in.Password != in.ConfirmPassword:
		return &ValidationError{Field: "confirmPassword", Message: "Passwords do not match."}
	case !in.TermsAccepted:
		return &ValidationError{Field: "terms", Message: "Please accept the terms of service."}
	case !in.Role.Valid():
		return &ValidationError{Field: "role", Message: "Please choose a role."}
	}
	return nil
}
