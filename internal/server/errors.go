package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/skills-dossier/internal/doctext"
	"github.com/jonathan/skills-dossier/internal/parsing"
	"github.com/jonathan/skills-dossier/internal/pdftext"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID string
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrForbidden indicates the caller lacks the required role.
type ErrForbidden struct {
	Required string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s role required", e.Required)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		exists     *ErrEmailAlreadyExists
		creds      *ErrInvalidCredentials
		notFound   *ErrUserNotFound
		forbidden  *ErrForbidden
		validation *ErrValidation
		empty      *parsing.EmptyInputError
		tooLarge   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &exists):
		return http.StatusConflict
	case errors.As(err, &creds):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &validation), errors.As(err, &empty):
		return http.StatusBadRequest
	case errors.Is(err, pdftext.ErrNoText), errors.Is(err, pdftext.ErrNotPDF), errors.Is(err, pdftext.ErrCorrupt),
		errors.Is(err, doctext.ErrUnsupported):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
