package service

import (
	"errors"
	"fmt"

	"github.com/ptpcell/placement-backend/internal/repository"
)

// Domain errors returned by services. Handlers map them to HTTP codes.
var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrDuplicateAnswer      = errors.New("question already answered")
	ErrNoActiveQuestion     = errors.New("no active question")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrConflict             = errors.New("conflict")
	ErrQuizUnavailable      = errors.New("quiz is not available")
)

// ValidationError names the offending field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports ErrValidation as the sentinel.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// fromRepo maps storage errors onto the domain taxonomy. Anything else passes through.
func fromRepo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrAlreadyAnswered):
		return ErrDuplicateAnswer
	case errors.Is(err, repository.ErrDuplicate):
		return ErrConflict
	}
	return err
}
