package service

import (
	"errors"
	"fmt"

	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
)

// Error kinds surfaced to callers. Handlers map them to HTTP status codes
// with errors.Is, so every returned error wraps exactly one of these.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// translate maps repository errors onto the service error kinds
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s not found: %w", what, ErrNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%s already exists: %w", what, ErrConflict)
	case errors.Is(err, repository.ErrNotPending):
		return fmt.Errorf("%s is not pending: %w", what, ErrConflict)
	}
	return err
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}
