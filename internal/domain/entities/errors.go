package entities

import (
	"github.com/cockroachdb/errors"
)

// Error categories. Concrete errors are marked with one of these so callers
// can branch with errors.Is while keeping the original message.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrCollaborator = errors.New("collaborator failure")
)

// Validationf returns an error marked as ErrValidation.
func Validationf(format string, args ...any) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrValidation)
}

// NotFoundf returns an error marked as ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrNotFound)
}

// Conflictf returns an error marked as ErrConflict.
func Conflictf(format string, args ...any) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrConflict)
}

// CollaboratorError wraps a failure of an external dependency (news source,
// LLM, vector index, store) and marks it as ErrCollaborator.
func CollaboratorError(err error, what string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.WrapWithDepth(1, err, what), ErrCollaborator)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return err != nil && errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool {
	return err != nil && errors.Is(err, ErrConflict)
}

// IsCollaborator reports whether err is a collaborator failure.
func IsCollaborator(err error) bool {
	return err != nil && errors.Is(err, ErrCollaborator)
}
