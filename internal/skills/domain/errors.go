package domain

import (
	"fmt"

	"github.com/parsivoice/pasban/internal/errors"
)

// ErrSkillNotFound indicates a direct invocation or plan step named a skill
// the registry does not know.
var ErrSkillNotFound = errors.Wrap(errors.ErrNotFound, "skill not found")

// PermissionDeniedError is returned when a skill call lacks its required
// permission, either because the caller's set does not contain it or because
// the operator has not granted it.
type PermissionDeniedError struct {
	Skill      string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("skill %q requires permission %q", e.Skill, e.Permission)
}

// Unwrap links the error to the ErrForbidden sentinel.
func (e *PermissionDeniedError) Unwrap() error {
	return errors.ErrForbidden
}
