package domain

import (
	"fmt"

	"github.com/parsivoice/pasban/internal/errors"
)

// ErrSandboxTimeout indicates a skill process exceeded its deadline and its
// whole process group was killed. Partial output is discarded.
var ErrSandboxTimeout = errors.Wrap(errors.ErrTimeout, "sandbox execution timed out")

// SecurityViolationError is returned when command validation rejects an
// argument vector. The check runs before any process is spawned, so a
// rejection guarantees zero side effects.
type SecurityViolationError struct {
	// Command is argv[0] of the rejected vector, or empty for an empty argv.
	Command string

	// Reason states which rule rejected the vector.
	Reason string
}

func (e *SecurityViolationError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("security violation: %s", e.Reason)
	}
	return fmt.Sprintf("security violation in command %q: %s", e.Command, e.Reason)
}

// Unwrap links the error to the ErrForbidden sentinel.
func (e *SecurityViolationError) Unwrap() error {
	return errors.ErrForbidden
}

// SandboxExecutionError is returned when a skill process exits non-zero.
// Stderr carries the skill's own diagnostics.
type SandboxExecutionError struct {
	Skill    string
	ExitCode int
	Stderr   string
}

func (e *SandboxExecutionError) Error() string {
	return fmt.Sprintf("skill %q exited with code %d", e.Skill, e.ExitCode)
}
