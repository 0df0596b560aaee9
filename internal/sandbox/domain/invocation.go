package domain

import (
	"time"
)

// InvocationStatus is the terminal state of one sandboxed skill invocation.
type InvocationStatus string

const (
	// StatusCompleted means the process exited 0.
	StatusCompleted InvocationStatus = "completed"

	// StatusFailed means the process exited non-zero or could not be spawned.
	StatusFailed InvocationStatus = "failed"

	// StatusTimeout means the process group was killed at the deadline.
	StatusTimeout InvocationStatus = "timeout"
)

// Invocation describes one sandboxed skill invocation. The executor appends
// the payload file path to Argv before validation, so Argv here is the vector
// exactly as the manifest expanded it.
type Invocation struct {
	// Skill is the name of the skill being invoked.
	Skill string

	// Argv is the expanded command vector from the skill manifest.
	Argv []string

	// Payload is serialized to a private temp file whose path becomes the
	// final argument. A nil payload is written as an empty JSON object.
	Payload map[string]any

	// Timeout bounds the process lifetime. Zero means the executor default.
	Timeout time.Duration

	// WorkDir is the skill's own directory. Used as the working directory
	// when it exists, otherwise the process inherits the caller's.
	WorkDir string

	// Env holds extra environment variables from the manifest. Appended on
	// top of the parent environment.
	Env map[string]string

	// BinarySHA256 optionally pins the resolved executable to a hex SHA-256
	// digest. When set, the binary is hashed and must match before spawning.
	BinarySHA256 string
}

// InvocationResult captures the outcome of one sandboxed skill invocation.
// Results are ephemeral; they are returned to the caller and recorded in the
// security event log but never persisted on their own.
type InvocationResult struct {
	// Skill is the name of the invoked skill.
	Skill string

	// Args is the argument vector the process was spawned with, including
	// the appended payload file path.
	Args []string

	// Status is the terminal state of the invocation.
	Status InvocationStatus

	// ExitCode is the process exit code. -1 when the process never ran or
	// was killed before exiting on its own.
	ExitCode int

	// Stdout is the captured standard output. Empty unless the process
	// exited 0.
	Stdout string

	// Stderr is the captured standard error. Kept on failure so callers can
	// surface the skill's own diagnostics.
	Stderr string

	// Duration is the wall-clock time from spawn to exit or kill.
	Duration time.Duration
}
