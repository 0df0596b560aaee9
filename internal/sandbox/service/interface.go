// Package service implements pre-execution command validation and the
// sandboxed skill process executor.
//
// Validation is a pure predicate over the argument vector; nothing is spawned
// until the whole vector has passed. Execution speaks the skill IPC protocol:
// the request payload is written to a private temp file, the file path is
// appended as the final argument, and the skill's reply is read from standard
// output.
package service

import (
	"context"

	"github.com/parsivoice/pasban/internal/sandbox/domain"
)

// CommandValidator checks argument vectors against the static allow-list and
// the danger-pattern blacklist.
type CommandValidator interface {
	// Validate returns a *domain.SecurityViolationError when argv is empty,
	// names an executable outside the allow-list, contains a blacklisted
	// pattern, resolves argv[0] outside the approved binary directories, or
	// carries an absolute argument with a parent-traversal segment. A nil
	// return means the vector is safe to spawn.
	Validate(argv []string) error
}

// SkillSandboxExecutor spawns validated argument vectors as isolated child
// processes.
type SkillSandboxExecutor interface {
	// Execute runs one skill invocation to completion or timeout. The
	// returned result is populated on every path; the error distinguishes
	// validation rejections, non-zero exits and timeouts. The payload temp
	// file is removed before Execute returns, on every path.
	Execute(ctx context.Context, inv domain.Invocation) (domain.InvocationResult, error)
}
