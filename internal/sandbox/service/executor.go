package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/parsivoice/pasban/internal/errors"
	"github.com/parsivoice/pasban/internal/sandbox/domain"
)

type skillSandboxExecutor struct {
	validator      CommandValidator
	defaultTimeout time.Duration
}

// NewSkillSandboxExecutor creates an executor that validates every vector
// through validator before spawning. defaultTimeout applies to invocations
// that carry none.
func NewSkillSandboxExecutor(validator CommandValidator, defaultTimeout time.Duration) SkillSandboxExecutor {
	if defaultTimeout <= 0 {
		defaultTimeout = 10 * time.Second
	}
	return &skillSandboxExecutor{
		validator:      validator,
		defaultTimeout: defaultTimeout,
	}
}

func (e *skillSandboxExecutor) Execute(ctx context.Context, inv domain.Invocation) (domain.InvocationResult, error) {
	payloadPath, err := writePayloadFile(inv.Payload)
	if err != nil {
		return failedResult(inv, nil), errors.Wrap(err, "failed to write payload file")
	}
	// Removal is deferred rather than handled per branch so the file is gone
	// on every exit path, panics included.
	defer os.Remove(payloadPath)

	argv := append(slices.Clone(inv.Argv), payloadPath)
	if err := e.validator.Validate(argv); err != nil {
		return failedResult(inv, argv), err
	}

	if inv.BinarySHA256 != "" {
		if err := verifyBinaryDigest(argv[0], inv.BinarySHA256); err != nil {
			return failedResult(inv, argv), err
		}
	}

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if dirExists(inv.WorkDir) {
		cmd.Dir = inv.WorkDir
	}
	if len(inv.Env) > 0 {
		cmd.Env = os.Environ()
		for name, value := range inv.Env {
			cmd.Env = append(cmd.Env, name+"="+value)
		}
	}

	// The skill runs in its own process group so that the kill on timeout
	// reaches the skill and all of its children, not just the direct child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := domain.InvocationResult{
		Skill:    inv.Skill,
		Args:     argv,
		ExitCode: -1,
		Duration: duration,
	}

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		result.Status = domain.StatusTimeout
		return result, errors.Wrapf(domain.ErrSandboxTimeout, "skill %q exceeded %s", inv.Skill, timeout)

	case runCtx.Err() != nil:
		result.Status = domain.StatusFailed
		return result, errors.Wrapf(runCtx.Err(), "skill %q canceled", inv.Skill)

	case runErr == nil:
		result.Status = domain.StatusCompleted
		result.ExitCode = 0
		result.Stdout = stdout.String()
		result.Stderr = stderr.String()
		return result, nil

	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.Status = domain.StatusFailed
			result.ExitCode = exitErr.ExitCode()
			result.Stderr = stderr.String()
			return result, &domain.SandboxExecutionError{
				Skill:    inv.Skill,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		result.Status = domain.StatusFailed
		return result, errors.Wrapf(runErr, "failed to spawn skill %q", inv.Skill)
	}
}

// writePayloadFile serializes payload as JSON to a fresh private temp file
// and returns its path. CreateTemp creates the file 0600, so the payload is
// never readable by other users.
func writePayloadFile(payload map[string]any) (string, error) {
	data := []byte("{}")
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return "", errors.Wrap(err, "failed to marshal payload")
		}
	}

	file, err := os.CreateTemp("", "pasban-skill-*.json")
	if err != nil {
		return "", errors.Wrap(err, "failed to create payload file")
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", errors.Wrap(err, "failed to write payload file")
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", errors.Wrap(err, "failed to close payload file")
	}
	return file.Name(), nil
}

// verifyBinaryDigest hashes the executable the vector will actually run and
// compares it against the manifest pin.
func verifyBinaryDigest(command, wantHex string) error {
	path := command
	if !filepath.IsAbs(command) {
		resolved, err := exec.LookPath(command)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve executable %q", command)
		}
		path = resolved
	}

	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open executable %q", path)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return errors.Wrapf(err, "failed to hash executable %q", path)
	}
	gotHex := hex.EncodeToString(hasher.Sum(nil))

	if gotHex != strings.ToLower(wantHex) {
		return &domain.SecurityViolationError{
			Command: command,
			Reason:  fmt.Sprintf("executable digest %s does not match manifest pin", gotHex),
		}
	}
	return nil
}

// dirExists reports whether path names an existing directory.
func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func failedResult(inv domain.Invocation, argv []string) domain.InvocationResult {
	if argv == nil {
		argv = inv.Argv
	}
	return domain.InvocationResult{
		Skill:    inv.Skill,
		Args:     argv,
		Status:   domain.StatusFailed,
		ExitCode: -1,
	}
}
