package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/parsivoice/pasban/internal/sandbox/domain"
)

// blacklistedPatterns are substrings that reject a vector when found in the
// lowercased space-joined argv. Matching is deliberately coarse: a false
// positive costs one rejected skill call, a false negative costs a shell.
var blacklistedPatterns = []string{
	// Shell chaining and redirection. A vector is spawned directly, never
	// through a shell, so these have no legitimate use in arguments.
	";", "&&", "|", ">", "<", "`", "$(",

	// Destructive commands.
	"rm -rf", "rm -fr", "mkfs", "dd if=", ":(){", "shutdown", "reboot", "poweroff",

	// Privilege escalation.
	"sudo", "doas", "pkexec", "su -",

	// Network fetch and remote shells.
	"curl", "wget", "netcat", "ncat", "telnet", "ssh ", "scp ",

	// Script interpreters.
	"bash", "zsh", "dash", "ksh", "sh -c", "python", "perl", "ruby", "php ", "node ",
}

// approvedBinDirs are the only directories an absolute argv[0] may live in.
var approvedBinDirs = []string{
	"/usr/bin",
	"/bin",
	"/usr/local/bin",
}

// DefaultAllowedExecutables returns the built-in allow-list of executable
// basenames skills may invoke: speech synthesis, audio playback, mixer
// control and read-only system status tools.
func DefaultAllowedExecutables() []string {
	return []string{
		"espeak", "espeak-ng", "pico2wave",
		"aplay", "paplay", "mpv", "ffplay",
		"amixer", "pactl",
		"date", "cal", "uptime", "uname", "hostname", "df", "free",
	}
}

type commandValidator struct {
	allowed map[string]struct{}
}

// NewCommandValidator creates a validator that accepts only vectors whose
// argv[0] basename appears in allowedExecutables.
func NewCommandValidator(allowedExecutables []string) CommandValidator {
	allowed := make(map[string]struct{}, len(allowedExecutables))
	for _, name := range allowedExecutables {
		allowed[name] = struct{}{}
	}
	return &commandValidator{allowed: allowed}
}

func (v *commandValidator) Validate(argv []string) error {
	if len(argv) == 0 {
		return &domain.SecurityViolationError{Reason: "empty command"}
	}

	command := argv[0]
	basename := filepath.Base(command)
	if _, ok := v.allowed[basename]; !ok {
		return &domain.SecurityViolationError{
			Command: command,
			Reason:  fmt.Sprintf("executable %q is not allow-listed", basename),
		}
	}

	joined := strings.ToLower(strings.Join(argv, " "))
	for _, pattern := range blacklistedPatterns {
		if strings.Contains(joined, pattern) {
			return &domain.SecurityViolationError{
				Command: command,
				Reason:  fmt.Sprintf("blacklisted pattern %q in arguments", pattern),
			}
		}
	}

	if filepath.IsAbs(command) && !inApprovedDir(command) {
		return &domain.SecurityViolationError{
			Command: command,
			Reason:  "executable path outside approved system directories",
		}
	}

	for _, arg := range argv[1:] {
		if filepath.IsAbs(arg) && hasTraversalSegment(arg) {
			return &domain.SecurityViolationError{
				Command: command,
				Reason:  fmt.Sprintf("argument %q traverses parent directories", arg),
			}
		}
	}

	return nil
}

func inApprovedDir(command string) bool {
	dir := filepath.Dir(command)
	for _, approved := range approvedBinDirs {
		if dir == approved {
			return true
		}
	}
	return false
}

// hasTraversalSegment reports whether path contains a ".." segment. The check
// is on raw segments rather than the cleaned path, so "/etc/passwd/.." is
// rejected even though it cleans to "/etc".
func hasTraversalSegment(path string) bool {
	for _, segment := range strings.Split(path, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}
