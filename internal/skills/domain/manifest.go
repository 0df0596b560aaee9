package domain

import (
	"os"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	appvalidation "github.com/parsivoice/pasban/internal/validation"
)

// Manifest describes one skill as authored in <skills_dir>/<name>/skill.yaml.
// Manifests are loaded read-only at startup; editing one requires a restart.
type Manifest struct {
	// Name is the skill's identifier. Must match its directory name.
	Name string `yaml:"name"`

	// Description is a human-readable summary, usually in Persian.
	Description string `yaml:"description"`

	// Command is the argument vector to spawn. String args substitute
	// ${var} placeholders before validation.
	Command []string `yaml:"command"`

	// Triggers are utterance fragments that route free text to this skill.
	// A skill without triggers is reachable only by direct invocation.
	Triggers []string `yaml:"triggers"`

	// Permission names the grant required to run this skill.
	Permission string `yaml:"permission"`

	// TimeoutSeconds bounds one invocation. Zero means the executor default.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// BinarySHA256 optionally pins the executable to a hex digest.
	BinarySHA256 string `yaml:"binary_sha256"`

	// Env holds extra environment variables for the skill process.
	Env map[string]string `yaml:"env"`

	// Priority orders skills during routing; higher values are tried first,
	// ties break by name.
	Priority int `yaml:"priority"`

	// Dir is the directory the manifest was loaded from. Set by the loader,
	// used as the skill's working directory.
	Dir string `yaml:"-"`
}

// Validate checks the manifest against the authoring rules.
func (m Manifest) Validate() error {
	return appvalidation.WrapValidationError(validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, appvalidation.SkillName),
		validation.Field(&m.Command, validation.Required, validation.Each(validation.Required, appvalidation.NotBlank)),
		validation.Field(&m.Permission, validation.Required, appvalidation.PermissionName),
		validation.Field(&m.TimeoutSeconds, validation.Min(0)),
		validation.Field(&m.BinarySHA256, validation.When(m.BinarySHA256 != "", appvalidation.HexSHA256)),
	))
}

// Timeout returns the manifest timeout as a duration. Zero when unset.
func (m Manifest) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// MatchesTrigger reports whether text contains any trigger fragment,
// case-insensitively.
func (m Manifest) MatchesTrigger(text string) bool {
	lowered := strings.ToLower(text)
	for _, trigger := range m.Triggers {
		if trigger == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(trigger)) {
			return true
		}
	}
	return false
}

// ExpandCommand renders the command vector, substituting ${var} placeholders
// from string args. Missing or non-string args expand to the empty string.
func (m Manifest) ExpandCommand(args map[string]any) []string {
	argv := make([]string, len(m.Command))
	for i, element := range m.Command {
		argv[i] = os.Expand(element, func(key string) string {
			if value, ok := args[key]; ok {
				if s, ok := value.(string); ok {
					return s
				}
			}
			return ""
		})
	}
	return argv
}
