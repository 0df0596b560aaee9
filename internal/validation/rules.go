// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/parsivoice/pasban/internal/errors"
)

var (
	// skillNameRegex matches skill names: lowercase alphanumerics with dashes.
	skillNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]{0,63}$`)

	// permissionNameRegex matches dotted permission names such as "network.weather".
	permissionNameRegex = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+){0,3}$`)

	// hexSHA256Regex matches a hex-encoded SHA-256 digest.
	hexSHA256Regex = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// SkillName validates skill name format.
var SkillName = validation.NewStringRuleWithError(
	func(s string) bool {
		return skillNameRegex.MatchString(s)
	},
	validation.NewError("validation_skill_name", "must be a lowercase skill name"),
)

// PermissionName validates permission name format.
var PermissionName = validation.NewStringRuleWithError(
	func(s string) bool {
		return permissionNameRegex.MatchString(s)
	},
	validation.NewError("validation_permission_name", "must be a dotted permission name"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// HexSHA256 validates a hex-encoded SHA-256 digest.
var HexSHA256 = validation.NewStringRuleWithError(
	func(s string) bool {
		return hexSHA256Regex.MatchString(s)
	},
	validation.NewError("validation_hex_sha256", "must be a 64-character hex digest"),
)
