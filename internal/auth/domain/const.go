// Package domain defines authentication domain models: credentials, tiers,
// session claims, and the rate-limit and IP-reputation state carried by the
// auth chain.
package domain

import (
	"fmt"
)

// Tier classifies a caller and determines its default permission set and
// rate-limit profile.
type Tier string

const (
	// TierAdmin is the operator tier with unrestricted permissions.
	TierAdmin Tier = "admin"

	// TierUser is the default tier for registered remote callers.
	TierUser Tier = "user"

	// TierLocal is the on-device UI shell tier.
	TierLocal Tier = "local"

	// TierDemo is the throttled evaluation tier.
	TierDemo Tier = "demo"
)

// PermissionWildcard grants every permission when present in a permission set.
const PermissionWildcard = "*"

// ParseTier converts a tier string to a Tier.
// Returns an error if the tier string is not one of the known tiers.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierAdmin, TierUser, TierLocal, TierDemo:
		return Tier(s), nil
	default:
		return "", fmt.Errorf("unknown tier: %s (valid options: admin, user, local, demo)", s)
	}
}
