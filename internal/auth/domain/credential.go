package domain

import (
	"time"
)

// RateProfile is the sliding-window budget attached to a tier.
type RateProfile struct {
	// Limit is the maximum number of requests inside one window.
	Limit int

	// Window is the length of the sliding window.
	Window time.Duration
}

// Credential is one entry of the immutable credential table built at startup.
// Exactly one of KeyDigest or KeyHash is set: machine-issued API keys are
// stored as hex SHA-256 digests, user-chosen passphrases as argon2id hashes.
type Credential struct {
	// ID identifies the credential in events and rate-limit buckets.
	ID string

	// KeyDigest is the hex-encoded SHA-256 digest of the plain key.
	KeyDigest string

	// KeyHash is the argon2id hash of a passphrase credential.
	KeyHash string

	// Tier determines the default permission set and rate profile.
	Tier Tier

	// Permissions overrides the tier's default permission set when non-empty.
	Permissions []string
}

// Identity is the authenticated result of credential validation: who the
// caller is and what it may do. Identities are value objects; mutating one
// never affects the credential table.
type Identity struct {
	CredentialID string
	Tier         Tier
	Permissions  []string
}

// HasPermission reports whether the identity's permission set contains name
// or the wildcard.
func (i Identity) HasPermission(name string) bool {
	for _, p := range i.Permissions {
		if p == PermissionWildcard || p == name {
			return true
		}
	}
	return false
}

// CredentialTable is the immutable set of known credentials plus the
// per-tier permission sets and rate profiles. Built once at startup and
// shared read-only between goroutines.
type CredentialTable struct {
	credentials []Credential
	permissions map[Tier][]string
	profiles    map[Tier]RateProfile
}

// NewCredentialTable builds a table from its parts. The inputs are copied so
// later mutation by the caller cannot alter the table.
func NewCredentialTable(
	credentials []Credential,
	permissions map[Tier][]string,
	profiles map[Tier]RateProfile,
) *CredentialTable {
	table := &CredentialTable{
		credentials: make([]Credential, len(credentials)),
		permissions: make(map[Tier][]string, len(permissions)),
		profiles:    make(map[Tier]RateProfile, len(profiles)),
	}
	copy(table.credentials, credentials)
	for tier, perms := range permissions {
		table.permissions[tier] = append([]string(nil), perms...)
	}
	for tier, profile := range profiles {
		table.profiles[tier] = profile
	}
	return table
}

// Credentials returns the credential entries in table order.
func (t *CredentialTable) Credentials() []Credential {
	return t.credentials
}

// Len returns the number of credential entries.
func (t *CredentialTable) Len() int {
	return len(t.credentials)
}

// PermissionsFor resolves the effective permission set of a credential:
// its own override when present, otherwise the tier default.
func (t *CredentialTable) PermissionsFor(credential Credential) []string {
	if len(credential.Permissions) > 0 {
		return append([]string(nil), credential.Permissions...)
	}
	return append([]string(nil), t.permissions[credential.Tier]...)
}

// ProfileFor returns the rate profile of a tier. Unknown tiers fall back to
// the demo profile so a misconfigured tier never runs unthrottled.
func (t *CredentialTable) ProfileFor(tier Tier) RateProfile {
	if profile, ok := t.profiles[tier]; ok {
		return profile
	}
	return t.profiles[TierDemo]
}

// DefaultPermissions returns the built-in per-tier permission sets used when
// the credential file does not override them.
func DefaultPermissions() map[Tier][]string {
	return map[Tier][]string{
		TierAdmin: {PermissionWildcard},
		TierUser:  {"speak", "network.weather", "network.news", "smart_home.lights"},
		TierLocal: {"speak", "notify", "network.weather", "network.news", "smart_home.lights", "media.playback"},
		TierDemo:  {"speak"},
	}
}

// DefaultProfiles returns the built-in per-tier rate profiles.
func DefaultProfiles() map[Tier]RateProfile {
	return map[Tier]RateProfile{
		TierAdmin: {Limit: 1000, Window: time.Hour},
		TierUser:  {Limit: 100, Window: time.Hour},
		TierLocal: {Limit: 200, Window: time.Hour},
		TierDemo:  {Limit: 50, Window: time.Hour},
	}
}
