// Package service implements grant persistence for the permission layer.
package service

// PermissionStore defines the interface for reading and changing permission
// grants. Reads always reflect the persisted state, so grants flipped by
// another process apply without a restart.
type PermissionStore interface {
	// IsGranted reports whether the named permission is currently granted.
	// A missing grant file or an unknown name reads as false.
	IsGranted(name string) bool

	// Grant persists the named permission as granted.
	Grant(name string) error

	// Revoke persists the named permission as revoked.
	Revoke(name string) error
}
