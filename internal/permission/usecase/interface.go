// Package usecase orchestrates permission grant changes: every check, grant
// and revocation is validated, persisted through the store and recorded as a
// security event.
package usecase

import (
	"context"

	auditDomain "github.com/parsivoice/pasban/internal/audit/domain"
	"github.com/parsivoice/pasban/internal/permission/domain"
)

// Actor identifies the authenticated principal changing or querying grants.
type Actor struct {
	ClientID  string
	SourceIP  string
	RequestID string
}

// EventRecorder defines the interface for recording security events.
type EventRecorder interface {
	Record(ctx context.Context, event auditDomain.SecurityEvent)
}

// PermissionUseCase defines the interface for querying and changing grants.
type PermissionUseCase interface {
	// Check returns the current grant state and records a
	// permission_requested event for the UI shell to act on. It never
	// changes the grant.
	Check(ctx context.Context, actor Actor, name string) (domain.Grant, error)

	// Grant persists the permission as granted.
	Grant(ctx context.Context, actor Actor, name string) error

	// Revoke persists the permission as revoked.
	Revoke(ctx context.Context, actor Actor, name string) error
}
