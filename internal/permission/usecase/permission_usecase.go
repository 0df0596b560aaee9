package usecase

import (
	"context"

	validation "github.com/jellydator/validation"

	auditDomain "github.com/parsivoice/pasban/internal/audit/domain"
	"github.com/parsivoice/pasban/internal/permission/domain"
	"github.com/parsivoice/pasban/internal/permission/service"
	appvalidation "github.com/parsivoice/pasban/internal/validation"
)

// permissionUseCase implements PermissionUseCase over the grant store.
type permissionUseCase struct {
	store    service.PermissionStore
	recorder EventRecorder
}

// Check returns the persisted grant state and records a permission_requested
// event. The grant itself never changes here.
func (p *permissionUseCase) Check(
	ctx context.Context,
	actor Actor,
	name string,
) (domain.Grant, error) {
	if err := validateName(name); err != nil {
		return domain.Grant{}, err
	}

	grant := domain.Grant{Name: name, Granted: p.store.IsGranted(name)}
	p.record(ctx, actor, auditDomain.EventPermissionRequested, map[string]any{
		"permission": name,
		"granted":    grant.Granted,
	})

	return grant, nil
}

// Grant persists the permission as granted and records the change.
func (p *permissionUseCase) Grant(ctx context.Context, actor Actor, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := p.store.Grant(name); err != nil {
		return err
	}

	p.record(ctx, actor, auditDomain.EventPermissionGranted, map[string]any{
		"permission": name,
	})

	return nil
}

// Revoke persists the permission as revoked and records the change.
func (p *permissionUseCase) Revoke(ctx context.Context, actor Actor, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := p.store.Revoke(name); err != nil {
		return err
	}

	p.record(ctx, actor, auditDomain.EventPermissionRevoked, map[string]any{
		"permission": name,
	})

	return nil
}

func (p *permissionUseCase) record(
	ctx context.Context,
	actor Actor,
	eventType auditDomain.EventType,
	details map[string]any,
) {
	p.recorder.Record(ctx, auditDomain.SecurityEvent{
		Type:      eventType,
		ClientID:  actor.ClientID,
		SourceIP:  actor.SourceIP,
		RequestID: actor.RequestID,
		Details:   details,
	})
}

func validateName(name string) error {
	err := validation.Validate(name, validation.Required, appvalidation.PermissionName)
	return appvalidation.WrapValidationError(err)
}

// NewPermissionUseCase creates a PermissionUseCase over a grant store.
func NewPermissionUseCase(store service.PermissionStore, recorder EventRecorder) PermissionUseCase {
	return &permissionUseCase{
		store:    store,
		recorder: recorder,
	}
}
