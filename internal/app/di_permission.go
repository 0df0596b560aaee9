package app

import (
	"fmt"

	permissionHTTP "github.com/parsivoice/pasban/internal/permission/http"
	permissionService "github.com/parsivoice/pasban/internal/permission/service"
	permissionUseCase "github.com/parsivoice/pasban/internal/permission/usecase"
)

// PermissionStore returns the file-backed permission grant store.
func (c *Container) PermissionStore() permissionService.PermissionStore {
	c.permissionStoreInit.Do(func() {
		c.permissionStore = permissionService.NewFileStore(c.config.PermissionFile)
	})
	return c.permissionStore
}

// PermissionUseCase returns the permission use case.
func (c *Container) PermissionUseCase() (permissionUseCase.PermissionUseCase, error) {
	var err error
	c.permissionUseCaseInit.Do(func() {
		c.permissionUseCase, err = c.initPermissionUseCase()
		if err != nil {
			c.initErrors["permissionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["permissionUseCase"]; exists {
		return nil, storedErr
	}
	return c.permissionUseCase, nil
}

// PermissionHandler returns the HTTP handler for permission operations.
func (c *Container) PermissionHandler() (*permissionHTTP.PermissionHandler, error) {
	var err error
	c.permissionHandlerInit.Do(func() {
		c.permissionHandler, err = c.initPermissionHandler()
		if err != nil {
			c.initErrors["permissionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["permissionHandler"]; exists {
		return nil, storedErr
	}
	return c.permissionHandler, nil
}

// initPermissionUseCase creates the permission use case with its dependencies.
func (c *Container) initPermissionUseCase() (permissionUseCase.PermissionUseCase, error) {
	recorder, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for permission use case: %w", err)
	}

	return permissionUseCase.NewPermissionUseCase(c.PermissionStore(), recorder), nil
}

// initPermissionHandler creates the permission HTTP handler.
func (c *Container) initPermissionHandler() (*permissionHTTP.PermissionHandler, error) {
	permUseCase, err := c.PermissionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission use case for permission handler: %w", err)
	}

	return permissionHTTP.NewPermissionHandler(permUseCase, c.Logger()), nil
}
