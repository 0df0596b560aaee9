// Package http provides HTTP handlers for permission grant management.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authHTTP "github.com/parsivoice/pasban/internal/auth/http"
	apperrors "github.com/parsivoice/pasban/internal/errors"
	"github.com/parsivoice/pasban/internal/httputil"
	"github.com/parsivoice/pasban/internal/permission/domain"
	"github.com/parsivoice/pasban/internal/permission/http/dto"
	permissionUseCase "github.com/parsivoice/pasban/internal/permission/usecase"
)

// PermissionHandler handles HTTP requests for permission grant management.
// Grant and revoke are admin-tier operations; the tier check runs in
// middleware before these handlers.
type PermissionHandler struct {
	permissionUseCase permissionUseCase.PermissionUseCase
	logger            *slog.Logger
}

// NewPermissionHandler creates a new permission handler with required dependencies.
func NewPermissionHandler(
	permissionUseCase permissionUseCase.PermissionUseCase,
	logger *slog.Logger,
) *PermissionHandler {
	return &PermissionHandler{
		permissionUseCase: permissionUseCase,
		logger:            logger,
	}
}

// actorFromContext builds the acting identity from the session claims set by
// the authentication middleware.
func (h *PermissionHandler) actorFromContext(c *gin.Context) (permissionUseCase.Actor, bool) {
	claims, ok := authHTTP.GetClaims(c.Request.Context())
	if !ok {
		// Should never happen - authentication middleware should have caught this
		h.logger.Error("permission handler: no authenticated session in context")
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return permissionUseCase.Actor{}, false
	}
	return permissionUseCase.Actor{
		ClientID:  claims.Subject,
		SourceIP:  c.ClientIP(),
		RequestID: requestid.Get(c),
	}, true
}

// CheckHandler reports the grant state of one permission.
// GET /v1/permissions/:name - Requires authentication.
// Returns 200 OK with the grant state; an ungranted permission is a valid
// state, not an error.
func (h *PermissionHandler) CheckHandler(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	grant, err := h.permissionUseCase.Check(c.Request.Context(), actor, c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGrantToResponse(grant))
}

// GrantHandler persists a grant for one permission.
// POST /v1/permissions/:name/grant - Requires admin tier.
// Returns 200 OK with the new grant state.
func (h *PermissionHandler) GrantHandler(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	name := c.Param("name")
	if err := h.permissionUseCase.Grant(c.Request.Context(), actor, name); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGrantToResponse(domain.Grant{Name: name, Granted: true}))
}

// RevokeHandler removes the grant for one permission.
// POST /v1/permissions/:name/revoke - Requires admin tier.
// Returns 200 OK with the new grant state.
func (h *PermissionHandler) RevokeHandler(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	name := c.Param("name")
	if err := h.permissionUseCase.Revoke(c.Request.Context(), actor, name); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGrantToResponse(domain.Grant{Name: name, Granted: false}))
}
