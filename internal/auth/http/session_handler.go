// Package http provides HTTP middleware and handlers for session
// authentication.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/parsivoice/pasban/internal/auth/http/dto"
	authUseCase "github.com/parsivoice/pasban/internal/auth/usecase"
	"github.com/parsivoice/pasban/internal/httputil"
	customValidation "github.com/parsivoice/pasban/internal/validation"
)

// SessionHandler handles HTTP requests for session issuance.
// It coordinates credential authentication with the SessionUseCase.
type SessionHandler struct {
	sessionUseCase authUseCase.SessionUseCase
	logger         *slog.Logger
}

// NewSessionHandler creates a new session handler with required dependencies.
func NewSessionHandler(
	sessionUseCase authUseCase.SessionUseCase,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessionUseCase: sessionUseCase,
		logger:         logger,
	}
}

// IssueSessionHandler exchanges a credential for a session token.
// POST /v1/session - No authentication required (this is the authentication endpoint).
// Returns 201 Created with the token, its tier and expiration time.
func (h *SessionHandler) IssueSessionHandler(c *gin.Context) {
	var req dto.IssueSessionRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// Call use case
	session, err := h.sessionUseCase.IssueSession(
		c.Request.Context(),
		req.Key,
		c.ClientIP(),
		requestid.Get(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSessionToResponse(session))
}
