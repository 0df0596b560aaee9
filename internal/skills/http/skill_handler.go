// Package http provides HTTP handlers for intent routing and skill
// execution.
package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	authHTTP "github.com/parsivoice/pasban/internal/auth/http"
	apperrors "github.com/parsivoice/pasban/internal/errors"
	"github.com/parsivoice/pasban/internal/httputil"
	"github.com/parsivoice/pasban/internal/skills/http/dto"
	skillsUseCase "github.com/parsivoice/pasban/internal/skills/usecase"
	customValidation "github.com/parsivoice/pasban/internal/validation"
)

// SkillHandler handles HTTP requests for routing and skill execution.
// It builds the caller identity from the authenticated session claims and
// delegates to the SkillUseCase.
type SkillHandler struct {
	skillUseCase skillsUseCase.SkillUseCase
	logger       *slog.Logger
}

// NewSkillHandler creates a new skill handler with required dependencies.
func NewSkillHandler(
	skillUseCase skillsUseCase.SkillUseCase,
	logger *slog.Logger,
) *SkillHandler {
	return &SkillHandler{
		skillUseCase: skillUseCase,
		logger:       logger,
	}
}

// callerFromContext builds the caller identity from the session claims set by
// the authentication middleware. A session without permissions must stay
// distinguishable from a trusted in-process caller, so nil collapses to an
// empty set.
func callerFromContext(c *gin.Context) (skillsUseCase.Caller, bool) {
	claims, ok := authHTTP.GetClaims(c.Request.Context())
	if !ok {
		return skillsUseCase.Caller{}, false
	}

	permissions := claims.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	return skillsUseCase.Caller{
		ClientID:    claims.Subject,
		SourceIP:    c.ClientIP(),
		RequestID:   requestid.Get(c),
		Permissions: permissions,
	}, true
}

// RouteHandler routes one utterance to the first matching skill and runs it.
// POST /v1/route - Requires authentication.
// Returns 200 OK with the route outcome; an unmatched utterance is a valid
// outcome, not an error.
func (h *SkillHandler) RouteHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		// Should never happen - authentication middleware should have caught this
		h.logger.Error("skill handler: no authenticated session in context")
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.RouteRequest

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

	result, err := h.skillUseCase.Route(c.Request.Context(), caller, req.Text)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRouteResultToResponse(result))
}

// ExecuteHandler runs one named skill directly.
// POST /v1/skills/:name/execute - Requires authentication.
// An empty body is treated as an invocation without arguments.
// Returns 200 OK with the skill's reply and sandbox outcome.
func (h *SkillHandler) ExecuteHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		// Should never happen - authentication middleware should have caught this
		h.logger.Error("skill handler: no authenticated session in context")
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	name := c.Param("name")
	if err := validation.Validate(name, validation.Required, customValidation.SkillName); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	var req dto.ExecuteSkillRequest

	// Parse and bind JSON; an absent body means no arguments
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	response, err := h.skillUseCase.Execute(
		c.Request.Context(),
		caller,
		name,
		req.Args,
		time.Duration(req.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSkillResponse(response))
}

// ExecutePlanHandler runs an ordered plan of skill invocations.
// POST /v1/plan - Requires authentication.
// Returns 200 OK with one result per step; a failing step is captured into
// its own result and never aborts sibling steps.
func (h *SkillHandler) ExecutePlanHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		// Should never happen - authentication middleware should have caught this
		h.logger.Error("skill handler: no authenticated session in context")
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ExecutePlanRequest

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

	results := h.skillUseCase.ExecutePlan(c.Request.Context(), caller, req.ToPlanSteps())

	c.JSON(http.StatusOK, dto.MapStepResultsToResponse(results))
}

// ListHandler lists the loaded skill manifests.
// GET /v1/skills - Requires authentication.
// Returns 200 OK with the manifest summaries.
func (h *SkillHandler) ListHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MapManifestsToListResponse(h.skillUseCase.List()))
}
