// Package http provides HTTP handlers for the security event log.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parsivoice/pasban/internal/audit/http/dto"
	auditUseCase "github.com/parsivoice/pasban/internal/audit/usecase"
	"github.com/parsivoice/pasban/internal/httputil"
)

// AuditHandler handles HTTP requests for security event queries.
type AuditHandler struct {
	auditUseCase auditUseCase.AuditUseCase
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler with required dependencies.
func NewAuditHandler(
	auditUseCase auditUseCase.AuditUseCase,
	logger *slog.Logger,
) *AuditHandler {
	return &AuditHandler{
		auditUseCase: auditUseCase,
		logger:       logger,
	}
}

// SummaryHandler aggregates event counts with the live auth-layer gauges.
// GET /v1/audit/summary - Requires authentication.
// Returns 200 OK with per-type counts, blocked addresses and active rate
// buckets.
func (h *AuditHandler) SummaryHandler(c *gin.Context) {
	summary := h.auditUseCase.Summary(c.Request.Context())
	c.JSON(http.StatusOK, dto.MapSummaryToResponse(summary))
}

// ListEventsHandler returns recent security events, newest first.
// GET /v1/audit/events?limit=50 - Requires admin tier.
// Returns 200 OK with up to limit ring events.
func (h *AuditHandler) ListEventsHandler(c *gin.Context) {
	limit, err := httputil.ParseLimit(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	events := h.auditUseCase.Recent(limit)
	c.JSON(http.StatusOK, dto.MapEventsToListResponse(events))
}
