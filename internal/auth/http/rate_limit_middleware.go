// Package http provides HTTP middleware and handlers for session
// authentication.
package http

import (
	"log/slog"
	"strconv"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authUseCase "github.com/parsivoice/pasban/internal/auth/usecase"
	apperrors "github.com/parsivoice/pasban/internal/errors"
	"github.com/parsivoice/pasban/internal/httputil"
)

// RateLimitMiddleware enforces the per-caller sliding-window rate limit on
// authenticated requests.
//
// MUST be used after AuthenticationMiddleware (requires session claims in
// context). The window and limit come from the caller's tier profile, so a
// demo session and an admin session see different budgets on the same route.
// Every response carries the limit headers, admitted or not:
//
//	X-RateLimit-Limit:     requests allowed per window
//	X-RateLimit-Remaining: requests left in the current window
//	X-RateLimit-Reset:     Unix time when the oldest in-window request expires
//
// Returns:
//   - 429 Too Many Requests: limit exceeded (includes Retry-After header)
//   - Continues: request admitted
func RateLimitMiddleware(
	sessionUseCase authUseCase.SessionUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get authenticated claims from context
		claims, ok := GetClaims(c.Request.Context())
		if !ok {
			// Should never happen - authentication middleware should have caught this
			logger.Error("rate limit middleware: no authenticated session in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		result, err := sessionUseCase.CheckRate(
			c.Request.Context(),
			claims,
			c.ClientIP(),
			requestid.Get(c),
		)

		// Limit headers are set on rejections too, so throttled clients can
		// see their budget.
		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining()))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime.Unix(), 10))

		if err != nil {
			logger.Debug("rate limit exceeded",
				slog.String("subject", claims.Subject),
				slog.String("tier", string(claims.Tier)),
				slog.Int("limit", result.Limit))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		// Request allowed, continue
		c.Next()
	}
}
