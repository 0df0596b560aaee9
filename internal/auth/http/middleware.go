// Package http provides HTTP middleware and handlers for session
// authentication.
package http

import (
	"log/slog"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authDomain "github.com/parsivoice/pasban/internal/auth/domain"
	authUseCase "github.com/parsivoice/pasban/internal/auth/usecase"
	apperrors "github.com/parsivoice/pasban/internal/errors"
	"github.com/parsivoice/pasban/internal/httputil"
)

// AuthenticationMiddleware provides authentication via Bearer session token
// in the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Validates the token using sessionUseCase.Authenticate()
// 3. Stores the decoded session claims in the request context
// 4. Allows downstream handlers to access the claims via GetClaims()
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer")
//
// Error handling:
//   - Missing Authorization header → 401 Unauthorized
//   - Malformed Authorization header → 401 Unauthorized
//   - Invalid/expired/tampered token → 401 Unauthorized (from Authenticate)
//   - Source address blocked after repeated tampering → 423 Locked
//   - Other errors → 500 Internal Server Error
//
// Usage:
//
//	router.Use(AuthenticationMiddleware(sessionUseCase, logger))
//	router.GET("/protected", func(c *gin.Context) {
//	    claims, ok := GetClaims(c.Request.Context())
//	    if !ok {
//	        // Should never happen if middleware is working correctly
//	        c.JSON(401, gin.H{"error": "unauthorized"})
//	        return
//	    }
//	    // Use claims for permission checks
//	})
func AuthenticationMiddleware(
	sessionUseCase authUseCase.SessionUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainToken := authHeader[len(bearerPrefix):]
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Validate the token into session claims
		claims, err := sessionUseCase.Authenticate(
			c.Request.Context(),
			plainToken,
			c.ClientIP(),
			requestid.Get(c),
		)
		if err != nil {
			logger.Debug("authentication failed",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		// Store authenticated claims in context
		ctx := WithClaims(c.Request.Context(), claims)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("subject", claims.Subject),
			slog.String("tier", string(claims.Tier)))

		// Continue to next handler
		c.Next()
	}
}

// RequireTierMiddleware restricts a route to callers of a specific tier.
//
// This middleware MUST be used after AuthenticationMiddleware, as it requires
// authenticated session claims to be present in the request context. Tier is
// carried inside the signed token, so the check needs no extra lookup.
//
// Error handling:
//   - No claims in context → 401 Unauthorized (AuthenticationMiddleware not run)
//   - Caller's tier does not match → 403 Forbidden
//
// Usage:
//
//	// Admin-only route
//	router.POST("/v1/permissions/:name/grant",
//	    RequireTierMiddleware(authDomain.TierAdmin, logger),
//	    handler)
func RequireTierMiddleware(
	tier authDomain.Tier,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Retrieve authenticated claims from context
		claims, ok := GetClaims(c.Request.Context())
		if !ok {
			logger.Debug("tier check failed: no authenticated session in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if claims.Tier != tier {
			logger.Debug("tier check failed: insufficient tier",
				slog.String("subject", claims.Subject),
				slog.String("tier", string(claims.Tier)),
				slog.String("required", string(tier)))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		logger.Debug("tier check successful",
			slog.String("subject", claims.Subject),
			slog.String("tier", string(claims.Tier)))

		// Continue to next handler
		c.Next()
	}
}
