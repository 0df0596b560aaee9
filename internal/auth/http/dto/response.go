// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	authUseCase "github.com/parsivoice/pasban/internal/auth/usecase"
)

// IssueSessionResponse contains the result of issuing a session token.
// SECURITY: The token is only returned once and must be saved securely.
type IssueSessionResponse struct {
	Token     string    `json:"token"`
	Tier      string    `json:"tier"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapSessionToResponse converts an issued session to an API response.
func MapSessionToResponse(session authUseCase.Session) IssueSessionResponse {
	return IssueSessionResponse{
		Token:     session.Token,
		Tier:      string(session.Claims.Tier),
		ExpiresAt: time.Unix(session.Claims.ExpiresAt, 0).UTC(),
	}
}
