// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	permissionDomain "github.com/parsivoice/pasban/internal/permission/domain"
)

// GrantResponse represents a permission grant state in API responses.
type GrantResponse struct {
	Name    string `json:"name"`
	Granted bool   `json:"granted"`
}

// MapGrantToResponse converts a domain grant to an API response.
func MapGrantToResponse(grant permissionDomain.Grant) GrantResponse {
	return GrantResponse{
		Name:    grant.Name,
		Granted: grant.Granted,
	}
}
