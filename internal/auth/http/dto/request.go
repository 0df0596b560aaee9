// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/parsivoice/pasban/internal/validation"
)

// IssueSessionRequest contains the credential presented for a session token.
type IssueSessionRequest struct {
	Key string `json:"key"`
}

// Validate checks if the issue session request is valid.
func (r *IssueSessionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 512),
		),
	)
}
