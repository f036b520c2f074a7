package dto

import apperrors "github.com/acadlabs/assessment-engine/internal/errors"

type ErrorResponse struct {
	Message string                     `json:"message"`
	Details []string                   `json:"details,omitempty"`
	Fields  apperrors.ValidationErrors `json:"fields,omitempty"`
}
