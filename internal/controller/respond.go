package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/acadlabs/assessment-engine/internal/dto"
	apperrors "github.com/acadlabs/assessment-engine/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RespondError maps service errors onto HTTP status codes so handlers do not
// repeat the taxonomy. Validation failures carry per-field details; everything
// unrecognized is a 500 with the detail logged rather than leaked.
func RespondError(c *gin.Context, err error) {
	var fieldErr *apperrors.ValidationError
	if errors.As(err, &fieldErr) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Message: "Validation failed",
			Fields:  apperrors.ValidationErrors{*fieldErr},
		})
		return
	}
	var fieldErrs apperrors.ValidationErrors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Message: "Validation failed",
			Fields:  fieldErrs,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidToken), errors.Is(err, apperrors.ErrInactiveUser), errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Authentication required"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Message: "You do not have permission to perform this action"})
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrExamNotFound),
		errors.Is(err, apperrors.ErrQuestionNotFound),
		errors.Is(err, apperrors.ErrSubmissionNotFound),
		errors.Is(err, apperrors.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperrors.ErrDuplicateSubmission), errors.Is(err, apperrors.ErrDuplicateUser):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled service error")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
	}
}

// ParseIDParam reads a positive integer path parameter; a false return means a
// 400 has already been written.
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	idStr := c.Param(name)
	id, err := parseUint(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return id, true
}

// ParseQueryUint parses an already-extracted query parameter value; a false
// return means a 400 has already been written.
func ParseQueryUint(c *gin.Context, name, value string) (uint, bool) {
	id, err := parseUint(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return id, true
}

func parseUint(s string) (uint, error) {
	val, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(val), nil
}
