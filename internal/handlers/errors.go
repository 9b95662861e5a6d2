package handlers

import (
	"errors"
	"net/http"

	"github.com/getmentor/course-feedback-api/internal/feedback"
	"github.com/getmentor/course-feedback-api/internal/models"
	"github.com/getmentor/course-feedback-api/internal/services"
	apperrors "github.com/getmentor/course-feedback-api/pkg/errors"
	"github.com/gin-gonic/gin"
)

// incompleteFormResponse is the 422 body of a rejected submit. The form view
// stays at the top level so clients can re-render from the same payload.
type incompleteFormResponse struct {
	Error   string            `json:"error"`
	Details []ValidationError `json:"details"`
	models.SubmitResponse
}

// attachError records err on the gin context so the access log carries it.
// c.Error returns *gin.Error, which callers have no use for.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError writes {"error": message} with status and attaches err for logging
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondValidationFailed answers a request body that failed binding
func respondValidationFailed(c *gin.Context, err error) {
	attachError(c, err)
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Validation failed",
		"details": ParseValidationErrors(err),
	})
}

// respondFormIncomplete answers a submit the engine refused
func respondFormIncomplete(c *gin.Context, resp *models.SubmitResponse, err error) {
	attachError(c, err)
	c.JSON(http.StatusUnprocessableEntity, incompleteFormResponse{
		Error:          "Form is incomplete",
		Details:        fieldErrors(resp.Form.Errors),
		SubmitResponse: *resp,
	})
}

// fieldErrors lists inline form errors in display order
func fieldErrors(errs feedback.ErrorMap) []ValidationError {
	out := make([]ValidationError, 0, len(errs))
	for _, f := range feedback.AllFields {
		if msg, ok := errs[f]; ok {
			out = append(out, ValidationError{Field: string(f), Message: msg})
		}
	}
	return out
}

// respondServiceError maps a service error onto its HTTP status
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, "Session not found", err)
	case apperrors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error(), err)
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error(), err)
	case apperrors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, err.Error(), err)
	default:
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
