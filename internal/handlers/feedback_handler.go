package handlers

import (
	"errors"
	"html"
	"net/http"

	"github.com/getmentor/course-feedback-api/internal/feedback"
	"github.com/getmentor/course-feedback-api/internal/models"
	"github.com/getmentor/course-feedback-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// FeedbackHandler handles course feedback form HTTP requests
type FeedbackHandler struct {
	service services.FeedbackServiceInterface
	policy  *bluemonday.Policy
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(service services.FeedbackServiceInterface) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		policy:  bluemonday.StrictPolicy(),
	}
}

// StartSession handles POST /api/v1/forms
func (h *FeedbackHandler) StartSession(c *gin.Context) {
	c.JSON(http.StatusCreated, h.service.StartSession(c.Request.Context()))
}

// GetForm handles GET /api/v1/forms/:sessionId
func (h *FeedbackHandler) GetForm(c *gin.Context) {
	view, err := h.service.GetForm(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetField handles PUT /api/v1/forms/:sessionId/fields/:field
func (h *FeedbackHandler) SetField(c *gin.Context) {
	var req models.SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	field := feedback.Field(c.Param("field"))
	view, err := h.service.SetField(c.Request.Context(), c.Param("sessionId"), field, req.Value)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ToggleWorkedWell handles POST /api/v1/forms/:sessionId/worked-well
func (h *FeedbackHandler) ToggleWorkedWell(c *gin.Context) {
	var req models.ToggleOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationFailed(c, err)
		return
	}

	view, err := h.service.ToggleWorkedWell(c.Request.Context(), c.Param("sessionId"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Submit handles POST /api/v1/forms/:sessionId/submit
func (h *FeedbackHandler) Submit(c *gin.Context) {
	resp, err := h.service.Submit(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		if errors.Is(err, services.ErrFormIncomplete) && resp != nil {
			respondFormIncomplete(c, resp, err)
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirm handles POST /api/v1/forms/:sessionId/confirm
func (h *FeedbackHandler) Confirm(c *gin.Context) {
	resp, err := h.service.Confirm(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel handles POST /api/v1/forms/:sessionId/cancel
func (h *FeedbackHandler) Cancel(c *gin.Context) {
	view, err := h.service.Cancel(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListSubmissions handles GET /api/v1/submissions.
// Free-text values are stripped of markup before they leave the service.
func (h *FeedbackHandler) ListSubmissions(c *gin.Context) {
	resp, err := h.service.ListSubmissions(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]feedback.FormState, 0, len(resp.Submissions))
	for _, s := range resp.Submissions {
		out = append(out, h.sanitize(s))
	}
	c.JSON(http.StatusOK, models.SubmissionsResponse{
		Total:       resp.Total,
		Submissions: out,
	})
}

// sanitize strips markup from free-text values. The policy escapes the text
// it keeps, which is undone so plain characters such as & and ' survive.
func (h *FeedbackHandler) sanitize(s feedback.FormState) feedback.FormState {
	s = s.Clone()
	s.Name = h.stripMarkup(s.Name)
	s.Email = h.stripMarkup(s.Email)
	s.Instructor = h.stripMarkup(s.Instructor)
	s.Comments = h.stripMarkup(s.Comments)
	return s
}

func (h *FeedbackHandler) stripMarkup(v string) string {
	return html.UnescapeString(h.policy.Sanitize(v))
}
