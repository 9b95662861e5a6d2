package models

import (
	"github.com/getmentor/course-feedback-api/internal/catalog"
	"github.com/getmentor/course-feedback-api/internal/feedback"
)

// FormView is everything the UI needs to render one feedback form
type FormView struct {
	SessionID string             `json:"sessionId"`
	State     feedback.FormState `json:"state"`
	Errors    feedback.ErrorMap  `json:"errors"`
	Progress  float64            `json:"progress"`
	Valid     bool               `json:"valid"`
	Phase     feedback.Phase     `json:"phase"`
	Options   *catalog.Catalog   `json:"options,omitempty"`
}

// SetFieldRequest carries a new value for one field. Value may be a string,
// number, boolean, list of strings or null depending on the field.
type SetFieldRequest struct {
	Value any `json:"value"`
}

// ToggleOptionRequest adds or removes one "what worked well" tag
type ToggleOptionRequest struct {
	Option   string `json:"option" binding:"required,oneof=Lectures Labs Assignments Projects Others"`
	Included *bool  `json:"included" binding:"required"`
}

// SubmitResponse reports whether the confirmation step opened
type SubmitResponse struct {
	Ready bool     `json:"ready"`
	Form  FormView `json:"form"`
}

// ConfirmResponse is returned after a submission has been stored
type ConfirmResponse struct {
	Success    bool               `json:"success"`
	Submission feedback.FormState `json:"submission"`
	Form       FormView           `json:"form"`
}

// SubmissionsResponse lists stored submissions
type SubmissionsResponse struct {
	Total       int                  `json:"total"`
	Submissions []feedback.FormState `json:"submissions"`
}
