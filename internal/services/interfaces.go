package services

import (
	"context"

	"github.com/getmentor/course-feedback-api/internal/feedback"
	"github.com/getmentor/course-feedback-api/internal/models"
)

// FeedbackServiceInterface defines the interface for feedback form operations
type FeedbackServiceInterface interface {
	StartSession(ctx context.Context) *models.FormView
	GetForm(ctx context.Context, sessionID string) (*models.FormView, error)
	SetField(ctx context.Context, sessionID string, field feedback.Field, value any) (*models.FormView, error)
	ToggleWorkedWell(ctx context.Context, sessionID string, req *models.ToggleOptionRequest) (*models.FormView, error)
	Submit(ctx context.Context, sessionID string) (*models.SubmitResponse, error)
	Confirm(ctx context.Context, sessionID string) (*models.ConfirmResponse, error)
	Cancel(ctx context.Context, sessionID string) (*models.FormView, error)
	ListSubmissions(ctx context.Context) (*models.SubmissionsResponse, error)
}

var _ FeedbackServiceInterface = (*FeedbackService)(nil)
