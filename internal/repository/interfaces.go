package repository

import (
	"context"

	"github.com/getmentor/course-feedback-api/internal/feedback"
)

// SubmissionRepositoryInterface defines the submission store used by services
type SubmissionRepositoryInterface interface {
	// Append adds a confirmed form to the end of the collection
	Append(ctx context.Context, record feedback.FormState) error

	// List returns every stored submission in submission order
	List(ctx context.Context) ([]feedback.FormState, error)
}
