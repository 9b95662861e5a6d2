package services_test

import (
	"context"

	"github.com/getmentor/course-feedback-api/internal/feedback"
	"github.com/stretchr/testify/mock"
)

// MockSubmissionRepository is a mock implementation of SubmissionRepositoryInterface
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Append(ctx context.Context, record feedback.FormState) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSubmissionRepository) List(ctx context.Context) ([]feedback.FormState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]feedback.FormState), args.Error(1)
}
