package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getmentor/course-feedback-api/internal/cache"
	"github.com/getmentor/course-feedback-api/internal/catalog"
	"github.com/getmentor/course-feedback-api/internal/feedback"
	"github.com/getmentor/course-feedback-api/internal/models"
	"github.com/getmentor/course-feedback-api/internal/repository"
	apperrors "github.com/getmentor/course-feedback-api/pkg/errors"
	"github.com/getmentor/course-feedback-api/pkg/logger"
	"github.com/getmentor/course-feedback-api/pkg/metrics"
	"github.com/getmentor/course-feedback-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = apperrors.NotFoundError("feedback session")
	ErrFormIncomplete  = errors.New("form is incomplete or has errors")
)

// FeedbackService drives one feedback engine per browser session
type FeedbackService struct {
	sessions *cache.SessionCache
	repo     repository.SubmissionRepositoryInterface
	catalog  catalog.Catalog
}

// NewFeedbackService creates a new feedback service instance.
// Idle sessions are dropped after sessionTTL.
func NewFeedbackService(repo repository.SubmissionRepositoryInterface, cat catalog.Catalog, sessionTTL time.Duration) *FeedbackService {
	s := &FeedbackService{
		repo:    repo,
		catalog: cat,
	}
	s.sessions = cache.NewSessionCache(sessionTTL, func() *feedback.Engine {
		return feedback.New(repo, feedback.WithSubmitListener(recordSubmission))
	})
	return s
}

func recordSubmission(record feedback.FormState) {
	metrics.FeedbackSubmissions.WithLabelValues("success", record.Course).Inc()
}

// StartSession opens a blank form
func (s *FeedbackService) StartSession(_ context.Context) *models.FormView {
	session := s.sessions.Create()
	metrics.FeedbackSessionsStarted.Inc()
	logger.Info("Feedback session started", zap.String("session_id", session.ID))

	var view *models.FormView
	_ = session.Do(func(e *feedback.Engine) error {
		view = s.view(session.ID, e, true)
		return nil
	})
	return view
}

// GetForm returns the current state of a session's form
func (s *FeedbackService) GetForm(_ context.Context, sessionID string) (*models.FormView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	var view *models.FormView
	_ = session.Do(func(e *feedback.Engine) error {
		view = s.view(sessionID, e, true)
		return nil
	})
	return view, nil
}

// SetField stores one field value
func (s *FeedbackService) SetField(_ context.Context, sessionID string, field feedback.Field, value any) (*models.FormView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	var view *models.FormView
	err = session.Do(func(e *feedback.Engine) error {
		if err := e.SetField(field, value); err != nil {
			return err
		}
		view = s.view(sessionID, e, false)
		return nil
	})
	if err != nil {
		metrics.FeedbackFieldUpdates.WithLabelValues(fieldLabel(field), "rejected").Inc()
		logger.Debug("Field update rejected",
			zap.String("session_id", sessionID),
			zap.String("field", string(field)),
			zap.Error(err))
		return nil, classify(err)
	}

	status := "valid"
	if _, bad := view.Errors[field]; bad {
		status = "invalid"
	}
	metrics.FeedbackFieldUpdates.WithLabelValues(string(field), status).Inc()
	return view, nil
}

// ToggleWorkedWell adds or removes one "what worked well" tag
func (s *FeedbackService) ToggleWorkedWell(_ context.Context, sessionID string, req *models.ToggleOptionRequest) (*models.FormView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	included := req.Included != nil && *req.Included
	var view *models.FormView
	err = session.Do(func(e *feedback.Engine) error {
		if err := e.ToggleOption(req.Option, included); err != nil {
			return err
		}
		view = s.view(sessionID, e, false)
		return nil
	})
	if err != nil {
		metrics.FeedbackFieldUpdates.WithLabelValues(string(feedback.FieldWorkedWell), "rejected").Inc()
		logger.Debug("Field update rejected",
			zap.String("session_id", sessionID),
			zap.String("field", string(feedback.FieldWorkedWell)),
			zap.String("option", req.Option),
			zap.Error(err))
		return nil, classify(err)
	}

	metrics.FeedbackFieldUpdates.WithLabelValues(string(feedback.FieldWorkedWell), "valid").Inc()
	return view, nil
}

// Submit opens the confirmation step. When the form cannot be submitted the
// current view is returned together with ErrFormIncomplete.
func (s *FeedbackService) Submit(_ context.Context, sessionID string) (*models.SubmitResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	var resp models.SubmitResponse
	_ = session.Do(func(e *feedback.Engine) error {
		metrics.FeedbackProgressAtSubmit.Observe(e.Progress())
		resp.Ready = e.Submit()
		resp.Form = *s.view(sessionID, e, false)
		return nil
	})

	if !resp.Ready {
		metrics.FeedbackSubmitAttempts.WithLabelValues("invalid").Inc()
		logger.Info("Feedback submit rejected",
			zap.String("session_id", sessionID),
			zap.Float64("progress", resp.Form.Progress),
			zap.Int("error_count", len(resp.Form.Errors)))
		return &resp, ErrFormIncomplete
	}

	metrics.FeedbackSubmitAttempts.WithLabelValues("ready").Inc()
	return &resp, nil
}

// Confirm stores the submitted form and resets the session for a new entry
func (s *FeedbackService) Confirm(ctx context.Context, sessionID string) (*models.ConfirmResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "FeedbackService.Confirm")
	defer span.End()
	span.SetAttributes(attribute.String("feedback.session_id", sessionID))

	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var resp models.ConfirmResponse
	err = session.Do(func(e *feedback.Engine) error {
		record, err := e.Confirm(ctx)
		if err != nil {
			return err
		}
		resp.Success = true
		resp.Submission = record
		resp.Form = *s.view(sessionID, e, false)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !errors.Is(err, feedback.ErrNotReady) {
			metrics.FeedbackSubmissions.WithLabelValues("error", "").Inc()
			logger.Error("Failed to store feedback submission",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
		return nil, classify(err)
	}

	metrics.FeedbackConfirmDuration.Observe(metrics.MeasureDuration(start))
	span.SetAttributes(attribute.String("feedback.course", resp.Submission.Course))
	logger.Info("Feedback submitted",
		zap.String("session_id", sessionID),
		zap.String("course", resp.Submission.Course),
		zap.Int("rating", resp.Submission.Rating),
		zap.Duration("duration", time.Since(start)))

	return &resp, nil
}

// Cancel closes the confirmation step and keeps the entered data
func (s *FeedbackService) Cancel(_ context.Context, sessionID string) (*models.FormView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	var view *models.FormView
	_ = session.Do(func(e *feedback.Engine) error {
		e.Cancel()
		view = s.view(sessionID, e, false)
		return nil
	})
	return view, nil
}

// ListSubmissions returns every stored submission in insertion order
func (s *FeedbackService) ListSubmissions(ctx context.Context) (*models.SubmissionsResponse, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		logger.Error("Failed to list feedback submissions", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInternal, err)
	}
	return &models.SubmissionsResponse{
		Total:       len(records),
		Submissions: records,
	}, nil
}

func (s *FeedbackService) session(id string) (*cache.Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *FeedbackService) view(sessionID string, e *feedback.Engine, withOptions bool) *models.FormView {
	v := &models.FormView{
		SessionID: sessionID,
		State:     e.State(),
		Errors:    e.Errors(),
		Progress:  e.Progress(),
		Valid:     e.IsValid(),
		Phase:     e.Phase(),
	}
	if withOptions {
		c := s.catalog
		v.Options = &c
	}
	return v
}

// classify tags engine errors with the application error kind the handlers map to status codes
func classify(err error) error {
	switch {
	case errors.Is(err, feedback.ErrUnknownField):
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, err)
	case errors.Is(err, feedback.ErrInvalidValue):
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	case errors.Is(err, feedback.ErrAwaitingConfirmation), errors.Is(err, feedback.ErrNotReady):
		return fmt.Errorf("%w: %w", apperrors.ErrConflict, err)
	default:
		return fmt.Errorf("%w: %w", apperrors.ErrInternal, err)
	}
}

// fieldLabel keeps the metric label set bounded
func fieldLabel(field feedback.Field) string {
	if feedback.IsKnownField(field) {
		return string(field)
	}
	return "unknown"
}
