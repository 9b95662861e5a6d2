package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/getmentor/course-feedback-api/internal/catalog"
	"github.com/getmentor/course-feedback-api/internal/feedback"
	"github.com/getmentor/course-feedback-api/internal/models"
	"github.com/getmentor/course-feedback-api/internal/services"
	apperrors "github.com/getmentor/course-feedback-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var testComments = strings.Repeat("The labs were hands-on and useful. ", 2)

func newService(repo *MockSubmissionRepository) *services.FeedbackService {
	return services.NewFeedbackService(repo, catalog.Default(), time.Hour)
}

func fillForm(t *testing.T, svc *services.FeedbackService, sessionID string) {
	t.Helper()
	ctx := context.Background()
	values := map[feedback.Field]any{
		feedback.FieldName:       "Asha",
		feedback.FieldEmail:      "asha@example.com",
		feedback.FieldCourse:     "DBMS",
		feedback.FieldInstructor: "Prof. Iyer",
		feedback.FieldRecommend:  "Yes",
		feedback.FieldRating:     float64(5),
		feedback.FieldComments:   testComments,
		feedback.FieldConsent:    true,
	}
	for field, value := range values {
		_, err := svc.SetField(ctx, sessionID, field, value)
		require.NoError(t, err, field)
	}
}

func TestFeedbackService_StartSession(t *testing.T) {
	svc := newService(new(MockSubmissionRepository))

	view := svc.StartSession(context.Background())

	require.NotNil(t, view)
	assert.NotEmpty(t, view.SessionID)
	assert.Equal(t, float64(0), view.Progress)
	assert.False(t, view.Valid)
	assert.Equal(t, feedback.PhaseEditing, view.Phase)
	assert.Empty(t, view.Errors)
	require.NotNil(t, view.Options)
	assert.Equal(t, catalog.Default().Courses, view.Options.Courses)
	require.NotNil(t, view.State.Pace)
	assert.Equal(t, feedback.DefaultPace, *view.State.Pace)
}

func TestFeedbackService_UnknownSession(t *testing.T) {
	svc := newService(new(MockSubmissionRepository))
	ctx := context.Background()

	_, err := svc.GetForm(ctx, "nope")
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = svc.SetField(ctx, "nope", feedback.FieldName, "Al")
	assert.ErrorIs(t, err, services.ErrSessionNotFound)

	_, err = svc.Confirm(ctx, "nope")
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
}

func TestFeedbackService_SetField(t *testing.T) {
	svc := newService(new(MockSubmissionRepository))
	ctx := context.Background()
	id := svc.StartSession(ctx).SessionID

	view, err := svc.SetField(ctx, id, feedback.FieldName, "A")
	require.NoError(t, err)
	assert.Equal(t, feedback.MsgMinName, view.Errors[feedback.FieldName])
	assert.Nil(t, view.Options)

	view, err = svc.SetField(ctx, id, feedback.FieldName, "Al")
	require.NoError(t, err)
	assert.NotContains(t, view.Errors, feedback.FieldName)
	assert.InDelta(t, 200.0/9.0, view.Progress, 0.001)
}

func TestFeedbackService_SetFieldErrors(t *testing.T) {
	svc := newService(new(MockSubmissionRepository))
	ctx := context.Background()
	id := svc.StartSession(ctx).SessionID

	tests := []struct {
		name   string
		field  feedback.Field
		value  any
		kind   error
		engine error
	}{
		{name: "unknown field", field: "age", value: "20", kind: apperrors.ErrNotFound, engine: feedback.ErrUnknownField},
		{name: "rating out of range", field: feedback.FieldRating, value: float64(9), kind: apperrors.ErrInvalidInput, engine: feedback.ErrInvalidValue},
		{name: "wrong type", field: feedback.FieldConsent, value: "yes", kind: apperrors.ErrInvalidInput, engine: feedback.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetField(ctx, id, tt.field, tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.ErrorIs(t, err, tt.engine)
		})
	}

	view, err := svc.GetForm(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, float64(0), view.Progress)
}

func TestFeedbackService_ToggleWorkedWell(t *testing.T) {
	svc := newService(new(MockSubmissionRepository))
	ctx := context.Background()
	id := svc.StartSession(ctx).SessionID
	yes, no := true, false

	view, err := svc.ToggleWorkedWell(ctx, id, &models.ToggleOptionRequest{Option: "Labs", Included: &yes})
	require.NoError(t, err)
	assert.Equal(t, []string{"Labs"}, view.State.WorkedWell)

	view, err = svc.ToggleWorkedWell(ctx, id, &models.ToggleOptionRequest{Option: "Projects", Included: &yes})
	require.NoError(t, err)
	assert.Equal(t, []string{"Labs", "Projects"}, view.State.WorkedWell)

	view, err = svc.ToggleWorkedWell(ctx, id, &models.ToggleOptionRequest{Option: "Labs", Included: &no})
	require.NoError(t, err)
	assert.Equal(t, []string{"Projects"}, view.State.WorkedWell)

	_, err = svc.ToggleWorkedWell(ctx, id, &models.ToggleOptionRequest{Option: "Canteen", Included: &yes})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestFeedbackService_RejectedUpdatesAreLogged(t *testing.T) {
	svc := newService(new(MockSubmissionRepository))
	ctx := context.Background()
	id := svc.StartSession(ctx).SessionID
	logs := captureLogs(t)
	yes := true

	tests := []struct {
		name   string
		field  string
		update func() error
	}{
		{
			name:  "set field",
			field: string(feedback.FieldRating),
			update: func() error {
				_, err := svc.SetField(ctx, id, feedback.FieldRating, float64(9))
				return err
			},
		},
		{
			name:  "toggle worked well",
			field: string(feedback.FieldWorkedWell),
			update: func() error {
				_, err := svc.ToggleWorkedWell(ctx, id, &models.ToggleOptionRequest{Option: "Canteen", Included: &yes})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := rejectedUpdates(tt.field)

			require.Error(t, tt.update())

			assert.Equal(t, before+1, rejectedUpdates(tt.field))
			entries := logs.FilterMessage("Field update rejected").FilterField(zap.String("field", tt.field)).AllUntimed()
			require.Len(t, entries, 1)
			assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
			assert.Equal(t, id, entries[0].ContextMap()["session_id"])
		})
	}
}

func TestFeedbackService_SubmitIncomplete(t *testing.T) {
	svc := newService(new(MockSubmissionRepository))
	ctx := context.Background()
	id := svc.StartSession(ctx).SessionID
	_, err := svc.SetField(ctx, id, feedback.FieldEmail, "bad")
	require.NoError(t, err)

	resp, err := svc.Submit(ctx, id)
	assert.ErrorIs(t, err, services.ErrFormIncomplete)
	require.NotNil(t, resp)
	assert.False(t, resp.Ready)
	assert.Equal(t, feedback.PhaseEditing, resp.Form.Phase)
	assert.Equal(t, feedback.MsgInvalidEmail, resp.Form.Errors[feedback.FieldEmail])
}

func TestFeedbackService_SubmitConfirm(t *testing.T) {
	repo := new(MockSubmissionRepository)
	svc := newService(repo)
	ctx := context.Background()
	id := svc.StartSession(ctx).SessionID
	fillForm(t, svc, id)

	resp, err := svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.True(t, resp.Ready)
	assert.Equal(t, feedback.PhaseReadyToConfirm, resp.Form.Phase)
	assert.Equal(t, float64(100), resp.Form.Progress)

	_, err = svc.SetField(ctx, id, feedback.FieldName, "Changed")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.ErrorIs(t, err, feedback.ErrAwaitingConfirmation)

	repo.On("Append", mock.Anything, mock.MatchedBy(func(r feedback.FormState) bool {
		return r.Name == "Asha" && r.Course == "DBMS" && r.Consent
	})).Return(nil).Once()

	confirmed, err := svc.Confirm(ctx, id)
	require.NoError(t, err)
	assert.True(t, confirmed.Success)
	assert.Equal(t, "Asha", confirmed.Submission.Name)
	assert.Equal(t, feedback.PhaseEditing, confirmed.Form.Phase)
	assert.Equal(t, "", confirmed.Form.State.Name)
	assert.Equal(t, float64(0), confirmed.Form.Progress)

	repo.AssertExpectations(t)
}

func TestFeedbackService_ConfirmNotReady(t *testing.T) {
	repo := new(MockSubmissionRepository)
	svc := newService(repo)
	ctx := context.Background()
	id := svc.StartSession(ctx).SessionID

	_, err := svc.Confirm(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.ErrorIs(t, err, feedback.ErrNotReady)
	repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestFeedbackService_ConfirmStoreFailureKeepsData(t *testing.T) {
	repo := new(MockSubmissionRepository)
	svc := newService(repo)
	ctx := context.Background()
	id := svc.StartSession(ctx).SessionID
	fillForm(t, svc, id)
	_, err := svc.Submit(ctx, id)
	require.NoError(t, err)

	repo.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	_, err = svc.Confirm(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	view, err := svc.GetForm(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, feedback.PhaseReadyToConfirm, view.Phase)
	assert.Equal(t, "Asha", view.State.Name)

	repo.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	_, err = svc.Confirm(ctx, id)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestFeedbackService_Cancel(t *testing.T) {
	svc := newService(new(MockSubmissionRepository))
	ctx := context.Background()
	id := svc.StartSession(ctx).SessionID
	fillForm(t, svc, id)
	_, err := svc.Submit(ctx, id)
	require.NoError(t, err)

	view, err := svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, feedback.PhaseEditing, view.Phase)
	assert.Equal(t, "Asha", view.State.Name)
	assert.Equal(t, float64(100), view.Progress)

	_, err = svc.SetField(ctx, id, feedback.FieldName, "Asha K")
	assert.NoError(t, err)
}

func TestFeedbackService_ListSubmissions(t *testing.T) {
	repo := new(MockSubmissionRepository)
	svc := newService(repo)
	ctx := context.Background()

	stored := []feedback.FormState{feedback.DefaultFormState()}
	repo.On("List", ctx).Return(stored, nil).Once()

	resp, err := svc.ListSubmissions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, stored, resp.Submissions)

	repo.On("List", ctx).Return(nil, errors.New("connection refused")).Once()
	_, err = svc.ListSubmissions(ctx)
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	repo.AssertExpectations(t)
}
