package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/apperrors"
	"github.com/planora-ai/planora-engine/pkg/models"
)

func TestCourseCreateUsesSuppliedSemester(t *testing.T) {
	semesterID := uuid.New()
	semesters := &mockSemesterRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Semester, error) {
			return &models.Semester{ID: id}, nil
		},
	}
	svc := NewCourseService(&mockCourseRepo{}, semesters, zap.NewNop())

	payload := json.RawMessage(`{"name":"Linear Algebra","semester_id":"` + semesterID.String() + `"}`)
	result, err := svc.Create(context.Background(), payload)
	require.NoError(t, err)

	course := result.Data.(*models.Course)
	assert.Equal(t, semesterID, course.SemesterID)
	assert.Zero(t, semesters.CreateCalls)
}

func TestCourseCreateRejectsUnknownSuppliedSemester(t *testing.T) {
	svc := NewCourseService(&mockCourseRepo{}, &mockSemesterRepo{}, zap.NewNop())

	payload := json.RawMessage(`{"name":"Linear Algebra","semester_id":"` + uuid.NewString() + `"}`)
	_, err := svc.Create(context.Background(), payload)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCourseCreateUsesCurrentSemester(t *testing.T) {
	semesterID := uuid.New()
	semesters := &mockSemesterRepo{
		GetCurrentFunc: func(ctx context.Context, day time.Time) (*models.Semester, error) {
			return &models.Semester{ID: semesterID}, nil
		},
	}
	svc := NewCourseService(&mockCourseRepo{}, semesters, zap.NewNop())

	result, err := svc.Create(context.Background(), json.RawMessage(`{"name":"Linear Algebra"}`))
	require.NoError(t, err)

	course := result.Data.(*models.Course)
	assert.Equal(t, semesterID, course.SemesterID)
	assert.Zero(t, semesters.CreateCalls)
}

func TestCourseCreateLazilyCreatesSemester(t *testing.T) {
	semesters := &mockSemesterRepo{}
	svc := NewCourseService(&mockCourseRepo{}, semesters, zap.NewNop())

	result, err := svc.Create(context.Background(), json.RawMessage(`{"name":"Linear Algebra"}`))
	require.NoError(t, err)

	require.Equal(t, 1, semesters.CreateCalls)
	created := semesters.LastCreated
	require.NotNil(t, created)
	assert.Equal(t, float64(defaultSemesterDays), created.EndDate.Sub(created.StartDate).Hours()/24)
	assert.NotEmpty(t, created.Name)

	// The lazy choice is observable on the returned course.
	course := result.Data.(*models.Course)
	assert.Equal(t, created.ID, course.SemesterID)
}

func TestCourseUpdateVerifiesNewSemester(t *testing.T) {
	id := uuid.New()
	repo := &mockCourseRepo{
		GetByIDFunc: func(ctx context.Context, gotID uuid.UUID) (*models.Course, error) {
			return &models.Course{ID: gotID, IsActive: true}, nil
		},
	}
	svc := NewCourseService(repo, &mockSemesterRepo{}, zap.NewNop())

	payload := json.RawMessage(`{"id":"` + id.String() + `","semester_id":"` + uuid.NewString() + `"}`)
	_, err := svc.Update(context.Background(), payload)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCourseDeleteIsSoft(t *testing.T) {
	id := uuid.New()
	var deactivated bool
	repo := &mockCourseRepo{
		GetByIDFunc: func(ctx context.Context, gotID uuid.UUID) (*models.Course, error) {
			return &models.Course{ID: gotID, IsActive: true}, nil
		},
		DeactivateFunc: func(ctx context.Context, gotID uuid.UUID) (*models.Course, error) {
			deactivated = true
			return &models.Course{ID: gotID, IsActive: false}, nil
		},
	}
	svc := NewCourseService(repo, &mockSemesterRepo{}, zap.NewNop())

	payload := json.RawMessage(`{"id":"` + id.String() + `"}`)
	result, err := svc.Delete(context.Background(), payload)
	require.NoError(t, err)

	assert.True(t, deactivated)
	retired := result.Data.(*models.Course)
	assert.False(t, retired.IsActive)
}
