package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/models"
)

func TestExamCreateNormalizesDateToUTC(t *testing.T) {
	repo := &mockExamRepo{}
	svc := NewExamService(repo, zap.NewNop())

	payload := json.RawMessage(`{"title":"Midterm","exam_date":"2025-05-10T10:00:00+02:00","duration_minutes":90}`)
	result, err := svc.Create(context.Background(), payload)
	require.NoError(t, err)

	exam := result.Data.(*models.Exam)
	assert.Equal(t, "2025-05-10T08:00:00Z", exam.ExamDate.Format("2006-01-02T15:04:05Z07:00"))
	assert.Equal(t, 90, exam.DurationMinutes)
}

func TestExamCreateRequiresDate(t *testing.T) {
	svc := NewExamService(&mockExamRepo{}, zap.NewNop())

	_, err := svc.Create(context.Background(), json.RawMessage(`{"title":"Midterm"}`))
	assert.Error(t, err)
}

func TestExamUpdateClearsCourseLink(t *testing.T) {
	id := uuid.New()
	courseID := uuid.New()
	repo := &mockExamRepo{
		GetByIDFunc: func(ctx context.Context, gotID uuid.UUID) (*models.Exam, error) {
			return &models.Exam{ID: gotID, CourseID: &courseID}, nil
		},
	}
	svc := NewExamService(repo, zap.NewNop())

	payload := json.RawMessage(`{"id":"` + id.String() + `","course_id":null}`)
	_, err := svc.Update(context.Background(), payload)
	require.NoError(t, err)

	value, present := repo.LastUpdates["course_id"]
	require.True(t, present)
	assert.Nil(t, value)
}

func TestExamDeleteIsHard(t *testing.T) {
	id := uuid.New()
	repo := &mockExamRepo{
		GetByIDFunc: func(ctx context.Context, gotID uuid.UUID) (*models.Exam, error) {
			return &models.Exam{ID: gotID, Title: "Midterm"}, nil
		},
	}
	svc := NewExamService(repo, zap.NewNop())

	result, err := svc.Delete(context.Background(), json.RawMessage(`{"id":"`+id.String()+`"}`))
	require.NoError(t, err)

	assert.Equal(t, 1, repo.RemoveCalls)
	assert.Nil(t, result.After)
	assert.Equal(t, "Midterm", result.Data.(*models.Exam).Title)
}
