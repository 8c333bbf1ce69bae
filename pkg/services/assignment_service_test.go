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

func TestAssignmentCreateCompletedForcesFullPercentage(t *testing.T) {
	repo := &mockAssignmentRepo{}
	svc := NewAssignmentService(repo, zap.NewNop())

	payload := json.RawMessage(`{"title":"Lab report","is_completed":true,"completion_percentage":40}`)
	result, err := svc.Create(context.Background(), payload)
	require.NoError(t, err)

	assignment := result.Data.(*models.Assignment)
	assert.True(t, assignment.IsCompleted)
	assert.Equal(t, 100, assignment.CompletionPercentage)
}

func TestAssignmentCreateRejectsOutOfRangePercentage(t *testing.T) {
	svc := NewAssignmentService(&mockAssignmentRepo{}, zap.NewNop())

	_, err := svc.Create(context.Background(), json.RawMessage(`{"title":"Lab report","completion_percentage":120}`))
	assert.Error(t, err)
}

func TestAssignmentCreateRejectsUnknownPriority(t *testing.T) {
	svc := NewAssignmentService(&mockAssignmentRepo{}, zap.NewNop())

	_, err := svc.Create(context.Background(), json.RawMessage(`{"title":"Lab report","priority":"urgent"}`))
	assert.Error(t, err)
}

func TestAssignmentUpdateCompletionRules(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantFields map[string]any
	}{
		{
			name:       "marking complete forces percentage",
			payload:    `{"is_completed":true}`,
			wantFields: map[string]any{"is_completed": true, "completion_percentage": 100},
		},
		{
			name:       "explicit percentage wins over the forced value",
			payload:    `{"is_completed":true,"completion_percentage":90}`,
			wantFields: map[string]any{"is_completed": true, "completion_percentage": 90},
		},
		{
			name:       "unmarking leaves the percentage untouched",
			payload:    `{"is_completed":false}`,
			wantFields: map[string]any{"is_completed": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			repo := &mockAssignmentRepo{
				GetByIDFunc: func(ctx context.Context, gotID uuid.UUID) (*models.Assignment, error) {
					return &models.Assignment{ID: gotID, Title: "Lab report"}, nil
				},
			}
			svc := NewAssignmentService(repo, zap.NewNop())

			payload := json.RawMessage(`{"id":"` + id.String() + `",` + tt.payload[1:])
			_, err := svc.Update(context.Background(), payload)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFields, repo.LastUpdates)
		})
	}
}

func TestAssignmentUpdateRejectsOutOfRangePercentage(t *testing.T) {
	id := uuid.New()
	repo := &mockAssignmentRepo{
		GetByIDFunc: func(ctx context.Context, gotID uuid.UUID) (*models.Assignment, error) {
			return &models.Assignment{ID: gotID}, nil
		},
	}
	svc := NewAssignmentService(repo, zap.NewNop())

	payload := json.RawMessage(`{"id":"` + id.String() + `","completion_percentage":101}`)
	_, err := svc.Update(context.Background(), payload)
	assert.ErrorContains(t, err, "between 0 and 100")
}

func TestAssignmentUpdateNullClearsDueDate(t *testing.T) {
	id := uuid.New()
	repo := &mockAssignmentRepo{
		GetByIDFunc: func(ctx context.Context, gotID uuid.UUID) (*models.Assignment, error) {
			return &models.Assignment{ID: gotID}, nil
		},
	}
	svc := NewAssignmentService(repo, zap.NewNop())

	payload := json.RawMessage(`{"id":"` + id.String() + `","due_date":null}`)
	_, err := svc.Update(context.Background(), payload)
	require.NoError(t, err)

	value, present := repo.LastUpdates["due_date"]
	require.True(t, present)
	assert.Nil(t, value)
}

func TestAssignmentDeleteIsHard(t *testing.T) {
	id := uuid.New()
	repo := &mockAssignmentRepo{
		GetByIDFunc: func(ctx context.Context, gotID uuid.UUID) (*models.Assignment, error) {
			return &models.Assignment{ID: gotID, Title: "Lab report"}, nil
		},
	}
	svc := NewAssignmentService(repo, zap.NewNop())

	payload := json.RawMessage(`{"id":"` + id.String() + `"}`)
	result, err := svc.Delete(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.RemoveCalls)
	// Hard deletes surface the last known state and carry no after snapshot.
	removed := result.Data.(*models.Assignment)
	assert.Equal(t, "Lab report", removed.Title)
	assert.NotNil(t, result.Before)
	assert.Nil(t, result.After)
}
