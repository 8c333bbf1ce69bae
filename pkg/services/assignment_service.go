package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/models"
	"github.com/planora-ai/planora-engine/pkg/repositories"
)

// CreateAssignmentPayload is the payload for `create assignment` commands.
type CreateAssignmentPayload struct {
	Title                string     `json:"title" validate:"required"`
	Description          string     `json:"description"`
	CourseID             *uuid.UUID `json:"course_id"`
	DueDate              *time.Time `json:"due_date"`
	Priority             string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	IsCompleted          bool       `json:"is_completed"`
	CompletionPercentage int        `json:"completion_percentage" validate:"gte=0,lte=100"`
}

type assignmentIDPayload struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

type assignmentService struct {
	repo   repositories.AssignmentRepository
	logger *zap.Logger
}

// NewAssignmentService creates the entity handler for assignments.
func NewAssignmentService(repo repositories.AssignmentRepository, logger *zap.Logger) EntityHandler {
	return &assignmentService{
		repo:   repo,
		logger: logger.Named("assignment-handler"),
	}
}

var _ EntityHandler = (*assignmentService)(nil)

func (s *assignmentService) Create(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var req CreateAssignmentPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode assignment payload: %w", err)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid assignment payload: %w", err)
	}

	if req.IsCompleted {
		req.CompletionPercentage = 100
	}

	assignment := &models.Assignment{
		Title:                req.Title,
		Description:          req.Description,
		CourseID:             req.CourseID,
		DueDate:              req.DueDate,
		Priority:             req.Priority,
		IsCompleted:          req.IsCompleted,
		CompletionPercentage: req.CompletionPercentage,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		s.logger.Error("Failed to create assignment", zap.Error(err))
		return nil, err
	}

	return &HandlerResult{Data: assignment, EntityID: &assignment.ID, After: assignment}, nil
}

func (s *assignmentService) Read(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var filter models.AssignmentFilter
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &filter); err != nil {
			return nil, fmt.Errorf("decode assignment filter: %w", err)
		}
	}

	if filter.ID != nil {
		assignment, err := s.repo.GetByID(ctx, *filter.ID)
		if err != nil {
			return nil, err
		}
		return &HandlerResult{Data: assignment, EntityID: &assignment.ID}, nil
	}

	assignments, err := s.repo.List(ctx, &filter)
	if err != nil {
		return nil, err
	}
	return &HandlerResult{Data: assignments}, nil
}

func (s *assignmentService) Update(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var ref assignmentIDPayload
	if err := json.Unmarshal(payload, &ref); err != nil {
		return nil, fmt.Errorf("decode assignment payload: %w", err)
	}
	if err := validate.Struct(&ref); err != nil {
		return nil, fmt.Errorf("invalid assignment payload: %w", err)
	}

	before, err := s.repo.GetByID(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	fields, err := presentFields(payload)
	if err != nil {
		return nil, fmt.Errorf("decode assignment payload: %w", err)
	}

	updates := map[string]any{}
	for _, name := range []string{"title", "description", "priority"} {
		raw, present := fields[name]
		if !present {
			continue
		}
		var value string
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &value); err != nil {
				return nil, fmt.Errorf("invalid %s: %w", name, err)
			}
		}
		updates[name] = value
	}
	if raw, present := fields["course_id"]; present {
		var value *uuid.UUID
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &value); err != nil {
				return nil, fmt.Errorf("invalid course_id: %w", err)
			}
		}
		updates["course_id"] = value
	}
	if raw, present := fields["due_date"]; present {
		var value *time.Time
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &value); err != nil {
				return nil, fmt.Errorf("invalid due_date: %w", err)
			}
		}
		updates["due_date"] = value
	}

	var percentageSupplied bool
	if raw, present := fields["completion_percentage"]; present && !isNull(raw) {
		var value int
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("invalid completion_percentage: %w", err)
		}
		if value < 0 || value > 100 {
			return nil, fmt.Errorf("completion_percentage must be between 0 and 100")
		}
		updates["completion_percentage"] = value
		percentageSupplied = true
	}
	if raw, present := fields["is_completed"]; present && !isNull(raw) {
		var value bool
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("invalid is_completed: %w", err)
		}
		updates["is_completed"] = value
		// Marking complete forces the percentage to 100. Unmarking leaves
		// the percentage alone unless it was supplied explicitly.
		if value && !percentageSupplied {
			updates["completion_percentage"] = 100
		}
	}

	if len(updates) == 0 {
		return &HandlerResult{Data: before, EntityID: &before.ID, Before: before, After: before}, nil
	}

	after, err := s.repo.Update(ctx, ref.ID, updates)
	if err != nil {
		s.logger.Error("Failed to update assignment", zap.String("assignment_id", ref.ID.String()), zap.Error(err))
		return nil, err
	}

	return &HandlerResult{Data: after, EntityID: &after.ID, Before: before, After: after}, nil
}

func (s *assignmentService) Delete(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var ref assignmentIDPayload
	if err := json.Unmarshal(payload, &ref); err != nil {
		return nil, fmt.Errorf("decode assignment payload: %w", err)
	}
	if err := validate.Struct(&ref); err != nil {
		return nil, fmt.Errorf("invalid assignment payload: %w", err)
	}

	before, err := s.repo.GetByID(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	result, err := retire(models.KindAssignment, ref.ID, before,
		func() (any, error) { return nil, fmt.Errorf("assignments do not soft-delete") },
		func() error { return s.repo.Remove(ctx, ref.ID) })
	if err != nil {
		s.logger.Error("Failed to delete assignment", zap.String("assignment_id", ref.ID.String()), zap.Error(err))
		return nil, err
	}
	return result, nil
}
