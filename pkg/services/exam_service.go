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

// CreateExamPayload is the payload for `create exam` commands.
type CreateExamPayload struct {
	Title           string     `json:"title" validate:"required"`
	Description     string     `json:"description"`
	CourseID        *uuid.UUID `json:"course_id"`
	ExamDate        time.Time  `json:"exam_date" validate:"required"`
	Location        string     `json:"location"`
	DurationMinutes int        `json:"duration_minutes" validate:"gte=0"`
}

type examIDPayload struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

type examService struct {
	repo   repositories.ExamRepository
	logger *zap.Logger
}

// NewExamService creates the entity handler for exams.
func NewExamService(repo repositories.ExamRepository, logger *zap.Logger) EntityHandler {
	return &examService{
		repo:   repo,
		logger: logger.Named("exam-handler"),
	}
}

var _ EntityHandler = (*examService)(nil)

func (s *examService) Create(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var req CreateExamPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode exam payload: %w", err)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid exam payload: %w", err)
	}

	exam := &models.Exam{
		Title:           req.Title,
		Description:     req.Description,
		CourseID:        req.CourseID,
		ExamDate:        req.ExamDate.UTC(),
		Location:        req.Location,
		DurationMinutes: req.DurationMinutes,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		s.logger.Error("Failed to create exam", zap.Error(err))
		return nil, err
	}

	return &HandlerResult{Data: exam, EntityID: &exam.ID, After: exam}, nil
}

func (s *examService) Read(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var filter models.ExamFilter
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &filter); err != nil {
			return nil, fmt.Errorf("decode exam filter: %w", err)
		}
	}

	if filter.ID != nil {
		exam, err := s.repo.GetByID(ctx, *filter.ID)
		if err != nil {
			return nil, err
		}
		return &HandlerResult{Data: exam, EntityID: &exam.ID}, nil
	}

	exams, err := s.repo.List(ctx, &filter)
	if err != nil {
		return nil, err
	}
	return &HandlerResult{Data: exams}, nil
}

func (s *examService) Update(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var ref examIDPayload
	if err := json.Unmarshal(payload, &ref); err != nil {
		return nil, fmt.Errorf("decode exam payload: %w", err)
	}
	if err := validate.Struct(&ref); err != nil {
		return nil, fmt.Errorf("invalid exam payload: %w", err)
	}

	before, err := s.repo.GetByID(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	fields, err := presentFields(payload)
	if err != nil {
		return nil, fmt.Errorf("decode exam payload: %w", err)
	}

	updates := map[string]any{}
	for _, name := range []string{"title", "description", "location"} {
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
	if raw, present := fields["exam_date"]; present && !isNull(raw) {
		var value time.Time
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("invalid exam_date: %w", err)
		}
		updates["exam_date"] = value.UTC()
	}
	if raw, present := fields["duration_minutes"]; present && !isNull(raw) {
		var value int
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("invalid duration_minutes: %w", err)
		}
		updates["duration_minutes"] = value
	}

	if len(updates) == 0 {
		return &HandlerResult{Data: before, EntityID: &before.ID, Before: before, After: before}, nil
	}

	after, err := s.repo.Update(ctx, ref.ID, updates)
	if err != nil {
		s.logger.Error("Failed to update exam", zap.String("exam_id", ref.ID.String()), zap.Error(err))
		return nil, err
	}

	return &HandlerResult{Data: after, EntityID: &after.ID, Before: before, After: after}, nil
}

func (s *examService) Delete(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var ref examIDPayload
	if err := json.Unmarshal(payload, &ref); err != nil {
		return nil, fmt.Errorf("decode exam payload: %w", err)
	}
	if err := validate.Struct(&ref); err != nil {
		return nil, fmt.Errorf("invalid exam payload: %w", err)
	}

	before, err := s.repo.GetByID(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	result, err := retire(models.KindExam, ref.ID, before,
		func() (any, error) { return nil, fmt.Errorf("exams do not soft-delete") },
		func() error { return s.repo.Remove(ctx, ref.ID) })
	if err != nil {
		s.logger.Error("Failed to delete exam", zap.String("exam_id", ref.ID.String()), zap.Error(err))
		return nil, err
	}
	return result, nil
}
