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

// CreateStudySessionPayload is the payload for `create study_session`
// commands. A session may link to the assignment or exam it prepares for.
type CreateStudySessionPayload struct {
	Subject         string     `json:"subject" validate:"required"`
	Notes           string     `json:"notes"`
	ScheduledAt     time.Time  `json:"scheduled_at" validate:"required"`
	DurationMinutes int        `json:"duration_minutes" validate:"gt=0"`
	AssignmentID    *uuid.UUID `json:"assignment_id"`
	ExamID          *uuid.UUID `json:"exam_id"`
}

type studySessionIDPayload struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

type studySessionService struct {
	repo   repositories.StudySessionRepository
	logger *zap.Logger
}

// NewStudySessionService creates the entity handler for study sessions.
func NewStudySessionService(repo repositories.StudySessionRepository, logger *zap.Logger) EntityHandler {
	return &studySessionService{
		repo:   repo,
		logger: logger.Named("study-session-handler"),
	}
}

var _ EntityHandler = (*studySessionService)(nil)

func (s *studySessionService) Create(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var req CreateStudySessionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode study session payload: %w", err)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid study session payload: %w", err)
	}

	session := &models.StudySession{
		Subject:         req.Subject,
		Notes:           req.Notes,
		ScheduledAt:     req.ScheduledAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		AssignmentID:    req.AssignmentID,
		ExamID:          req.ExamID,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		s.logger.Error("Failed to create study session", zap.Error(err))
		return nil, err
	}

	return &HandlerResult{Data: session, EntityID: &session.ID, After: session}, nil
}

func (s *studySessionService) Read(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var filter models.StudySessionFilter
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &filter); err != nil {
			return nil, fmt.Errorf("decode study session filter: %w", err)
		}
	}

	if filter.ID != nil {
		session, err := s.repo.GetByID(ctx, *filter.ID)
		if err != nil {
			return nil, err
		}
		return &HandlerResult{Data: session, EntityID: &session.ID}, nil
	}

	sessions, err := s.repo.List(ctx, &filter)
	if err != nil {
		return nil, err
	}
	return &HandlerResult{Data: sessions}, nil
}

func (s *studySessionService) Update(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var ref studySessionIDPayload
	if err := json.Unmarshal(payload, &ref); err != nil {
		return nil, fmt.Errorf("decode study session payload: %w", err)
	}
	if err := validate.Struct(&ref); err != nil {
		return nil, fmt.Errorf("invalid study session payload: %w", err)
	}

	before, err := s.repo.GetByID(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	fields, err := presentFields(payload)
	if err != nil {
		return nil, fmt.Errorf("decode study session payload: %w", err)
	}

	updates := map[string]any{}
	for _, name := range []string{"subject", "notes"} {
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
	if raw, present := fields["scheduled_at"]; present && !isNull(raw) {
		var value time.Time
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("invalid scheduled_at: %w", err)
		}
		updates["scheduled_at"] = value.UTC()
	}
	if raw, present := fields["duration_minutes"]; present && !isNull(raw) {
		var value int
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("invalid duration_minutes: %w", err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("duration_minutes must be positive")
		}
		updates["duration_minutes"] = value
	}
	for _, name := range []string{"assignment_id", "exam_id"} {
		raw, present := fields[name]
		if !present {
			continue
		}
		var value *uuid.UUID
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &value); err != nil {
				return nil, fmt.Errorf("invalid %s: %w", name, err)
			}
		}
		updates[name] = value
	}
	if raw, present := fields["is_completed"]; present && !isNull(raw) {
		var value bool
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("invalid is_completed: %w", err)
		}
		updates["is_completed"] = value
	}

	if len(updates) == 0 {
		return &HandlerResult{Data: before, EntityID: &before.ID, Before: before, After: before}, nil
	}

	after, err := s.repo.Update(ctx, ref.ID, updates)
	if err != nil {
		s.logger.Error("Failed to update study session", zap.String("session_id", ref.ID.String()), zap.Error(err))
		return nil, err
	}

	return &HandlerResult{Data: after, EntityID: &after.ID, Before: before, After: after}, nil
}

func (s *studySessionService) Delete(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var ref studySessionIDPayload
	if err := json.Unmarshal(payload, &ref); err != nil {
		return nil, fmt.Errorf("decode study session payload: %w", err)
	}
	if err := validate.Struct(&ref); err != nil {
		return nil, fmt.Errorf("invalid study session payload: %w", err)
	}

	before, err := s.repo.GetByID(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	result, err := retire(models.KindStudySession, ref.ID, before,
		func() (any, error) { return nil, fmt.Errorf("study sessions do not soft-delete") },
		func() error { return s.repo.Remove(ctx, ref.ID) })
	if err != nil {
		s.logger.Error("Failed to delete study session", zap.String("session_id", ref.ID.String()), zap.Error(err))
		return nil, err
	}
	return result, nil
}
