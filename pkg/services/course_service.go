package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/apperrors"
	"github.com/planora-ai/planora-engine/pkg/models"
	"github.com/planora-ai/planora-engine/pkg/repositories"
)

// defaultSemesterDays is the span of the semester created lazily when a
// course arrives without one and the owner has no current semester.
const defaultSemesterDays = 120

// CreateCoursePayload is the payload for `create course` commands.
// SemesterID is optional: when absent the owner's current semester is used,
// created on the fly if none covers today.
type CreateCoursePayload struct {
	Name       string     `json:"name" validate:"required"`
	Code       string     `json:"code"`
	Instructor string     `json:"instructor"`
	Color      string     `json:"color"`
	Credits    int        `json:"credits" validate:"gte=0"`
	SemesterID *uuid.UUID `json:"semester_id"`
}

type courseIDPayload struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

type courseService struct {
	repo         repositories.CourseRepository
	semesterRepo repositories.SemesterRepository
	logger       *zap.Logger
}

// NewCourseService creates the entity handler for courses.
func NewCourseService(
	repo repositories.CourseRepository,
	semesterRepo repositories.SemesterRepository,
	logger *zap.Logger,
) EntityHandler {
	return &courseService{
		repo:         repo,
		semesterRepo: semesterRepo,
		logger:       logger.Named("course-handler"),
	}
}

var _ EntityHandler = (*courseService)(nil)

func (s *courseService) Create(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var req CreateCoursePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode course payload: %w", err)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid course payload: %w", err)
	}

	semesterID, err := s.resolveSemester(ctx, req.SemesterID)
	if err != nil {
		return nil, err
	}

	course := &models.Course{
		SemesterID: semesterID,
		Name:       req.Name,
		Code:       req.Code,
		Instructor: req.Instructor,
		Color:      req.Color,
		Credits:    req.Credits,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		s.logger.Error("Failed to create course", zap.Error(err))
		return nil, err
	}

	return &HandlerResult{Data: course, EntityID: &course.ID, After: course}, nil
}

// resolveSemester returns the semester the new course belongs to. A supplied
// id is verified to exist for this owner; otherwise the current semester is
// looked up and lazily created when missing. The caller observes the choice
// through the returned course's semester_id.
func (s *courseService) resolveSemester(ctx context.Context, supplied *uuid.UUID) (uuid.UUID, error) {
	if supplied != nil {
		semester, err := s.semesterRepo.GetByID(ctx, *supplied)
		if err != nil {
			return uuid.Nil, err
		}
		return semester.ID, nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	current, err := s.semesterRepo.GetCurrent(ctx, today)
	if err == nil {
		return current.ID, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return uuid.Nil, err
	}

	semester := &models.Semester{
		Name:      fmt.Sprintf("Semester %s", today.Format("Jan 2006")),
		StartDate: today,
		EndDate:   today.AddDate(0, 0, defaultSemesterDays),
	}
	if err := s.semesterRepo.Create(ctx, semester); err != nil {
		return uuid.Nil, err
	}

	s.logger.Info("Created default semester",
		zap.String("semester_id", semester.ID.String()),
		zap.Time("start", semester.StartDate),
		zap.Time("end", semester.EndDate))

	return semester.ID, nil
}

func (s *courseService) Read(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var filter models.CourseFilter
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &filter); err != nil {
			return nil, fmt.Errorf("decode course filter: %w", err)
		}
	}

	if filter.ID != nil {
		course, err := s.repo.GetByID(ctx, *filter.ID)
		if err != nil {
			return nil, err
		}
		return &HandlerResult{Data: course, EntityID: &course.ID}, nil
	}

	courses, err := s.repo.List(ctx, &filter)
	if err != nil {
		return nil, err
	}
	return &HandlerResult{Data: courses}, nil
}

func (s *courseService) Update(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var ref courseIDPayload
	if err := json.Unmarshal(payload, &ref); err != nil {
		return nil, fmt.Errorf("decode course payload: %w", err)
	}
	if err := validate.Struct(&ref); err != nil {
		return nil, fmt.Errorf("invalid course payload: %w", err)
	}

	before, err := s.repo.GetByID(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	fields, err := presentFields(payload)
	if err != nil {
		return nil, fmt.Errorf("decode course payload: %w", err)
	}

	updates := map[string]any{}
	for _, name := range []string{"name", "code", "instructor", "color"} {
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
	if raw, present := fields["credits"]; present && !isNull(raw) {
		var value int
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("invalid credits: %w", err)
		}
		updates["credits"] = value
	}
	if raw, present := fields["semester_id"]; present && !isNull(raw) {
		var value uuid.UUID
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("invalid semester_id: %w", err)
		}
		if _, err := s.semesterRepo.GetByID(ctx, value); err != nil {
			return nil, err
		}
		updates["semester_id"] = value
	}

	if len(updates) == 0 {
		return &HandlerResult{Data: before, EntityID: &before.ID, Before: before, After: before}, nil
	}

	after, err := s.repo.Update(ctx, ref.ID, updates)
	if err != nil {
		s.logger.Error("Failed to update course", zap.String("course_id", ref.ID.String()), zap.Error(err))
		return nil, err
	}

	return &HandlerResult{Data: after, EntityID: &after.ID, Before: before, After: after}, nil
}

func (s *courseService) Delete(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var ref courseIDPayload
	if err := json.Unmarshal(payload, &ref); err != nil {
		return nil, fmt.Errorf("decode course payload: %w", err)
	}
	if err := validate.Struct(&ref); err != nil {
		return nil, fmt.Errorf("invalid course payload: %w", err)
	}

	before, err := s.repo.GetByID(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	result, err := retire(models.KindCourse, ref.ID, before,
		func() (any, error) { return s.repo.Deactivate(ctx, ref.ID) },
		func() error { return fmt.Errorf("courses do not hard-delete") })
	if err != nil {
		s.logger.Error("Failed to delete course", zap.String("course_id", ref.ID.String()), zap.Error(err))
		return nil, err
	}
	return result, nil
}
