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

// CreateEventPayload is the payload for `create event` commands. The caller
// supplies one start/end instant pair; the stored date, wall-clock times,
// and weekday are derived server-side.
type CreateEventPayload struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required"`
}

type eventIDPayload struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

type eventService struct {
	repo   repositories.EventRepository
	logger *zap.Logger
}

// NewEventService creates the entity handler for calendar events.
func NewEventService(repo repositories.EventRepository, logger *zap.Logger) EntityHandler {
	return &eventService{
		repo:   repo,
		logger: logger.Named("event-handler"),
	}
}

var _ EntityHandler = (*eventService)(nil)

func (s *eventService) Create(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var req CreateEventPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}

	schedule, err := DeriveEventSchedule(req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("invalid event schedule: %w", err)
	}

	event := &models.Event{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		SpecificDate: schedule.SpecificDate,
		StartTime:    schedule.StartTime,
		EndTime:      schedule.EndTime,
		DayOfWeek:    schedule.DayOfWeek,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		s.logger.Error("Failed to create event", zap.Error(err))
		return nil, err
	}

	return &HandlerResult{Data: event, EntityID: &event.ID, After: event}, nil
}

func (s *eventService) Read(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var filter models.EventFilter
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &filter); err != nil {
			return nil, fmt.Errorf("decode event filter: %w", err)
		}
	}

	// A read by id returns the row regardless of its active flag so soft-
	// deleted events stay inspectable.
	if filter.ID != nil {
		event, err := s.repo.GetByID(ctx, *filter.ID)
		if err != nil {
			return nil, err
		}
		return &HandlerResult{Data: event, EntityID: &event.ID}, nil
	}

	events, err := s.repo.List(ctx, &filter)
	if err != nil {
		return nil, err
	}
	return &HandlerResult{Data: events}, nil
}

func (s *eventService) Update(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var ref eventIDPayload
	if err := json.Unmarshal(payload, &ref); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}
	if err := validate.Struct(&ref); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}

	before, err := s.repo.GetByID(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	fields, err := presentFields(payload)
	if err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
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

	// A schedule change needs the full instant pair to re-derive the
	// stored date, times, and weekday.
	_, hasStart := fields["start"]
	_, hasEnd := fields["end"]
	if hasStart || hasEnd {
		if !hasStart || !hasEnd {
			return nil, fmt.Errorf("start and end must be supplied together")
		}
		var start, end time.Time
		if err := json.Unmarshal(fields["start"], &start); err != nil {
			return nil, fmt.Errorf("invalid start: %w", err)
		}
		if err := json.Unmarshal(fields["end"], &end); err != nil {
			return nil, fmt.Errorf("invalid end: %w", err)
		}
		schedule, err := DeriveEventSchedule(start, end)
		if err != nil {
			return nil, fmt.Errorf("invalid event schedule: %w", err)
		}
		updates["specific_date"] = schedule.SpecificDate
		updates["start_time"] = schedule.StartTime
		updates["end_time"] = schedule.EndTime
		updates["day_of_week"] = schedule.DayOfWeek
	}

	if len(updates) == 0 {
		return &HandlerResult{Data: before, EntityID: &before.ID, Before: before, After: before}, nil
	}

	after, err := s.repo.Update(ctx, ref.ID, updates)
	if err != nil {
		s.logger.Error("Failed to update event", zap.String("event_id", ref.ID.String()), zap.Error(err))
		return nil, err
	}

	return &HandlerResult{Data: after, EntityID: &after.ID, Before: before, After: after}, nil
}

func (s *eventService) Delete(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var ref eventIDPayload
	if err := json.Unmarshal(payload, &ref); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}
	if err := validate.Struct(&ref); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}

	before, err := s.repo.GetByID(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	result, err := retire(models.KindEvent, ref.ID, before,
		func() (any, error) { return s.repo.Deactivate(ctx, ref.ID) },
		func() error { return fmt.Errorf("events do not hard-delete") })
	if err != nil {
		s.logger.Error("Failed to delete event", zap.String("event_id", ref.ID.String()), zap.Error(err))
		return nil, err
	}
	return result, nil
}
