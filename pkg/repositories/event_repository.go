package repositories

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planora-ai/planora-engine/pkg/database"
	"github.com/planora-ai/planora-engine/pkg/models"
)

// EventRepository provides data access for calendar events.
type EventRepository interface {
	// Create inserts a new event owned by the scope's owner.
	Create(ctx context.Context, event *models.Event) error

	// GetByID returns the owner's event regardless of its active flag,
	// or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)

	// List returns the owner's events matching the filter, soonest first.
	// Inactive events are excluded unless the filter says otherwise.
	List(ctx context.Context, filter *models.EventFilter) ([]*models.Event, error)

	// Update applies the given column values and returns the updated row.
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Event, error)

	// Deactivate soft-deletes the event and returns the retired row.
	Deactivate(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

type eventRepository struct{}

// NewEventRepository creates a new EventRepository.
func NewEventRepository() EventRepository {
	return &eventRepository{}
}

var _ EventRepository = (*eventRepository)(nil)

const eventColumns = `id, owner_id, title, description, location, specific_date,
		start_time, end_time, day_of_week, is_active, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return database.ErrNoScope
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.OwnerID = scope.OwnerID
	event.IsActive = true
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	query := `
		INSERT INTO events (
			id, owner_id, title, description, location, specific_date,
			start_time, end_time, day_of_week, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := scope.Querier(ctx).Exec(ctx, query,
		event.ID,
		event.OwnerID,
		event.Title,
		event.Description,
		event.Location,
		event.SpecificDate,
		event.StartTime,
		event.EndTime,
		event.DayOfWeek,
		event.IsActive,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return database.MapError(err, "event")
	}

	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1 AND owner_id = $2`

	event, err := scanEvent(scope.Querier(ctx).QueryRow(ctx, query, id, scope.OwnerID))
	if err != nil {
		return nil, database.MapError(err, "event")
	}
	return event, nil
}

func (r *eventRepository) List(ctx context.Context, filter *models.EventFilter) ([]*models.Event, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}
	if filter == nil {
		filter = &models.EventFilter{}
	}

	builder := psql.Select(
		"id", "owner_id", "title", "description", "location", "specific_date",
		"start_time", "end_time", "day_of_week", "is_active", "created_at", "updated_at",
	).
		From("events").
		Where(sq.Eq{"owner_id": scope.OwnerID}).
		OrderBy("specific_date ASC", "start_time ASC")

	if !filter.IncludeInactive {
		builder = builder.Where(sq.Eq{"is_active": true})
	}
	if filter.ID != nil {
		builder = builder.Where(sq.Eq{"id": *filter.ID})
	}
	if filter.SpecificDate != nil {
		builder = builder.Where(sq.Eq{"specific_date": *filter.SpecificDate})
	}
	if filter.DateFrom != nil {
		builder = builder.Where(sq.GtOrEq{"specific_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		builder = builder.Where(sq.LtOrEq{"specific_date": *filter.DateTo})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, database.MapError(err, "event")
	}

	rows, err := scope.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapError(err, "event")
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, database.MapError(err, "event")
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, "event")
	}

	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Event, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	builder := psql.Update("events").
		SetMap(updates).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "owner_id": scope.OwnerID}).
		Suffix("RETURNING " + eventColumns)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, database.MapError(err, "event")
	}

	event, err := scanEvent(scope.Querier(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, database.MapError(err, "event")
	}
	return event, nil
}

func (r *eventRepository) Deactivate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return r.Update(ctx, id, map[string]any{"is_active": false})
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var event models.Event
	err := row.Scan(
		&event.ID,
		&event.OwnerID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.SpecificDate,
		&event.StartTime,
		&event.EndTime,
		&event.DayOfWeek,
		&event.IsActive,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
