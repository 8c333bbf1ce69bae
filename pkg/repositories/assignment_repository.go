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

// AssignmentRepository provides data access for assignments.
type AssignmentRepository interface {
	// Create inserts a new assignment owned by the scope's owner.
	Create(ctx context.Context, assignment *models.Assignment) error

	// GetByID returns the owner's assignment or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)

	// List returns the owner's assignments matching the filter, by due date.
	List(ctx context.Context, filter *models.AssignmentFilter) ([]*models.Assignment, error)

	// Update applies the given column values and returns the updated row.
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Assignment, error)

	// Remove hard-deletes the assignment. Returns apperrors.ErrNotFound when
	// no owned row matched.
	Remove(ctx context.Context, id uuid.UUID) error
}

type assignmentRepository struct{}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository() AssignmentRepository {
	return &assignmentRepository{}
}

var _ AssignmentRepository = (*assignmentRepository)(nil)

const assignmentColumns = `id, owner_id, course_id, title, description, due_date,
		priority, is_completed, completion_percentage, created_at, updated_at`

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return database.ErrNoScope
	}

	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	assignment.OwnerID = scope.OwnerID
	if assignment.Priority == "" {
		assignment.Priority = models.PriorityMedium
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	query := `
		INSERT INTO assignments (
			id, owner_id, course_id, title, description, due_date,
			priority, is_completed, completion_percentage, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := scope.Querier(ctx).Exec(ctx, query,
		assignment.ID,
		assignment.OwnerID,
		assignment.CourseID,
		assignment.Title,
		assignment.Description,
		assignment.DueDate,
		assignment.Priority,
		assignment.IsCompleted,
		assignment.CompletionPercentage,
		assignment.CreatedAt,
		assignment.UpdatedAt,
	)
	if err != nil {
		return database.MapError(err, "assignment")
	}

	return nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE id = $1 AND owner_id = $2`

	assignment, err := scanAssignment(scope.Querier(ctx).QueryRow(ctx, query, id, scope.OwnerID))
	if err != nil {
		return nil, database.MapError(err, "assignment")
	}
	return assignment, nil
}

func (r *assignmentRepository) List(ctx context.Context, filter *models.AssignmentFilter) ([]*models.Assignment, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}
	if filter == nil {
		filter = &models.AssignmentFilter{}
	}

	builder := psql.Select(
		"id", "owner_id", "course_id", "title", "description", "due_date",
		"priority", "is_completed", "completion_percentage", "created_at", "updated_at",
	).
		From("assignments").
		Where(sq.Eq{"owner_id": scope.OwnerID}).
		OrderBy("due_date ASC NULLS LAST", "created_at ASC")

	if filter.ID != nil {
		builder = builder.Where(sq.Eq{"id": *filter.ID})
	}
	if filter.CourseID != nil {
		builder = builder.Where(sq.Eq{"course_id": *filter.CourseID})
	}
	if filter.DueFrom != nil {
		builder = builder.Where(sq.GtOrEq{"due_date": *filter.DueFrom})
	}
	if filter.DueTo != nil {
		builder = builder.Where(sq.LtOrEq{"due_date": *filter.DueTo})
	}
	if filter.IsCompleted != nil {
		builder = builder.Where(sq.Eq{"is_completed": *filter.IsCompleted})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, database.MapError(err, "assignment")
	}

	rows, err := scope.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapError(err, "assignment")
	}
	defer rows.Close()

	var assignments []*models.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, database.MapError(err, "assignment")
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, "assignment")
	}

	return assignments, nil
}

func (r *assignmentRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Assignment, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	builder := psql.Update("assignments").
		SetMap(updates).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "owner_id": scope.OwnerID}).
		Suffix("RETURNING " + assignmentColumns)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, database.MapError(err, "assignment")
	}

	assignment, err := scanAssignment(scope.Querier(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, database.MapError(err, "assignment")
	}
	return assignment, nil
}

func (r *assignmentRepository) Remove(ctx context.Context, id uuid.UUID) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return database.ErrNoScope
	}

	tag, err := scope.Querier(ctx).Exec(ctx,
		`DELETE FROM assignments WHERE id = $1 AND owner_id = $2`, id, scope.OwnerID)
	if err != nil {
		return database.MapError(err, "assignment")
	}
	if tag.RowsAffected() == 0 {
		return database.MapError(pgx.ErrNoRows, "assignment")
	}
	return nil
}

func scanAssignment(row pgx.Row) (*models.Assignment, error) {
	var assignment models.Assignment
	err := row.Scan(
		&assignment.ID,
		&assignment.OwnerID,
		&assignment.CourseID,
		&assignment.Title,
		&assignment.Description,
		&assignment.DueDate,
		&assignment.Priority,
		&assignment.IsCompleted,
		&assignment.CompletionPercentage,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}
