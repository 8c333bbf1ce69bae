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

// CourseRepository provides data access for courses.
type CourseRepository interface {
	// Create inserts a new course owned by the scope's owner.
	Create(ctx context.Context, course *models.Course) error

	// GetByID returns the owner's course regardless of its active flag,
	// or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)

	// List returns the owner's courses matching the filter, by name.
	// Inactive courses are excluded unless the filter says otherwise.
	List(ctx context.Context, filter *models.CourseFilter) ([]*models.Course, error)

	// Update applies the given column values and returns the updated row.
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Course, error)

	// Deactivate soft-deletes the course and returns the retired row.
	Deactivate(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type courseRepository struct{}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository() CourseRepository {
	return &courseRepository{}
}

var _ CourseRepository = (*courseRepository)(nil)

const courseColumns = `id, owner_id, semester_id, name, code, instructor,
		color, credits, is_active, created_at, updated_at`

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return database.ErrNoScope
	}

	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	course.OwnerID = scope.OwnerID
	course.IsActive = true
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	query := `
		INSERT INTO courses (
			id, owner_id, semester_id, name, code, instructor,
			color, credits, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := scope.Querier(ctx).Exec(ctx, query,
		course.ID,
		course.OwnerID,
		course.SemesterID,
		course.Name,
		course.Code,
		course.Instructor,
		course.Color,
		course.Credits,
		course.IsActive,
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		return database.MapError(err, "course")
	}

	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE id = $1 AND owner_id = $2`

	course, err := scanCourse(scope.Querier(ctx).QueryRow(ctx, query, id, scope.OwnerID))
	if err != nil {
		return nil, database.MapError(err, "course")
	}
	return course, nil
}

func (r *courseRepository) List(ctx context.Context, filter *models.CourseFilter) ([]*models.Course, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}
	if filter == nil {
		filter = &models.CourseFilter{}
	}

	builder := psql.Select(
		"id", "owner_id", "semester_id", "name", "code", "instructor",
		"color", "credits", "is_active", "created_at", "updated_at",
	).
		From("courses").
		Where(sq.Eq{"owner_id": scope.OwnerID}).
		OrderBy("name ASC")

	if !filter.IncludeInactive {
		builder = builder.Where(sq.Eq{"is_active": true})
	}
	if filter.ID != nil {
		builder = builder.Where(sq.Eq{"id": *filter.ID})
	}
	if filter.SemesterID != nil {
		builder = builder.Where(sq.Eq{"semester_id": *filter.SemesterID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, database.MapError(err, "course")
	}

	rows, err := scope.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapError(err, "course")
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, database.MapError(err, "course")
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, "course")
	}

	return courses, nil
}

func (r *courseRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Course, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	builder := psql.Update("courses").
		SetMap(updates).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "owner_id": scope.OwnerID}).
		Suffix("RETURNING " + courseColumns)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, database.MapError(err, "course")
	}

	course, err := scanCourse(scope.Querier(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, database.MapError(err, "course")
	}
	return course, nil
}

func (r *courseRepository) Deactivate(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return r.Update(ctx, id, map[string]any{"is_active": false})
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var course models.Course
	err := row.Scan(
		&course.ID,
		&course.OwnerID,
		&course.SemesterID,
		&course.Name,
		&course.Code,
		&course.Instructor,
		&course.Color,
		&course.Credits,
		&course.IsActive,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}
