package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planora-ai/planora-engine/pkg/database"
	"github.com/planora-ai/planora-engine/pkg/models"
)

// SemesterRepository provides data access for semesters.
type SemesterRepository interface {
	// Create inserts a new semester owned by the scope's owner.
	Create(ctx context.Context, semester *models.Semester) error

	// GetCurrent returns the owner's semester whose date range contains the
	// given day (most recently created wins), or apperrors.ErrNotFound.
	GetCurrent(ctx context.Context, day time.Time) (*models.Semester, error)

	// GetByID returns the owner's semester or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Semester, error)
}

type semesterRepository struct{}

// NewSemesterRepository creates a new SemesterRepository.
func NewSemesterRepository() SemesterRepository {
	return &semesterRepository{}
}

var _ SemesterRepository = (*semesterRepository)(nil)

func (r *semesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return database.ErrNoScope
	}

	if semester.ID == uuid.Nil {
		semester.ID = uuid.New()
	}
	semester.OwnerID = scope.OwnerID
	semester.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO semesters (id, owner_id, name, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := scope.Querier(ctx).Exec(ctx, query,
		semester.ID,
		semester.OwnerID,
		semester.Name,
		semester.StartDate,
		semester.EndDate,
		semester.CreatedAt,
	)
	if err != nil {
		return database.MapError(err, "semester")
	}

	return nil
}

func (r *semesterRepository) GetCurrent(ctx context.Context, day time.Time) (*models.Semester, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	query := `
		SELECT id, owner_id, name, start_date, end_date, created_at
		FROM semesters
		WHERE owner_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY created_at DESC
		LIMIT 1`

	semester, err := scanSemester(scope.Querier(ctx).QueryRow(ctx, query, scope.OwnerID, day))
	if err != nil {
		return nil, database.MapError(err, "semester")
	}
	return semester, nil
}

func (r *semesterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Semester, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	query := `
		SELECT id, owner_id, name, start_date, end_date, created_at
		FROM semesters
		WHERE id = $1 AND owner_id = $2`

	semester, err := scanSemester(scope.Querier(ctx).QueryRow(ctx, query, id, scope.OwnerID))
	if err != nil {
		return nil, database.MapError(err, "semester")
	}
	return semester, nil
}

func scanSemester(row pgx.Row) (*models.Semester, error) {
	var semester models.Semester
	err := row.Scan(
		&semester.ID,
		&semester.OwnerID,
		&semester.Name,
		&semester.StartDate,
		&semester.EndDate,
		&semester.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &semester, nil
}
