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

// ExamRepository provides data access for exams.
type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Exam, error)
	List(ctx context.Context, filter *models.ExamFilter) ([]*models.Exam, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Exam, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type examRepository struct{}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository() ExamRepository {
	return &examRepository{}
}

var _ ExamRepository = (*examRepository)(nil)

const examColumns = `id, owner_id, course_id, title, description, exam_date,
		location, duration_minutes, created_at, updated_at`

func (r *examRepository) Create(ctx context.Context, exam *models.Exam) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return database.ErrNoScope
	}

	if exam.ID == uuid.Nil {
		exam.ID = uuid.New()
	}
	exam.OwnerID = scope.OwnerID
	now := time.Now().UTC()
	exam.CreatedAt = now
	exam.UpdatedAt = now

	query := `
		INSERT INTO exams (
			id, owner_id, course_id, title, description, exam_date,
			location, duration_minutes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := scope.Querier(ctx).Exec(ctx, query,
		exam.ID,
		exam.OwnerID,
		exam.CourseID,
		exam.Title,
		exam.Description,
		exam.ExamDate,
		exam.Location,
		exam.DurationMinutes,
		exam.CreatedAt,
		exam.UpdatedAt,
	)
	if err != nil {
		return database.MapError(err, "exam")
	}

	return nil
}

func (r *examRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Exam, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	query := `
		SELECT ` + examColumns + `
		FROM exams
		WHERE id = $1 AND owner_id = $2`

	exam, err := scanExam(scope.Querier(ctx).QueryRow(ctx, query, id, scope.OwnerID))
	if err != nil {
		return nil, database.MapError(err, "exam")
	}
	return exam, nil
}

func (r *examRepository) List(ctx context.Context, filter *models.ExamFilter) ([]*models.Exam, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}
	if filter == nil {
		filter = &models.ExamFilter{}
	}

	builder := psql.Select(
		"id", "owner_id", "course_id", "title", "description", "exam_date",
		"location", "duration_minutes", "created_at", "updated_at",
	).
		From("exams").
		Where(sq.Eq{"owner_id": scope.OwnerID}).
		OrderBy("exam_date ASC")

	if filter.ID != nil {
		builder = builder.Where(sq.Eq{"id": *filter.ID})
	}
	if filter.CourseID != nil {
		builder = builder.Where(sq.Eq{"course_id": *filter.CourseID})
	}
	if filter.DateFrom != nil {
		builder = builder.Where(sq.GtOrEq{"exam_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		builder = builder.Where(sq.LtOrEq{"exam_date": *filter.DateTo})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, database.MapError(err, "exam")
	}

	rows, err := scope.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapError(err, "exam")
	}
	defer rows.Close()

	var exams []*models.Exam
	for rows.Next() {
		exam, err := scanExam(rows)
		if err != nil {
			return nil, database.MapError(err, "exam")
		}
		exams = append(exams, exam)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, "exam")
	}

	return exams, nil
}

func (r *examRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Exam, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	builder := psql.Update("exams").
		SetMap(updates).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "owner_id": scope.OwnerID}).
		Suffix("RETURNING " + examColumns)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, database.MapError(err, "exam")
	}

	exam, err := scanExam(scope.Querier(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, database.MapError(err, "exam")
	}
	return exam, nil
}

func (r *examRepository) Remove(ctx context.Context, id uuid.UUID) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return database.ErrNoScope
	}

	tag, err := scope.Querier(ctx).Exec(ctx,
		`DELETE FROM exams WHERE id = $1 AND owner_id = $2`, id, scope.OwnerID)
	if err != nil {
		return database.MapError(err, "exam")
	}
	if tag.RowsAffected() == 0 {
		return database.MapError(pgx.ErrNoRows, "exam")
	}
	return nil
}

func scanExam(row pgx.Row) (*models.Exam, error) {
	var exam models.Exam
	err := row.Scan(
		&exam.ID,
		&exam.OwnerID,
		&exam.CourseID,
		&exam.Title,
		&exam.Description,
		&exam.ExamDate,
		&exam.Location,
		&exam.DurationMinutes,
		&exam.CreatedAt,
		&exam.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &exam, nil
}
