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

// StudySessionRepository provides data access for study sessions.
type StudySessionRepository interface {
	Create(ctx context.Context, session *models.StudySession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StudySession, error)
	List(ctx context.Context, filter *models.StudySessionFilter) ([]*models.StudySession, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.StudySession, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type studySessionRepository struct{}

// NewStudySessionRepository creates a new StudySessionRepository.
func NewStudySessionRepository() StudySessionRepository {
	return &studySessionRepository{}
}

var _ StudySessionRepository = (*studySessionRepository)(nil)

const studySessionColumns = `id, owner_id, subject, notes, scheduled_at,
		duration_minutes, assignment_id, exam_id, is_completed, created_at, updated_at`

func (r *studySessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return database.ErrNoScope
	}

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.OwnerID = scope.OwnerID
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	query := `
		INSERT INTO study_sessions (
			id, owner_id, subject, notes, scheduled_at,
			duration_minutes, assignment_id, exam_id, is_completed, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := scope.Querier(ctx).Exec(ctx, query,
		session.ID,
		session.OwnerID,
		session.Subject,
		session.Notes,
		session.ScheduledAt,
		session.DurationMinutes,
		session.AssignmentID,
		session.ExamID,
		session.IsCompleted,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return database.MapError(err, "study_session")
	}

	return nil
}

func (r *studySessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StudySession, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	query := `
		SELECT ` + studySessionColumns + `
		FROM study_sessions
		WHERE id = $1 AND owner_id = $2`

	session, err := scanStudySession(scope.Querier(ctx).QueryRow(ctx, query, id, scope.OwnerID))
	if err != nil {
		return nil, database.MapError(err, "study_session")
	}
	return session, nil
}

func (r *studySessionRepository) List(ctx context.Context, filter *models.StudySessionFilter) ([]*models.StudySession, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}
	if filter == nil {
		filter = &models.StudySessionFilter{}
	}

	builder := psql.Select(
		"id", "owner_id", "subject", "notes", "scheduled_at",
		"duration_minutes", "assignment_id", "exam_id", "is_completed", "created_at", "updated_at",
	).
		From("study_sessions").
		Where(sq.Eq{"owner_id": scope.OwnerID}).
		OrderBy("scheduled_at ASC")

	if filter.ID != nil {
		builder = builder.Where(sq.Eq{"id": *filter.ID})
	}
	if filter.AssignmentID != nil {
		builder = builder.Where(sq.Eq{"assignment_id": *filter.AssignmentID})
	}
	if filter.ExamID != nil {
		builder = builder.Where(sq.Eq{"exam_id": *filter.ExamID})
	}
	if filter.ScheduledFrom != nil {
		builder = builder.Where(sq.GtOrEq{"scheduled_at": *filter.ScheduledFrom})
	}
	if filter.ScheduledTo != nil {
		builder = builder.Where(sq.LtOrEq{"scheduled_at": *filter.ScheduledTo})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, database.MapError(err, "study_session")
	}

	rows, err := scope.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapError(err, "study_session")
	}
	defer rows.Close()

	var sessions []*models.StudySession
	for rows.Next() {
		session, err := scanStudySession(rows)
		if err != nil {
			return nil, database.MapError(err, "study_session")
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, "study_session")
	}

	return sessions, nil
}

func (r *studySessionRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.StudySession, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	builder := psql.Update("study_sessions").
		SetMap(updates).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "owner_id": scope.OwnerID}).
		Suffix("RETURNING " + studySessionColumns)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, database.MapError(err, "study_session")
	}

	session, err := scanStudySession(scope.Querier(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, database.MapError(err, "study_session")
	}
	return session, nil
}

func (r *studySessionRepository) Remove(ctx context.Context, id uuid.UUID) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return database.ErrNoScope
	}

	tag, err := scope.Querier(ctx).Exec(ctx,
		`DELETE FROM study_sessions WHERE id = $1 AND owner_id = $2`, id, scope.OwnerID)
	if err != nil {
		return database.MapError(err, "study_session")
	}
	if tag.RowsAffected() == 0 {
		return database.MapError(pgx.ErrNoRows, "study_session")
	}
	return nil
}

func scanStudySession(row pgx.Row) (*models.StudySession, error) {
	var session models.StudySession
	err := row.Scan(
		&session.ID,
		&session.OwnerID,
		&session.Subject,
		&session.Notes,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.AssignmentID,
		&session.ExamID,
		&session.IsCompleted,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
