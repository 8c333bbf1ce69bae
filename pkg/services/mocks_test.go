package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/planora-ai/planora-engine/pkg/apperrors"
	"github.com/planora-ai/planora-engine/pkg/models"
)

// Mocks follow the function-field pattern: set a field to control behavior,
// leave it nil for a reasonable default. Call counts allow verification.

type mockEventRepo struct {
	CreateFunc     func(ctx context.Context, event *models.Event) error
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListFunc       func(ctx context.Context, filter *models.EventFilter) ([]*models.Event, error)
	UpdateFunc     func(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Event, error)
	DeactivateFunc func(ctx context.Context, id uuid.UUID) (*models.Event, error)

	CreateCalls     int
	DeactivateCalls int

	// LastUpdates captures the column map from the most recent Update call.
	LastUpdates map[string]any
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	event.ID = uuid.New()
	event.IsActive = true
	event.CreatedAt = time.Now().UTC()
	event.UpdatedAt = event.CreatedAt
	return nil
}

func (m *mockEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockEventRepo) List(ctx context.Context, filter *models.EventFilter) ([]*models.Event, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockEventRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Event, error) {
	m.LastUpdates = updates
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return &models.Event{ID: id, IsActive: true}, nil
}

func (m *mockEventRepo) Deactivate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	m.DeactivateCalls++
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id)
	}
	return &models.Event{ID: id, IsActive: false}, nil
}

type mockAssignmentRepo struct {
	CreateFunc  func(ctx context.Context, assignment *models.Assignment) error
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	ListFunc    func(ctx context.Context, filter *models.AssignmentFilter) ([]*models.Assignment, error)
	UpdateFunc  func(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Assignment, error)
	RemoveFunc  func(ctx context.Context, id uuid.UUID) error

	RemoveCalls int
	LastUpdates map[string]any
}

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, assignment)
	}
	assignment.ID = uuid.New()
	if assignment.Priority == "" {
		assignment.Priority = models.PriorityMedium
	}
	return nil
}

func (m *mockAssignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockAssignmentRepo) List(ctx context.Context, filter *models.AssignmentFilter) ([]*models.Assignment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Assignment, error) {
	m.LastUpdates = updates
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return &models.Assignment{ID: id}, nil
}

func (m *mockAssignmentRepo) Remove(ctx context.Context, id uuid.UUID) error {
	m.RemoveCalls++
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, id)
	}
	return nil
}

type mockCourseRepo struct {
	CreateFunc     func(ctx context.Context, course *models.Course) error
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListFunc       func(ctx context.Context, filter *models.CourseFilter) ([]*models.Course, error)
	UpdateFunc     func(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Course, error)
	DeactivateFunc func(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, course)
	}
	course.ID = uuid.New()
	course.IsActive = true
	return nil
}

func (m *mockCourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockCourseRepo) List(ctx context.Context, filter *models.CourseFilter) ([]*models.Course, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockCourseRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Course, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return &models.Course{ID: id, IsActive: true}, nil
}

func (m *mockCourseRepo) Deactivate(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id)
	}
	return &models.Course{ID: id, IsActive: false}, nil
}

type mockSemesterRepo struct {
	CreateFunc     func(ctx context.Context, semester *models.Semester) error
	GetCurrentFunc func(ctx context.Context, day time.Time) (*models.Semester, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.Semester, error)

	CreateCalls int

	// LastCreated captures the semester from the most recent Create call.
	LastCreated *models.Semester
}

func (m *mockSemesterRepo) Create(ctx context.Context, semester *models.Semester) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, semester)
	}
	semester.ID = uuid.New()
	m.LastCreated = semester
	return nil
}

func (m *mockSemesterRepo) GetCurrent(ctx context.Context, day time.Time) (*models.Semester, error) {
	if m.GetCurrentFunc != nil {
		return m.GetCurrentFunc(ctx, day)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockSemesterRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Semester, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

// mockAuditRepo is an in-memory ledger. Append enforces idempotency-key
// uniqueness the way the real partial unique index does.
type mockAuditRepo struct {
	AppendFunc func(ctx context.Context, record *models.AuditRecord) error

	Records []*models.AuditRecord
}

func (m *mockAuditRepo) Append(ctx context.Context, record *models.AuditRecord) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, record)
	}
	if record.IdempotencyKey != nil {
		for _, existing := range m.Records {
			if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *record.IdempotencyKey {
				return apperrors.ErrDuplicateKey
			}
		}
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	m.Records = append(m.Records, record)
	return nil
}

func (m *mockAuditRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.AuditRecord, error) {
	for _, record := range m.Records {
		if record.IdempotencyKey != nil && *record.IdempotencyKey == key {
			return record, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockAuditRepo) ListByOwner(ctx context.Context, limit int) ([]*models.AuditRecord, error) {
	if limit > len(m.Records) {
		limit = len(m.Records)
	}
	return m.Records[:limit], nil
}

func (m *mockAuditRepo) ListByEntity(ctx context.Context, kind models.EntityKind, entityID uuid.UUID) ([]*models.AuditRecord, error) {
	var out []*models.AuditRecord
	for _, record := range m.Records {
		if record.EntityKind == kind && record.EntityID != nil && *record.EntityID == entityID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *mockAuditRepo) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*models.AuditRecord, error) {
	var out []*models.AuditRecord
	for _, record := range m.Records {
		if record.TransactionID != nil && *record.TransactionID == transactionID {
			out = append(out, record)
		}
	}
	return out, nil
}

// stubHandler is an EntityHandler whose behavior is set per test.
type stubHandler struct {
	CreateFunc func(ctx context.Context, payload json.RawMessage) (*HandlerResult, error)
	ReadFunc   func(ctx context.Context, payload json.RawMessage) (*HandlerResult, error)
	UpdateFunc func(ctx context.Context, payload json.RawMessage) (*HandlerResult, error)
	DeleteFunc func(ctx context.Context, payload json.RawMessage) (*HandlerResult, error)

	CreateCalls int
}

func (s *stubHandler) Create(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	s.CreateCalls++
	if s.CreateFunc != nil {
		return s.CreateFunc(ctx, payload)
	}
	id := uuid.New()
	return &HandlerResult{Data: map[string]string{"id": id.String()}, EntityID: &id}, nil
}

func (s *stubHandler) Read(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	if s.ReadFunc != nil {
		return s.ReadFunc(ctx, payload)
	}
	return &HandlerResult{Data: []string{}}, nil
}

func (s *stubHandler) Update(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	if s.UpdateFunc != nil {
		return s.UpdateFunc(ctx, payload)
	}
	return &HandlerResult{}, nil
}

func (s *stubHandler) Delete(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	if s.DeleteFunc != nil {
		return s.DeleteFunc(ctx, payload)
	}
	return &HandlerResult{}, nil
}

// passthroughTx runs the function directly; unit tests have no real
// transaction to open.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordingPublisher captures published audit records.
type recordingPublisher struct {
	Published []*models.AuditRecord
	Err       error
}

func (p *recordingPublisher) PublishAuditRecord(ctx context.Context, record *models.AuditRecord) error {
	if p.Err != nil {
		return p.Err
	}
	p.Published = append(p.Published, record)
	return nil
}

type mockExamRepo struct {
	CreateFunc  func(ctx context.Context, exam *models.Exam) error
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*models.Exam, error)
	ListFunc    func(ctx context.Context, filter *models.ExamFilter) ([]*models.Exam, error)
	UpdateFunc  func(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Exam, error)
	RemoveFunc  func(ctx context.Context, id uuid.UUID) error

	RemoveCalls int
	LastUpdates map[string]any
}

func (m *mockExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, exam)
	}
	exam.ID = uuid.New()
	return nil
}

func (m *mockExamRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Exam, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockExamRepo) List(ctx context.Context, filter *models.ExamFilter) ([]*models.Exam, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockExamRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Exam, error) {
	m.LastUpdates = updates
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return &models.Exam{ID: id}, nil
}

func (m *mockExamRepo) Remove(ctx context.Context, id uuid.UUID) error {
	m.RemoveCalls++
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, id)
	}
	return nil
}

type mockStudySessionRepo struct {
	CreateFunc  func(ctx context.Context, session *models.StudySession) error
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*models.StudySession, error)
	ListFunc    func(ctx context.Context, filter *models.StudySessionFilter) ([]*models.StudySession, error)
	UpdateFunc  func(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.StudySession, error)
	RemoveFunc  func(ctx context.Context, id uuid.UUID) error

	RemoveCalls int
	LastUpdates map[string]any
}

func (m *mockStudySessionRepo) Create(ctx context.Context, session *models.StudySession) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	session.ID = uuid.New()
	return nil
}

func (m *mockStudySessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.StudySession, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockStudySessionRepo) List(ctx context.Context, filter *models.StudySessionFilter) ([]*models.StudySession, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockStudySessionRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.StudySession, error) {
	m.LastUpdates = updates
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return &models.StudySession{ID: id}, nil
}

func (m *mockStudySessionRepo) Remove(ctx context.Context, id uuid.UUID) error {
	m.RemoveCalls++
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, id)
	}
	return nil
}
