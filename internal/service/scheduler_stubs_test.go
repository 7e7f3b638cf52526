package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
	"github.com/noah-isme/shift-scheduler-api/internal/optimizer"
	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
	"github.com/noah-isme/shift-scheduler-api/pkg/jobs"
)

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type shiftRepoStub struct {
	shifts []models.Shift
	err    error
}

func (s shiftRepoStub) ListActive(ctx context.Context) ([]models.Shift, error) {
	return s.shifts, s.err
}

type studentRepoStub struct {
	students []models.User
}

func (s studentRepoStub) ListActiveStudents(ctx context.Context) ([]models.User, error) {
	return s.students, nil
}

type preferenceListStub struct {
	prefs []models.StudentPreference
}

func (s preferenceListStub) ListBySemester(ctx context.Context, semester string) ([]models.StudentPreference, error) {
	return s.prefs, nil
}

type availabilityListStub struct {
	records []models.Availability
}

func (s availabilityListStub) ListBySemester(ctx context.Context, semester string) ([]models.Availability, error) {
	var out []models.Availability
	for _, r := range s.records {
		if r.Semester == semester {
			out = append(out, r)
		}
	}
	return out, nil
}

type scheduleRepoStub struct {
	mu        sync.Mutex
	items     map[string]*models.Schedule
	created   []*models.Schedule
	deleted   []string
	lastQuery models.ScheduleFilter
	createErr error
}

func newScheduleRepoStub(existing ...models.Schedule) *scheduleRepoStub {
	stub := &scheduleRepoStub{items: map[string]*models.Schedule{}}
	for i := range existing {
		item := existing[i]
		stub.items[item.ID] = &item
	}
	return stub
}

func (s *scheduleRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if schedule.ID == "" {
		schedule.ID = "sch-" + schedule.Semester
	}
	copied := *schedule
	s.items[schedule.ID] = &copied
	s.created = append(s.created, &copied)
	return nil
}

func (s *scheduleRepoStub) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *item
	return &copied, nil
}

func (s *scheduleRepoStub) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = filter
	var out []models.Schedule
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (s *scheduleRepoStub) Publish(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Status = models.ScheduleStatusPublished
	item.PublishedAt = &at
	return nil
}

func (s *scheduleRepoStub) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type assignmentRepoStub struct {
	inserted  []models.ScheduleAssignment
	details   []models.ScheduleAssignmentDetail
	listCalls int
}

func (s *assignmentRepoStub) BulkInsert(ctx context.Context, exec sqlx.ExtContext, assignments []models.ScheduleAssignment) error {
	s.inserted = append(s.inserted, assignments...)
	return nil
}

func (s *assignmentRepoStub) ListDetailed(ctx context.Context, scheduleID string) ([]models.ScheduleAssignmentDetail, error) {
	s.listCalls++
	return s.details, nil
}

type conflictRepoStub struct {
	inserted []models.ScheduleConflict
}

func (s *conflictRepoStub) BulkInsert(ctx context.Context, exec sqlx.ExtContext, conflicts []models.ScheduleConflict) error {
	s.inserted = append(s.inserted, conflicts...)
	return nil
}

func (s *conflictRepoStub) ListBySchedule(ctx context.Context, scheduleID string) ([]models.ScheduleConflict, error) {
	var out []models.ScheduleConflict
	for _, c := range s.inserted {
		if c.ScheduleID == scheduleID {
			out = append(out, c)
		}
	}
	return out, nil
}

type engineStub struct {
	solution optimizer.Solution
	err      error
	calls    int
}

func (e *engineStub) Run(in optimizer.Input) (optimizer.Solution, error) {
	e.calls++
	sol := e.solution
	sol.Period = in.Period
	return sol, e.err
}

type queueStub struct {
	enqueued []jobs.Job
	states   map[string]jobs.State
	err      error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

func (q *queueStub) Status(id string) (jobs.State, bool) {
	state, ok := q.states[id]
	return state, ok
}

type memoryCacheRepo struct {
	mu       sync.Mutex
	items    map[string][]byte
	patterns []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	raw, ok := m.items[key]
	m.mu.Unlock()
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

const testSemester = "2024-fall"

func testShift(id string, day int, start, end string, required int) models.Shift {
	return models.Shift{
		ID:               id,
		DayOfWeek:        day,
		StartTime:        start,
		EndTime:          end,
		ShiftType:        models.ShiftTypeWeekday,
		RequiredStudents: required,
		IsActive:         true,
	}
}

func testStudent(id string) models.User {
	return models.User{ID: id, FullName: "Student " + id, Role: models.RoleStudent, IsActive: true}
}

func testAvailability(userID, shiftID string, rank *int) models.Availability {
	return models.Availability{UserID: userID, ShiftID: shiftID, IsAvailable: true, PreferenceRank: rank, Semester: testSemester}
}

func intPtr(v int) *int { return &v }
