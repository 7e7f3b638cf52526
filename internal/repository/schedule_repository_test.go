package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

var scheduleRowColumns = []string{"id", "semester", "status", "generated_at", "published_at", "generated_by", "algorithm_version", "solver_status", "optimization_score", "summary", "notes", "created_at"}

func TestScheduleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedules")).
		WithArgs(sqlmock.AnyArg(), "2024-fall", string(models.ScheduleStatusDraft), sqlmock.AnyArg(), nil, nil, "bnb_v1", "OPTIMAL", 8904.0, sqlmock.AnyArg(), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	schedule := &models.Schedule{
		Semester:          "2024-fall",
		AlgorithmVersion:  "bnb_v1",
		SolverStatus:      "OPTIMAL",
		OptimizationScore: 8904,
	}
	require.NoError(t, repo.Create(context.Background(), nil, schedule))
	assert.NotEmpty(t, schedule.ID)
	assert.Equal(t, models.ScheduleStatusDraft, schedule.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateRequiresSemester(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	assert.Error(t, repo.Create(context.Background(), nil, &models.Schedule{}))
}

func TestScheduleRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedules WHERE semester = $1")).
		WithArgs("2024-fall").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	now := time.Now()
	rows := sqlmock.NewRows(scheduleRowColumns).
		AddRow("sch-1", "2024-fall", "draft", now, nil, "admin-1", "bnb_v1", "OPTIMAL", 100.0, []byte(`{}`), nil, now)
	mock.ExpectQuery("SELECT .* FROM schedules WHERE semester = \\$1 ORDER BY generated_at DESC LIMIT \\$2 OFFSET \\$3").
		WithArgs("2024-fall", 2, 2).
		WillReturnRows(rows)

	list, total, err := repo.List(context.Background(), models.ScheduleFilter{Semester: "2024-fall", Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].GeneratedBy)
	assert.Equal(t, "admin-1", *list[0].GeneratedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryPublishNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedules SET status = $1, published_at = $2 WHERE id = $3")).
		WithArgs(string(models.ScheduleStatusPublished), sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Publish(context.Background(), "missing", time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_assignments WHERE schedule_id = $1")).
		WithArgs("sch-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_conflicts WHERE schedule_id = $1")).
		WithArgs("sch-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedules WHERE id = $1")).
		WithArgs("sch-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(context.Background(), tx, "sch-1"))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("DELETE FROM schedule_assignments").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM schedule_conflicts").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM schedules WHERE").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), nil, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
