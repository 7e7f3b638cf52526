package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

var preferenceRowColumns = []string{"id", "user_id", "desired_hours_per_week", "max_shifts_per_day", "max_shifts_per_week", "can_work_weekends", "can_work_rotating", "notes", "semester", "created_at", "updated_at"}

func TestPreferenceRepositoryUpsertAndList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	mock.ExpectExec("(?s)INSERT INTO student_preferences .* ON CONFLICT \\(user_id, semester\\) DO UPDATE").
		WithArgs(sqlmock.AnyArg(), "u-1", 12.5, 2, 5, true, false, nil, "2024-fall", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	pref := &models.StudentPreference{
		UserID:              "u-1",
		DesiredHoursPerWeek: 12.5,
		MaxShiftsPerDay:     2,
		MaxShiftsPerWeek:    5,
		CanWorkWeekends:     true,
		Semester:            "2024-fall",
	}
	require.NoError(t, repo.Upsert(context.Background(), pref))
	assert.NotEmpty(t, pref.ID)

	now := time.Now()
	rows := sqlmock.NewRows(preferenceRowColumns).
		AddRow(pref.ID, "u-1", 12.5, 2, 5, true, false, nil, "2024-fall", now, now)
	mock.ExpectQuery("SELECT .* FROM student_preferences WHERE semester = \\$1 ORDER BY user_id").
		WithArgs("2024-fall").
		WillReturnRows(rows)

	list, err := repo.ListBySemester(context.Background(), "2024-fall")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 12.5, list[0].DesiredHoursPerWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryFindMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	mock.ExpectQuery("SELECT .* FROM student_preferences WHERE user_id = \\$1 AND semester = \\$2").
		WithArgs("u-1", "2024-fall").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUserSemester(context.Background(), "u-1", "2024-fall")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
