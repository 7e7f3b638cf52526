package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

func TestAvailabilityRepositoryUpsertReportsInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery("(?s)INSERT INTO availability .* ON CONFLICT \\(user_id, shift_id, semester\\) DO UPDATE .* RETURNING \\(xmax = 0\\) AS inserted").
		WithArgs(sqlmock.AnyArg(), "u-1", "s-1", true, sqlmock.AnyArg(), "2024-fall", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO availability").
		WithArgs(sqlmock.AnyArg(), "u-1", "s-2", false, nil, "2024-fall", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(false))

	rank := 2
	created, err := repo.Upsert(context.Background(), nil, &models.Availability{
		UserID: "u-1", ShiftID: "s-1", IsAvailable: true, PreferenceRank: &rank, Semester: "2024-fall",
	})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Upsert(context.Background(), nil, &models.Availability{
		UserID: "u-1", ShiftID: "s-2", IsAvailable: false, Semester: "2024-fall",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryListBySemester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "shift_id", "is_available", "preference_rank", "semester", "created_at", "updated_at"}).
		AddRow("a-1", "u-1", "s-1", true, 1, "2024-fall", now, now).
		AddRow("a-2", "u-2", "s-1", true, nil, "2024-fall", now, now)
	mock.ExpectQuery("SELECT .* FROM availability WHERE semester = \\$1").
		WithArgs("2024-fall").
		WillReturnRows(rows)

	list, err := repo.ListBySemester(context.Background(), "2024-fall")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].PreferenceRank)
	assert.Equal(t, 1, *list[0].PreferenceRank)
	assert.Nil(t, list[1].PreferenceRank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "shift_id", "is_available", "preference_rank", "semester", "created_at", "updated_at"}).
		AddRow("a-1", "u-1", "s-1", false, nil, "2024-fall", now, now)
	mock.ExpectQuery("SELECT .* FROM availability WHERE user_id = \\$1 AND semester = \\$2 ORDER BY shift_id").
		WithArgs("u-1", "2024-fall").
		WillReturnRows(rows)

	list, err := repo.ListByUser(context.Background(), "u-1", "2024-fall")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositorySummaryBySemester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	rows := sqlmock.NewRows([]string{"shift_id", "day_of_week", "start_time", "end_time", "shift_type", "required_students", "available_students", "top_preference_count"}).
		AddRow("s-1", 0, "09:00:00", "13:00:00", "weekday", 2, 3, 1).
		AddRow("s-2", 5, "10:00:00", "14:00:00", "weekend", 2, 0, 0)
	mock.ExpectQuery("(?s)SELECT s\\.id AS shift_id.*COUNT\\(a\\.id\\) FILTER \\(WHERE a\\.is_available\\) AS available_students.*" +
		"FILTER \\(WHERE a\\.is_available AND a\\.preference_rank = 1\\) AS top_preference_count.*" +
		"FROM shifts s\\s+LEFT JOIN availability a ON a\\.shift_id = s\\.id AND a\\.semester = \\$1\\s+WHERE s\\.is_active = TRUE").
		WithArgs("2024-fall").
		WillReturnRows(rows)

	counts, err := repo.SummaryBySemester(context.Background(), "2024-fall")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.ShiftAvailabilityCount{
		ShiftID: "s-1", DayOfWeek: 0, StartTime: "09:00:00", EndTime: "13:00:00", ShiftType: models.ShiftTypeWeekday,
		RequiredStudents: 2, AvailableStudents: 3, TopPreferenceCount: 1,
	}, counts[0])
	assert.Equal(t, 0, counts[1].AvailableStudents)
	assert.NoError(t, mock.ExpectationsWereMet())
}
