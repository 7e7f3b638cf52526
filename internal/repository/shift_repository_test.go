package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shiftRowColumns = []string{"id", "day_of_week", "start_time", "end_time", "shift_type", "required_students", "is_active", "created_at"}

func TestShiftRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShiftRepository(db)

	rows := sqlmock.NewRows(shiftRowColumns).
		AddRow("s-1", 0, "09:00:00", "12:00:00", "weekday", 2, true, time.Now())
	mock.ExpectQuery("SELECT .* FROM shifts WHERE is_active = TRUE ORDER BY day_of_week, start_time").
		WillReturnRows(rows)

	shifts, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, "09:00:00", shifts[0].StartTime)
	assert.Equal(t, 2, shifts[0].RequiredStudents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepositoryFindByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShiftRepository(db)

	rows := sqlmock.NewRows(shiftRowColumns).
		AddRow("s-1", 0, "09:00:00", "12:00:00", "weekday", 2, true, time.Now())
	mock.ExpectQuery("SELECT .* FROM shifts WHERE id IN").
		WithArgs("s-1", "s-404").
		WillReturnRows(rows)

	found, err := repo.FindByIDs(context.Background(), []string{"s-1", "s-404"})
	require.NoError(t, err)
	assert.Contains(t, found, "s-1")
	assert.NotContains(t, found, "s-404")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepositoryFindByIDsEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShiftRepository(db)

	found, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}
