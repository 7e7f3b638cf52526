package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

const shiftColumns = `id, day_of_week, start_time::text AS start_time, end_time::text AS end_time, shift_type, required_students, is_active, created_at`

// ShiftRepository reads recurring shift definitions.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository constructs repository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// ListActive returns active shifts ordered by day and start time.
func (r *ShiftRepository) ListActive(ctx context.Context) ([]models.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE is_active = TRUE ORDER BY day_of_week, start_time`
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query); err != nil {
		return nil, fmt.Errorf("list active shifts: %w", err)
	}
	return shifts, nil
}

// FindByIDs loads the shifts matching ids keyed by id. Unknown ids are absent.
func (r *ShiftRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Shift, error) {
	result := make(map[string]models.Shift, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT `+shiftColumns+` FROM shifts WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build shift lookup: %w", err)
	}
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("find shifts: %w", err)
	}
	for _, shift := range shifts {
		result[shift.ID] = shift
	}
	return result, nil
}
