package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

const availabilityColumns = `id, user_id, shift_id, is_available, preference_rank, semester, created_at, updated_at`

// AvailabilityRepository persists student availability per shift and semester.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListBySemester returns every record of a semester ordered by student then shift.
func (r *AvailabilityRepository) ListBySemester(ctx context.Context, semester string) ([]models.Availability, error) {
	query := `SELECT ` + availabilityColumns + ` FROM availability WHERE semester = $1 ORDER BY user_id, shift_id, updated_at`
	var rows []models.Availability
	if err := r.db.SelectContext(ctx, &rows, query, semester); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return rows, nil
}

// ListByUser returns one student's records for a semester.
func (r *AvailabilityRepository) ListByUser(ctx context.Context, userID, semester string) ([]models.Availability, error) {
	query := `SELECT ` + availabilityColumns + ` FROM availability WHERE user_id = $1 AND semester = $2 ORDER BY shift_id`
	var rows []models.Availability
	if err := r.db.SelectContext(ctx, &rows, query, userID, semester); err != nil {
		return nil, fmt.Errorf("list user availability: %w", err)
	}
	return rows, nil
}

// SummaryBySemester counts, per active shift, the students available for it in
// a semester and how many of them ranked it first.
func (r *AvailabilityRepository) SummaryBySemester(ctx context.Context, semester string) ([]models.ShiftAvailabilityCount, error) {
	const query = `
SELECT s.id AS shift_id, s.day_of_week, s.start_time, s.end_time, s.shift_type, s.required_students,
	COUNT(a.id) FILTER (WHERE a.is_available) AS available_students,
	COUNT(a.id) FILTER (WHERE a.is_available AND a.preference_rank = 1) AS top_preference_count
FROM shifts s
LEFT JOIN availability a ON a.shift_id = s.id AND a.semester = $1
WHERE s.is_active = TRUE
GROUP BY s.id, s.day_of_week, s.start_time, s.end_time, s.shift_type, s.required_students
ORDER BY s.day_of_week, s.start_time, s.id`
	var rows []models.ShiftAvailabilityCount
	if err := r.db.SelectContext(ctx, &rows, query, semester); err != nil {
		return nil, fmt.Errorf("summarize availability: %w", err)
	}
	return rows, nil
}

// Upsert inserts or replaces the record for (user, shift, semester) and reports
// whether a new row was created.
func (r *AvailabilityRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, record *models.Availability) (bool, error) {
	if record == nil {
		return false, fmt.Errorf("availability payload is nil")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `
INSERT INTO availability (id, user_id, shift_id, is_available, preference_rank, semester, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id, shift_id, semester) DO UPDATE SET
	is_available = EXCLUDED.is_available,
	preference_rank = EXCLUDED.preference_rank,
	updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0) AS inserted`
	var inserted bool
	err := sqlx.GetContext(ctx, r.exec(exec), &inserted, query,
		record.ID, record.UserID, record.ShiftID, record.IsAvailable, record.PreferenceRank, record.Semester, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("upsert availability: %w", err)
	}
	return inserted, nil
}
