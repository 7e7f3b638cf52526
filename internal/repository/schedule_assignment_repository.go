package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// ScheduleAssignmentRepository stores the student-to-shift rows of a schedule.
type ScheduleAssignmentRepository struct {
	db *sqlx.DB
}

// NewScheduleAssignmentRepository constructs repository.
func NewScheduleAssignmentRepository(db *sqlx.DB) *ScheduleAssignmentRepository {
	return &ScheduleAssignmentRepository{db: db}
}

func (r *ScheduleAssignmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BulkInsert writes all assignments in one statement.
func (r *ScheduleAssignmentRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, assignments []models.ScheduleAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range assignments {
		if assignments[i].ID == "" {
			assignments[i].ID = uuid.NewString()
		}
		if assignments[i].CreatedAt.IsZero() {
			assignments[i].CreatedAt = now
		}
		assignments[i].UpdatedAt = now
	}

	const query = `
INSERT INTO schedule_assignments (id, schedule_id, shift_id, user_id, week_number, is_manual_override, assignment_score, notes, created_at, updated_at)
VALUES (:id, :schedule_id, :shift_id, :user_id, :week_number, :is_manual_override, :assignment_score, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, assignments); err != nil {
		return fmt.Errorf("insert schedule assignments: %w", err)
	}
	return nil
}

// ListDetailed returns a schedule's assignments joined with student and shift data.
func (r *ScheduleAssignmentRepository) ListDetailed(ctx context.Context, scheduleID string) ([]models.ScheduleAssignmentDetail, error) {
	const query = `
SELECT a.id, a.schedule_id, a.shift_id, a.user_id, a.week_number, a.is_manual_override, a.assignment_score, a.notes, a.created_at, a.updated_at,
	u.full_name, u.email, s.day_of_week, s.start_time::text AS start_time, s.end_time::text AS end_time, s.shift_type
FROM schedule_assignments a
JOIN users u ON u.id = a.user_id
JOIN shifts s ON s.id = a.shift_id
WHERE a.schedule_id = $1
ORDER BY s.day_of_week, s.start_time, u.full_name`
	var rows []models.ScheduleAssignmentDetail
	if err := r.db.SelectContext(ctx, &rows, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list schedule assignments: %w", err)
	}
	return rows, nil
}
