package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// ScheduleConflictRepository stores generation warnings attached to a schedule.
type ScheduleConflictRepository struct {
	db *sqlx.DB
}

// NewScheduleConflictRepository constructs repository.
func NewScheduleConflictRepository(db *sqlx.DB) *ScheduleConflictRepository {
	return &ScheduleConflictRepository{db: db}
}

func (r *ScheduleConflictRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BulkInsert writes the conflicts in one statement.
func (r *ScheduleConflictRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, conflicts []models.ScheduleConflict) error {
	if len(conflicts) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range conflicts {
		if conflicts[i].ID == "" {
			conflicts[i].ID = uuid.NewString()
		}
		if conflicts[i].CreatedAt.IsZero() {
			conflicts[i].CreatedAt = now
		}
	}

	const query = `
INSERT INTO schedule_conflicts (id, schedule_id, conflict_type, severity, shift_id, user_id, description, resolved, resolved_at, created_at)
VALUES (:id, :schedule_id, :conflict_type, :severity, :shift_id, :user_id, :description, :resolved, :resolved_at, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, conflicts); err != nil {
		return fmt.Errorf("insert schedule conflicts: %w", err)
	}
	return nil
}

// ListBySchedule returns the conflicts recorded for a schedule.
func (r *ScheduleConflictRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]models.ScheduleConflict, error) {
	const query = `SELECT id, schedule_id, conflict_type, severity, shift_id, user_id, description, resolved, resolved_at, created_at
FROM schedule_conflicts WHERE schedule_id = $1 ORDER BY created_at, id`
	var conflicts []models.ScheduleConflict
	if err := r.db.SelectContext(ctx, &conflicts, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list schedule conflicts: %w", err)
	}
	return conflicts, nil
}
