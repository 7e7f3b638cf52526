package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

const scheduleColumns = `id, semester, status, generated_at, published_at, generated_by, algorithm_version, solver_status, optimization_score, summary, notes, created_at`

// ScheduleRepository persists generated schedules and owns their cascade.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a schedule header row.
func (r *ScheduleRepository) Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error {
	if schedule == nil {
		return fmt.Errorf("schedule payload is nil")
	}
	if schedule.Semester == "" {
		return fmt.Errorf("semester is required")
	}
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.Status == "" {
		schedule.Status = models.ScheduleStatusDraft
	}
	if len(schedule.Summary) == 0 {
		schedule.Summary = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if schedule.GeneratedAt.IsZero() {
		schedule.GeneratedAt = now
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}

	const query = `
INSERT INTO schedules (id, semester, status, generated_at, published_at, generated_by, algorithm_version, solver_status, optimization_score, summary, notes, created_at)
VALUES (:id, :semester, :status, :generated_at, :published_at, :generated_by, :algorithm_version, :solver_status, :optimization_score, :summary, :notes, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, schedule); err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// FindByID loads a schedule by its identifier.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// List returns a page of schedules, newest first, with the total count.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Semester != "" {
		args = append(args, filter.Semester)
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM schedules`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`SELECT %s FROM schedules%s ORDER BY generated_at DESC LIMIT $%d OFFSET $%d`,
		scheduleColumns, where, len(args)-1, len(args))

	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, total, nil
}

// Publish marks a schedule published at the given time.
func (r *ScheduleRepository) Publish(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE schedules SET status = $1, published_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, models.ScheduleStatusPublished, at, id)
	if err != nil {
		return fmt.Errorf("publish schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("schedule publish rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a schedule together with every assignment and conflict it owns.
func (r *ScheduleRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	target := r.exec(exec)
	if _, err := target.ExecContext(ctx, `DELETE FROM schedule_assignments WHERE schedule_id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule assignments: %w", err)
	}
	if _, err := target.ExecContext(ctx, `DELETE FROM schedule_conflicts WHERE schedule_id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule conflicts: %w", err)
	}
	result, err := target.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("schedule rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
