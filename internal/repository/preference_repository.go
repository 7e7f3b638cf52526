package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

const preferenceColumns = `id, user_id, desired_hours_per_week, max_shifts_per_day, max_shifts_per_week, can_work_weekends, can_work_rotating, notes, semester, created_at, updated_at`

// PreferenceRepository persists per-semester student workload profiles.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// ListBySemester returns all profiles stored for a semester.
func (r *PreferenceRepository) ListBySemester(ctx context.Context, semester string) ([]models.StudentPreference, error) {
	query := `SELECT ` + preferenceColumns + ` FROM student_preferences WHERE semester = $1 ORDER BY user_id`
	var prefs []models.StudentPreference
	if err := r.db.SelectContext(ctx, &prefs, query, semester); err != nil {
		return nil, fmt.Errorf("list student preferences: %w", err)
	}
	return prefs, nil
}

// FindByUserSemester loads one student's profile. Returns sql.ErrNoRows when absent.
func (r *PreferenceRepository) FindByUserSemester(ctx context.Context, userID, semester string) (*models.StudentPreference, error) {
	query := `SELECT ` + preferenceColumns + ` FROM student_preferences WHERE user_id = $1 AND semester = $2`
	var pref models.StudentPreference
	if err := r.db.GetContext(ctx, &pref, query, userID, semester); err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert stores the profile, replacing any existing one for the same user and semester.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.StudentPreference) error {
	if pref == nil {
		return fmt.Errorf("preference payload is nil")
	}
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if pref.CreatedAt.IsZero() {
		pref.CreatedAt = now
	}
	pref.UpdatedAt = now

	const query = `
INSERT INTO student_preferences (id, user_id, desired_hours_per_week, max_shifts_per_day, max_shifts_per_week, can_work_weekends, can_work_rotating, notes, semester, created_at, updated_at)
VALUES (:id, :user_id, :desired_hours_per_week, :max_shifts_per_day, :max_shifts_per_week, :can_work_weekends, :can_work_rotating, :notes, :semester, :created_at, :updated_at)
ON CONFLICT (user_id, semester) DO UPDATE SET
	desired_hours_per_week = EXCLUDED.desired_hours_per_week,
	max_shifts_per_day = EXCLUDED.max_shifts_per_day,
	max_shifts_per_week = EXCLUDED.max_shifts_per_week,
	can_work_weekends = EXCLUDED.can_work_weekends,
	can_work_rotating = EXCLUDED.can_work_rotating,
	notes = EXCLUDED.notes,
	updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("upsert student preference: %w", err)
	}
	return nil
}
