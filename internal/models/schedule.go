package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScheduleStatus represents lifecycle phases for generated schedules.
type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "draft"
	ScheduleStatusPublished ScheduleStatus = "published"
	ScheduleStatusArchived  ScheduleStatus = "archived"
)

// Schedule is one generated assignment set for a semester. It owns its
// assignment and conflict rows.
type Schedule struct {
	ID                string         `db:"id" json:"id"`
	Semester          string         `db:"semester" json:"semester"`
	Status            ScheduleStatus `db:"status" json:"status"`
	GeneratedAt       time.Time      `db:"generated_at" json:"generated_at"`
	PublishedAt       *time.Time     `db:"published_at" json:"published_at,omitempty"`
	GeneratedBy       *string        `db:"generated_by" json:"generated_by,omitempty"`
	AlgorithmVersion  string         `db:"algorithm_version" json:"algorithm_version"`
	SolverStatus      string         `db:"solver_status" json:"solver_status"`
	OptimizationScore float64        `db:"optimization_score" json:"optimization_score"`
	Summary           types.JSONText `db:"summary" json:"summary"`
	Notes             *string        `db:"notes" json:"notes,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// ScheduleFilter narrows schedule listings.
type ScheduleFilter struct {
	Semester string
	Status   *ScheduleStatus
	Page     int
	PageSize int
}

// ScheduleAssignment places a student on a shift within a schedule.
type ScheduleAssignment struct {
	ID               string    `db:"id" json:"id"`
	ScheduleID       string    `db:"schedule_id" json:"schedule_id"`
	ShiftID          string    `db:"shift_id" json:"shift_id"`
	UserID           string    `db:"user_id" json:"user_id"`
	WeekNumber       *int      `db:"week_number" json:"week_number,omitempty"`
	IsManualOverride bool      `db:"is_manual_override" json:"is_manual_override"`
	AssignmentScore  *float64  `db:"assignment_score" json:"assignment_score,omitempty"`
	Notes            *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleAssignmentDetail joins an assignment with its student and shift.
type ScheduleAssignmentDetail struct {
	ScheduleAssignment
	FullName  string    `db:"full_name" json:"full_name"`
	Email     string    `db:"email" json:"email"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	ShiftType ShiftType `db:"shift_type" json:"shift_type"`
}

// ConflictSeverity grades a schedule conflict.
type ConflictSeverity string

const (
	ConflictSeverityError   ConflictSeverity = "error"
	ConflictSeverityWarning ConflictSeverity = "warning"
	ConflictSeverityInfo    ConflictSeverity = "info"
)

// ScheduleConflict is an issue found while generating a schedule.
type ScheduleConflict struct {
	ID           string           `db:"id" json:"id"`
	ScheduleID   string           `db:"schedule_id" json:"schedule_id"`
	ConflictType string           `db:"conflict_type" json:"conflict_type"`
	Severity     ConflictSeverity `db:"severity" json:"severity"`
	ShiftID      *string          `db:"shift_id" json:"shift_id,omitempty"`
	UserID       *string          `db:"user_id" json:"user_id,omitempty"`
	Description  string           `db:"description" json:"description"`
	Resolved     bool             `db:"resolved" json:"resolved"`
	ResolvedAt   *time.Time       `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}
