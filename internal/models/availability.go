package models

import "time"

// Availability records whether a student can take a shift in a semester.
// PreferenceRank runs 1 (most wanted) to 5; nil is neutral.
type Availability struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	ShiftID        string    `db:"shift_id" json:"shift_id"`
	IsAvailable    bool      `db:"is_available" json:"is_available"`
	PreferenceRank *int      `db:"preference_rank" json:"preference_rank,omitempty"`
	Semester       string    `db:"semester" json:"semester"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// StudentPreference is a student's workload profile for one semester.
type StudentPreference struct {
	ID                  string    `db:"id" json:"id"`
	UserID              string    `db:"user_id" json:"user_id"`
	DesiredHoursPerWeek float64   `db:"desired_hours_per_week" json:"desired_hours_per_week"`
	MaxShiftsPerDay     int       `db:"max_shifts_per_day" json:"max_shifts_per_day"`
	MaxShiftsPerWeek    int       `db:"max_shifts_per_week" json:"max_shifts_per_week"`
	CanWorkWeekends     bool      `db:"can_work_weekends" json:"can_work_weekends"`
	CanWorkRotating     bool      `db:"can_work_rotating" json:"can_work_rotating"`
	Notes               *string   `db:"notes" json:"notes,omitempty"`
	Semester            string    `db:"semester" json:"semester"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// ShiftAvailabilityCount aggregates one active shift's availability for a semester.
type ShiftAvailabilityCount struct {
	ShiftID            string    `db:"shift_id" json:"shift_id"`
	DayOfWeek          int       `db:"day_of_week" json:"day_of_week"`
	StartTime          string    `db:"start_time" json:"start_time"`
	EndTime            string    `db:"end_time" json:"end_time"`
	ShiftType          ShiftType `db:"shift_type" json:"shift_type"`
	RequiredStudents   int       `db:"required_students" json:"required_students"`
	AvailableStudents  int       `db:"available_students" json:"available_students"`
	TopPreferenceCount int       `db:"top_preference_count" json:"top_preference_count"`
}
