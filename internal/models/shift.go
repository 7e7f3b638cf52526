package models

import (
	"fmt"
	"time"
)

// ShiftType groups shifts by the kind of week they recur in.
type ShiftType string

const (
	ShiftTypeWeekday  ShiftType = "weekday"
	ShiftTypeWeekend  ShiftType = "weekend"
	ShiftTypeRotating ShiftType = "rotating"
)

const clockLayout = "15:04:05"

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Shift is a recurring weekly time block. Times are wall-clock "HH:MM:SS".
type Shift struct {
	ID               string    `db:"id" json:"id"`
	DayOfWeek        int       `db:"day_of_week" json:"day_of_week"`
	StartTime        string    `db:"start_time" json:"start_time"`
	EndTime          string    `db:"end_time" json:"end_time"`
	ShiftType        ShiftType `db:"shift_type" json:"shift_type"`
	RequiredStudents int       `db:"required_students" json:"required_students"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// DayName returns the weekday name, Monday being day 0.
func (s Shift) DayName() string {
	if s.DayOfWeek < 0 || s.DayOfWeek >= len(dayNames) {
		return fmt.Sprintf("day %d", s.DayOfWeek)
	}
	return dayNames[s.DayOfWeek]
}

// Window returns start and end as offsets from midnight.
func (s Shift) Window() (time.Duration, time.Duration, error) {
	start, err := clockOffset(s.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("shift %s start_time: %w", s.ID, err)
	}
	end, err := clockOffset(s.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("shift %s end_time: %w", s.ID, err)
	}
	return start, end, nil
}

func clockOffset(raw string) (time.Duration, error) {
	layout := clockLayout
	if len(raw) == len("15:04") {
		layout = "15:04"
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
}
