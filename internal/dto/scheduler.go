package dto

import (
	"time"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
	"github.com/noah-isme/shift-scheduler-api/internal/optimizer"
)

// GenerateScheduleRequest asks the engine to build a schedule for a semester.
type GenerateScheduleRequest struct {
	Semester string  `json:"semester" validate:"required,max=32"`
	Notes    *string `json:"notes" validate:"omitempty,max=1000"`
}

// SaveProposalRequest carries optional notes when persisting a previewed proposal.
type SaveProposalRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=1000"`
}

// ScheduleQuery filters the schedule listing.
type ScheduleQuery struct {
	Semester string `form:"semester"`
	Status   string `form:"status" validate:"omitempty,oneof=draft published archived"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ExportQuery selects the export format.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// ScheduleResult is returned after a schedule has been generated and persisted.
type ScheduleResult struct {
	Schedule    models.Schedule     `json:"schedule"`
	Assignments int                 `json:"assignments"`
	Warnings    []optimizer.Warning `json:"warnings"`
	Summary     optimizer.Summary   `json:"summary"`
	Status      optimizer.Status    `json:"solverStatus"`
}

// ProposalAssignment is a proposed student-to-shift pairing.
type ProposalAssignment struct {
	ShiftID         string   `json:"shiftId"`
	UserID          string   `json:"userId"`
	AssignmentScore *float64 `json:"assignmentScore,omitempty"`
}

// ScheduleProposal is an unsaved generation result kept for a limited time.
type ScheduleProposal struct {
	ProposalID     string               `json:"proposalId"`
	Semester       string               `json:"semester"`
	Status         optimizer.Status     `json:"solverStatus"`
	ObjectiveScore int64                `json:"objectiveScore"`
	Assignments    []ProposalAssignment `json:"assignments"`
	Warnings       []optimizer.Warning  `json:"warnings"`
	Summary        optimizer.Summary    `json:"summary"`
	GeneratedAt    time.Time            `json:"generatedAt"`
	ExpiresAt      time.Time            `json:"expiresAt"`
}

// GenerationJobResponse identifies an accepted background generation.
type GenerationJobResponse struct {
	JobID    string `json:"jobId"`
	Semester string `json:"semester"`
	Status   string `json:"status"`
}

// AvailabilityEntry is one student's availability for one shift.
type AvailabilityEntry struct {
	ShiftID        string `json:"shiftId" validate:"required,uuid"`
	IsAvailable    *bool  `json:"isAvailable" validate:"required"`
	PreferenceRank *int   `json:"preferenceRank" validate:"omitempty,min=1,max=5"`
}

// BulkAvailabilityRequest submits many availability entries for one semester.
type BulkAvailabilityRequest struct {
	Semester       string              `json:"semester" validate:"required,max=32"`
	Availabilities []AvailabilityEntry `json:"availabilities" validate:"required,min=1,max=500,dive"`
}

// AvailabilityEntryError reports why an entry was not stored.
type AvailabilityEntryError struct {
	Index   int    `json:"index"`
	ShiftID string `json:"shiftId"`
	Message string `json:"message"`
}

// BulkAvailabilityResult counts stored entries and lists rejected ones.
type BulkAvailabilityResult struct {
	Created int                      `json:"created"`
	Updated int                      `json:"updated"`
	Errors  []AvailabilityEntryError `json:"errors"`
}

// PreferenceRequest upserts a student's workload profile for a semester.
type PreferenceRequest struct {
	Semester            string  `json:"semester" validate:"required,max=32"`
	DesiredHoursPerWeek float64 `json:"desiredHoursPerWeek" validate:"gt=0,lte=40"`
	MaxShiftsPerDay     int     `json:"maxShiftsPerDay" validate:"min=1,max=3"`
	MaxShiftsPerWeek    int     `json:"maxShiftsPerWeek" validate:"min=1,max=15"`
	CanWorkWeekends     bool    `json:"canWorkWeekends"`
	CanWorkRotating     bool    `json:"canWorkRotating"`
	Notes               *string `json:"notes" validate:"omitempty,max=1000"`
}

// ShiftAvailabilitySummary reports how many students can staff one shift.
type ShiftAvailabilitySummary struct {
	ShiftID             string           `json:"shiftId"`
	DayName             string           `json:"dayName"`
	StartTime           string           `json:"startTime"`
	EndTime             string           `json:"endTime"`
	ShiftType           models.ShiftType `json:"shiftType"`
	AvailableStudents   int              `json:"availableStudents"`
	TopPreferenceCount  int              `json:"topPreferenceCount"`
	RequiredStudents    int              `json:"requiredStudents"`
	IsAdequatelyStaffed bool             `json:"isAdequatelyStaffed"`
}

// AvailabilitySummary is the pre-generation staffing view of a semester.
type AvailabilitySummary struct {
	Semester           string                     `json:"semester"`
	Shifts             []ShiftAvailabilitySummary `json:"shifts"`
	TotalShifts        int                        `json:"totalShifts"`
	UnderstaffedShifts int                        `json:"understaffedShifts"`
}
