package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
)

type shiftLookup interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Shift, error)
}

type availabilityStore interface {
	ListByUser(ctx context.Context, userID, semester string) ([]models.Availability, error)
	SummaryBySemester(ctx context.Context, semester string) ([]models.ShiftAvailabilityCount, error)
	Upsert(ctx context.Context, exec sqlx.ExtContext, record *models.Availability) (bool, error)
}

type preferenceStore interface {
	FindByUserSemester(ctx context.Context, userID, semester string) (*models.StudentPreference, error)
	Upsert(ctx context.Context, pref *models.StudentPreference) error
}

// AvailabilityService records student availability and workload preferences.
type AvailabilityService struct {
	shifts       shiftLookup
	availability availabilityStore
	preferences  preferenceStore
	tx           txProvider
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewAvailabilityService builds the service.
func NewAvailabilityService(shifts shiftLookup, availability availabilityStore, preferences preferenceStore, tx txProvider, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		shifts:       shifts,
		availability: availability,
		preferences:  preferences,
		tx:           tx,
		validator:    validate,
		logger:       logger,
	}
}

// BulkSubmit upserts the caller's availability entries in one transaction.
// Entries that reference unknown or inactive shifts, or rank an unavailable
// shift, are skipped and reported; the rest are stored.
func (s *AvailabilityService) BulkSubmit(ctx context.Context, userID string, req dto.BulkAvailabilityRequest) (result *dto.BulkAvailabilityResult, err error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user context missing")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	ids := make([]string, 0, len(req.Availabilities))
	for _, entry := range req.Availabilities {
		ids = append(ids, entry.ShiftID)
	}
	known, err := s.shifts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shifts")
	}

	result = &dto.BulkAvailabilityResult{Errors: []dto.AvailabilityEntryError{}}
	records := make([]models.Availability, 0, len(req.Availabilities))
	for i, entry := range req.Availabilities {
		reject := func(message string) {
			result.Errors = append(result.Errors, dto.AvailabilityEntryError{Index: i, ShiftID: entry.ShiftID, Message: message})
		}
		shift, ok := known[entry.ShiftID]
		switch {
		case !ok:
			reject("shift not found")
			continue
		case !shift.IsActive:
			reject("shift is inactive")
			continue
		case !*entry.IsAvailable && entry.PreferenceRank != nil:
			reject("preference rank is only allowed when available")
			continue
		}
		records = append(records, models.Availability{
			UserID:         userID,
			ShiftID:        entry.ShiftID,
			IsAvailable:    *entry.IsAvailable,
			PreferenceRank: entry.PreferenceRank,
			Semester:       req.Semester,
		})
	}
	if len(records) == 0 {
		return result, nil
	}

	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range records {
		inserted, upsertErr := s.availability.Upsert(ctx, tx, &records[i])
		if upsertErr != nil {
			err = appErrors.Wrap(upsertErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store availability")
			return nil, err
		}
		if inserted {
			result.Created++
		} else {
			result.Updated++
		}
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit availability")
		return nil, err
	}

	s.logger.Info("availability submitted",
		zap.String("user_id", userID),
		zap.String("semester", req.Semester),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("rejected", len(result.Errors)),
	)
	return result, nil
}

// ListMine returns the caller's availability for a semester.
func (s *AvailabilityService) ListMine(ctx context.Context, userID, semester string) ([]models.Availability, error) {
	if semester == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester is required")
	}
	records, err := s.availability.ListByUser(ctx, userID, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability")
	}
	if records == nil {
		records = []models.Availability{}
	}
	return records, nil
}

// ListForStudent returns a student's availability for a semester. Admin view.
func (s *AvailabilityService) ListForStudent(ctx context.Context, studentID, semester string) ([]models.Availability, error) {
	if err := s.validator.Var(studentID, "required,uuid"); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student id")
	}
	return s.ListMine(ctx, studentID, semester)
}

// Summary reports, per active shift, how many students are available and
// whether that covers the required headcount.
func (s *AvailabilityService) Summary(ctx context.Context, semester string) (*dto.AvailabilitySummary, error) {
	if semester == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester is required")
	}
	counts, err := s.availability.SummaryBySemester(ctx, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarize availability")
	}

	summary := &dto.AvailabilitySummary{
		Semester:    semester,
		Shifts:      make([]dto.ShiftAvailabilitySummary, 0, len(counts)),
		TotalShifts: len(counts),
	}
	for _, c := range counts {
		shift := models.Shift{ID: c.ShiftID, DayOfWeek: c.DayOfWeek}
		adequate := c.AvailableStudents >= c.RequiredStudents
		if !adequate {
			summary.UnderstaffedShifts++
		}
		summary.Shifts = append(summary.Shifts, dto.ShiftAvailabilitySummary{
			ShiftID:             c.ShiftID,
			DayName:             shift.DayName(),
			StartTime:           c.StartTime,
			EndTime:             c.EndTime,
			ShiftType:           c.ShiftType,
			AvailableStudents:   c.AvailableStudents,
			TopPreferenceCount:  c.TopPreferenceCount,
			RequiredStudents:    c.RequiredStudents,
			IsAdequatelyStaffed: adequate,
		})
	}
	return summary, nil
}

// GetPreferences returns the caller's workload profile for a semester.
func (s *AvailabilityService) GetPreferences(ctx context.Context, userID, semester string) (*models.StudentPreference, error) {
	if semester == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester is required")
	}
	pref, err := s.preferences.FindByUserSemester(ctx, userID, semester)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "preferences not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	return pref, nil
}

// UpsertPreferences stores the caller's workload profile for a semester.
func (s *AvailabilityService) UpsertPreferences(ctx context.Context, userID string, req dto.PreferenceRequest) (*models.StudentPreference, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user context missing")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preference payload")
	}
	if req.MaxShiftsPerDay > req.MaxShiftsPerWeek {
		return nil, appErrors.Clone(appErrors.ErrValidation, "maxShiftsPerDay cannot exceed maxShiftsPerWeek")
	}

	pref := &models.StudentPreference{
		UserID:              userID,
		DesiredHoursPerWeek: req.DesiredHoursPerWeek,
		MaxShiftsPerDay:     req.MaxShiftsPerDay,
		MaxShiftsPerWeek:    req.MaxShiftsPerWeek,
		CanWorkWeekends:     req.CanWorkWeekends,
		CanWorkRotating:     req.CanWorkRotating,
		Notes:               req.Notes,
		Semester:            req.Semester,
	}
	if err := s.preferences.Upsert(ctx, pref); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store preferences")
	}
	s.logger.Info("preferences stored", zap.String("user_id", userID), zap.String("semester", req.Semester))
	return pref, nil
}
