package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
	"github.com/noah-isme/shift-scheduler-api/internal/optimizer"
	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
	"github.com/noah-isme/shift-scheduler-api/pkg/jobs"
)

// JobTypeGenerateSchedule identifies background schedule generation jobs.
const JobTypeGenerateSchedule = "generate_schedule"

type shiftReader interface {
	ListActive(ctx context.Context) ([]models.Shift, error)
}

type studentReader interface {
	ListActiveStudents(ctx context.Context) ([]models.User, error)
}

type preferenceLister interface {
	ListBySemester(ctx context.Context, semester string) ([]models.StudentPreference, error)
}

type availabilityLister interface {
	ListBySemester(ctx context.Context, semester string) ([]models.Availability, error)
}

type scheduleRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	Publish(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type scheduleAssignmentRepository interface {
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, assignments []models.ScheduleAssignment) error
	ListDetailed(ctx context.Context, scheduleID string) ([]models.ScheduleAssignmentDetail, error)
}

type scheduleConflictRepository interface {
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, conflicts []models.ScheduleConflict) error
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.ScheduleConflict, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type scheduleEngine interface {
	Run(in optimizer.Input) (optimizer.Solution, error)
}

type jobQueue interface {
	Enqueue(job jobs.Job) error
	Status(id string) (jobs.State, bool)
}

// ScheduleGeneratorConfig governs generator behaviour.
type ScheduleGeneratorConfig struct {
	ProposalTTL      time.Duration
	AlgorithmVersion string
	CacheTTL         time.Duration
}

// ScheduleGeneratorRepositories groups the persistence dependencies of the generator.
type ScheduleGeneratorRepositories struct {
	Shifts       shiftReader
	Students     studentReader
	Preferences  preferenceLister
	Availability availabilityLister
	Schedules    scheduleRepository
	Assignments  scheduleAssignmentRepository
	Conflicts    scheduleConflictRepository
}

// ScheduleGeneratorService loads scheduling data, runs the assignment engine and
// manages the lifecycle of the resulting schedules.
type ScheduleGeneratorService struct {
	repos     ScheduleGeneratorRepositories
	tx        txProvider
	engine    scheduleEngine
	queue     jobQueue
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	store     *proposalStore
	cfg       ScheduleGeneratorConfig
	now       func() time.Time
}

// NewScheduleGeneratorService wires scheduler dependencies.
func NewScheduleGeneratorService(
	repos ScheduleGeneratorRepositories,
	tx txProvider,
	engine scheduleEngine,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleGeneratorConfig,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.AlgorithmVersion == "" {
		cfg.AlgorithmVersion = "bnb_v1"
	}
	now := func() time.Time { return time.Now().UTC() }
	return &ScheduleGeneratorService{
		repos:     repos,
		tx:        tx,
		engine:    engine,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		store:     newProposalStore(cfg.ProposalTTL, now),
		cfg:       cfg,
		now:       now,
	}
}

// AttachQueue sets the background queue used by EnqueueGeneration.
func (s *ScheduleGeneratorService) AttachQueue(queue jobQueue) {
	s.queue = queue
}

// Generate computes a schedule for the semester and persists it as a draft.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateScheduleRequest, generatedBy string) (*dto.ScheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}
	sol, err := s.compute(ctx, req.Semester)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, sol, generatedBy, req.Notes)
}

// Preview computes a schedule without saving it. The proposal stays
// retrievable for the configured TTL.
func (s *ScheduleGeneratorService) Preview(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.ScheduleProposal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule preview payload")
	}
	sol, err := s.compute(ctx, req.Semester)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now()
	proposal := dto.ScheduleProposal{
		ProposalID:     uuid.NewString(),
		Semester:       sol.Period,
		Status:         sol.Status,
		ObjectiveScore: sol.ObjectiveScore,
		Assignments:    make([]dto.ProposalAssignment, 0, len(sol.Assignments)),
		Warnings:       sol.Warnings,
		Summary:        sol.Summary,
		GeneratedAt:    generatedAt,
		ExpiresAt:      generatedAt.Add(s.cfg.ProposalTTL),
	}
	for _, a := range sol.Assignments {
		proposal.Assignments = append(proposal.Assignments, dto.ProposalAssignment{
			ShiftID:         a.SlotID,
			UserID:          a.WorkerID,
			AssignmentScore: a.AssignmentScore,
		})
	}
	s.store.Save(storedProposal{view: proposal, solution: sol})
	return &proposal, nil
}

// SaveProposal persists a previously previewed proposal as a draft schedule.
func (s *ScheduleGeneratorService) SaveProposal(ctx context.Context, proposalID string, req dto.SaveProposalRequest, generatedBy string) (*dto.ScheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save proposal payload")
	}
	// Take removes the proposal so a concurrent save of the same id gets NotFound.
	proposal, ok := s.store.Take(proposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	result, err := s.persist(ctx, proposal.solution, generatedBy, req.Notes)
	if err != nil {
		s.store.Restore(proposal)
		return nil, err
	}
	return result, nil
}

type generationPayload struct {
	Request     dto.GenerateScheduleRequest
	GeneratedBy string
}

// EnqueueGeneration validates the request and hands it to the background queue.
func (s *ScheduleGeneratorService) EnqueueGeneration(ctx context.Context, req dto.GenerateScheduleRequest, generatedBy string) (*dto.GenerationJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "generation queue unavailable")
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeGenerateSchedule,
		Payload: generationPayload{Request: req, GeneratedBy: generatedBy},
	}
	if err := s.queue.Enqueue(job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue schedule generation")
	}
	s.logger.Info("schedule generation enqueued", zap.String("job_id", job.ID), zap.String("semester", req.Semester))
	return &dto.GenerationJobResponse{JobID: job.ID, Semester: req.Semester, Status: string(jobs.StatusQueued)}, nil
}

// HandleJob runs a queued generation. Outcomes that a retry cannot change fail
// the job permanently.
func (s *ScheduleGeneratorService) HandleJob(ctx context.Context, job jobs.Job) (interface{}, error) {
	payload, ok := job.Payload.(generationPayload)
	if !ok {
		s.metrics.RecordJobOutcome("failed")
		return nil, jobs.Permanent(fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID))
	}
	result, err := s.Generate(ctx, payload.Request, payload.GeneratedBy)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Status < 500 {
			s.metrics.RecordJobOutcome("failed")
			return nil, jobs.Permanent(err)
		}
		s.metrics.RecordJobOutcome("retry")
		return nil, err
	}
	s.metrics.RecordJobOutcome("succeeded")
	return result, nil
}

// JobStatus reports the state of a background generation job.
func (s *ScheduleGeneratorService) JobStatus(jobID string) (*jobs.State, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "generation queue unavailable")
	}
	state, ok := s.queue.Status(jobID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "generation job not found")
	}
	return &state, nil
}

// List returns schedules ordered newest first.
func (s *ScheduleGeneratorService) List(ctx context.Context, query dto.ScheduleQuery) ([]models.Schedule, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule query")
	}
	filter := models.ScheduleFilter{Semester: query.Semester, Page: query.Page, PageSize: query.PageSize}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if query.Status != "" {
		status := models.ScheduleStatus(query.Status)
		filter.Status = &status
	}
	list, total, err := s.repos.Schedules.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return list, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get loads one schedule.
func (s *ScheduleGeneratorService) Get(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	if scheduleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule id is required")
	}
	schedule, err := s.repos.Schedules.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

func assignmentsCacheKey(scheduleID string) string {
	return "schedule:" + scheduleID + ":assignments"
}

// Assignments returns the detailed assignment roster of a schedule.
func (s *ScheduleGeneratorService) Assignments(ctx context.Context, scheduleID string) ([]models.ScheduleAssignmentDetail, error) {
	key := assignmentsCacheKey(scheduleID)
	var cached []models.ScheduleAssignmentDetail
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	if _, err := s.Get(ctx, scheduleID); err != nil {
		return nil, err
	}
	rows, err := s.repos.Assignments.ListDetailed(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule assignments")
	}
	if rows == nil {
		rows = []models.ScheduleAssignmentDetail{}
	}
	_ = s.cache.Set(ctx, key, rows, s.cfg.CacheTTL)
	return rows, nil
}

// Conflicts returns the warnings recorded when the schedule was generated.
func (s *ScheduleGeneratorService) Conflicts(ctx context.Context, scheduleID string) ([]models.ScheduleConflict, error) {
	if _, err := s.Get(ctx, scheduleID); err != nil {
		return nil, err
	}
	conflicts, err := s.repos.Conflicts.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule conflicts")
	}
	if conflicts == nil {
		conflicts = []models.ScheduleConflict{}
	}
	return conflicts, nil
}

// Publish moves a draft schedule to published.
func (s *ScheduleGeneratorService) Publish(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	schedule, err := s.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != models.ScheduleStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrFinalized, fmt.Sprintf("schedule is already %s", schedule.Status))
	}
	publishedAt := s.now()
	if err := s.repos.Schedules.Publish(ctx, scheduleID, publishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish schedule")
	}
	s.invalidate(ctx, scheduleID)

	schedule.Status = models.ScheduleStatusPublished
	schedule.PublishedAt = &publishedAt
	s.logger.Info("schedule published", zap.String("schedule_id", scheduleID), zap.String("semester", schedule.Semester))
	return schedule, nil
}

// Delete removes a schedule together with its assignments and conflicts.
func (s *ScheduleGeneratorService) Delete(ctx context.Context, scheduleID string) (err error) {
	if scheduleID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "schedule id is required")
	}
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.repos.Schedules.Delete(ctx, tx, scheduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
			return err
		}
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule deletion")
		return err
	}
	s.invalidate(ctx, scheduleID)
	return nil
}

func (s *ScheduleGeneratorService) invalidate(ctx context.Context, scheduleID string) {
	_ = s.cache.Invalidate(ctx, "schedule:"+scheduleID+":*")
}

// compute loads the semester data and runs the engine. A search without a
// usable assignment maps to ErrNoSchedule.
func (s *ScheduleGeneratorService) compute(ctx context.Context, semester string) (optimizer.Solution, error) {
	if s.engine == nil {
		return optimizer.Solution{}, appErrors.Clone(appErrors.ErrInternal, "scheduling engine unavailable")
	}
	in, err := s.loadInput(ctx, semester)
	if err != nil {
		return optimizer.Solution{}, err
	}

	sol, err := s.engine.Run(in)
	if err != nil {
		return optimizer.Solution{}, err
	}
	s.metrics.ObserveSolve(string(sol.Status), sol.Elapsed, sol.Nodes, len(sol.Assignments))

	if err := sol.Err(); err != nil {
		s.logger.Warn("schedule generation produced no solution", zap.String("semester", semester), zap.String("status", string(sol.Status)))
		return optimizer.Solution{}, appErrors.Wrap(err, appErrors.ErrNoSchedule.Code, appErrors.ErrNoSchedule.Status, appErrors.ErrNoSchedule.Message)
	}
	return sol, nil
}

func (s *ScheduleGeneratorService) loadInput(ctx context.Context, semester string) (optimizer.Input, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("load_scheduling_input", time.Since(start)) }()

	shifts, err := s.repos.Shifts.ListActive(ctx)
	if err != nil {
		return optimizer.Input{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shifts")
	}
	students, err := s.repos.Students.ListActiveStudents(ctx)
	if err != nil {
		return optimizer.Input{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	prefs, err := s.repos.Preferences.ListBySemester(ctx, semester)
	if err != nil {
		return optimizer.Input{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student preferences")
	}
	availability, err := s.repos.Availability.ListBySemester(ctx, semester)
	if err != nil {
		return optimizer.Input{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	return buildOptimizerInput(semester, shifts, students, prefs, availability)
}

// buildOptimizerInput converts stored rows into engine input.
func buildOptimizerInput(semester string, shifts []models.Shift, students []models.User, prefs []models.StudentPreference, availability []models.Availability) (optimizer.Input, error) {
	in := optimizer.Input{
		Period:       semester,
		Slots:        make([]optimizer.Slot, 0, len(shifts)),
		Workers:      make([]optimizer.Worker, 0, len(students)),
		Availability: make([]optimizer.AvailabilityRecord, 0, len(availability)),
	}
	for _, shift := range shifts {
		start, end, err := shift.Window()
		if err != nil {
			return optimizer.Input{}, appErrors.Wrap(err, appErrors.ErrDataInconsistency.Code, appErrors.ErrDataInconsistency.Status,
				fmt.Sprintf("shift %s has an unreadable time window", shift.ID))
		}
		in.Slots = append(in.Slots, optimizer.Slot{
			ID:               shift.ID,
			DayOfWeek:        shift.DayOfWeek,
			Start:            start,
			End:              end,
			Category:         optimizer.Category(shift.ShiftType),
			RequiredCapacity: shift.RequiredStudents,
			Active:           shift.IsActive,
		})
	}

	profiles := make(map[string]*optimizer.PreferenceProfile, len(prefs))
	for _, pref := range prefs {
		profiles[pref.UserID] = &optimizer.PreferenceProfile{
			DesiredHoursPerWeek: pref.DesiredHoursPerWeek,
			MaxShiftsPerDay:     pref.MaxShiftsPerDay,
			MaxShiftsPerWeek:    pref.MaxShiftsPerWeek,
			AllowsWeekend:       pref.CanWorkWeekends,
			AllowsRotating:      pref.CanWorkRotating,
		}
	}
	for _, student := range students {
		in.Workers = append(in.Workers, optimizer.Worker{
			ID:      student.ID,
			Active:  student.IsActive,
			Profile: profiles[student.ID],
		})
	}

	for _, record := range availability {
		in.Availability = append(in.Availability, optimizer.AvailabilityRecord{
			WorkerID:       record.UserID,
			SlotID:         record.ShiftID,
			IsAvailable:    record.IsAvailable,
			PreferenceRank: record.PreferenceRank,
		})
	}
	return in, nil
}

// persist writes the schedule, its assignments and its warnings in one transaction.
func (s *ScheduleGeneratorService) persist(ctx context.Context, sol optimizer.Solution, generatedBy string, notes *string) (result *dto.ScheduleResult, err error) {
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	summary, marshalErr := json.Marshal(sol.Summary)
	if marshalErr != nil {
		return nil, appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode schedule summary")
	}

	record := &models.Schedule{
		Semester:          sol.Period,
		Status:            models.ScheduleStatusDraft,
		GeneratedAt:       s.now(),
		AlgorithmVersion:  s.cfg.AlgorithmVersion,
		SolverStatus:      string(sol.Status),
		OptimizationScore: float64(sol.ObjectiveScore),
		Summary:           types.JSONText(summary),
		Notes:             notes,
	}
	if generatedBy != "" {
		record.GeneratedBy = &generatedBy
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

	if err = s.repos.Schedules.Create(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
		return nil, err
	}

	assignments := make([]models.ScheduleAssignment, 0, len(sol.Assignments))
	for _, a := range sol.Assignments {
		assignments = append(assignments, models.ScheduleAssignment{
			ScheduleID:      record.ID,
			ShiftID:         a.SlotID,
			UserID:          a.WorkerID,
			AssignmentScore: a.AssignmentScore,
		})
	}
	if err = s.repos.Assignments.BulkInsert(ctx, tx, assignments); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist schedule assignments")
		return nil, err
	}

	conflicts := make([]models.ScheduleConflict, 0, len(sol.Warnings))
	for _, w := range sol.Warnings {
		conflict := models.ScheduleConflict{
			ScheduleID:   record.ID,
			ConflictType: string(w.Kind),
			Severity:     models.ConflictSeverityWarning,
			Description:  w.Message,
		}
		if w.SlotID != "" {
			shiftID := w.SlotID
			conflict.ShiftID = &shiftID
		}
		conflicts = append(conflicts, conflict)
	}
	if err = s.repos.Conflicts.BulkInsert(ctx, tx, conflicts); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist schedule conflicts")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule transaction")
		return nil, err
	}

	s.logger.Info("schedule saved",
		zap.String("schedule_id", record.ID),
		zap.String("semester", record.Semester),
		zap.String("solver_status", record.SolverStatus),
		zap.Int("assignments", len(assignments)),
		zap.Int("conflicts", len(conflicts)),
	)
	warnings := sol.Warnings
	if warnings == nil {
		warnings = []optimizer.Warning{}
	}
	return &dto.ScheduleResult{
		Schedule:    *record,
		Assignments: len(assignments),
		Warnings:    warnings,
		Summary:     sol.Summary,
		Status:      sol.Status,
	}, nil
}

type storedProposal struct {
	view     dto.ScheduleProposal
	solution optimizer.Solution
}

type proposalStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]storedProposal
}

func newProposalStore(ttl time.Duration, now func() time.Time) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		now:   now,
		items: make(map[string]storedProposal),
	}
}

func (s *proposalStore) Save(proposal storedProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, item := range s.items {
		if s.expired(item) {
			delete(s.items, id)
		}
	}
	s.items[proposal.view.ProposalID] = proposal
}

// Take returns the proposal and removes it in one step.
func (s *proposalStore) Take(id string) (storedProposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal, ok := s.items[id]
	if !ok {
		return storedProposal{}, false
	}
	delete(s.items, id)
	if s.expired(proposal) {
		return storedProposal{}, false
	}
	return proposal, true
}

// Restore puts back a taken proposal, unless it expired in the meantime.
func (s *proposalStore) Restore(proposal storedProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expired(proposal) {
		return
	}
	if _, exists := s.items[proposal.view.ProposalID]; !exists {
		s.items[proposal.view.ProposalID] = proposal
	}
}

func (s *proposalStore) expired(proposal storedProposal) bool {
	return s.now().Sub(proposal.view.GeneratedAt) > s.ttl
}
