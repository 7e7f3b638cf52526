package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
	"github.com/noah-isme/shift-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
	"github.com/noah-isme/shift-scheduler-api/pkg/jobs"
	"github.com/noah-isme/shift-scheduler-api/pkg/response"
)

type scheduleService interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest, generatedBy string) (*dto.ScheduleResult, error)
	Preview(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.ScheduleProposal, error)
	SaveProposal(ctx context.Context, proposalID string, req dto.SaveProposalRequest, generatedBy string) (*dto.ScheduleResult, error)
	EnqueueGeneration(ctx context.Context, req dto.GenerateScheduleRequest, generatedBy string) (*dto.GenerationJobResponse, error)
	JobStatus(jobID string) (*jobs.State, error)
	List(ctx context.Context, query dto.ScheduleQuery) ([]models.Schedule, *models.Pagination, error)
	Get(ctx context.Context, scheduleID string) (*models.Schedule, error)
	Assignments(ctx context.Context, scheduleID string) ([]models.ScheduleAssignmentDetail, error)
	Conflicts(ctx context.Context, scheduleID string) ([]models.ScheduleConflict, error)
	Publish(ctx context.Context, scheduleID string) (*models.Schedule, error)
	Delete(ctx context.Context, scheduleID string) error
}

type rosterExporter interface {
	ExportRoster(ctx context.Context, scheduleID, format string) (*service.ExportFile, error)
}

// ScheduleHandler exposes schedule generation and lifecycle endpoints.
type ScheduleHandler struct {
	schedules scheduleService
	exports   rosterExporter
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(schedules scheduleService, exports rosterExporter) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, exports: exports}
}

func callerID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// Generate godoc
// @Summary Generate and store a draft schedule
// @Description Runs the assignment engine for the semester and persists the result as a draft.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generate schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if !bindJSON(c, &req, "invalid schedule generation payload") {
		return
	}
	result, err := h.schedules.Generate(c.Request.Context(), req, callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GenerateAsync godoc
// @Summary Queue schedule generation
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generate schedule payload"
// @Success 202 {object} response.Envelope
// @Router /schedules/generate/async [post]
func (h *ScheduleHandler) GenerateAsync(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if !bindJSON(c, &req, "invalid schedule generation payload") {
		return
	}
	job, err := h.schedules.EnqueueGeneration(c.Request.Context(), req, callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// JobStatus godoc
// @Summary Get background generation status
// @Tags Schedules
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/jobs/{jobId} [get]
func (h *ScheduleHandler) JobStatus(c *gin.Context) {
	state, err := h.schedules.JobStatus(c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Preview godoc
// @Summary Compute a schedule proposal without saving it
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generate schedule payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/preview [post]
func (h *ScheduleHandler) Preview(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if !bindJSON(c, &req, "invalid schedule preview payload") {
		return
	}
	proposal, err := h.schedules.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, nil, map[string]interface{}{"mode": "preview"})
}

// SaveProposal godoc
// @Summary Persist a previewed proposal as a draft schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param proposalId path string true "Proposal ID"
// @Param payload body dto.SaveProposalRequest false "Notes"
// @Success 201 {object} response.Envelope
// @Router /schedules/preview/{proposalId}/save [post]
func (h *ScheduleHandler) SaveProposal(c *gin.Context) {
	var req dto.SaveProposalRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "invalid save proposal payload") {
		return
	}
	result, err := h.schedules.SaveProposal(c.Request.Context(), c.Param("proposalId"), req, callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List schedules
// @Tags Schedules
// @Produce json
// @Param semester query string false "Semester"
// @Param status query string false "draft, published or archived"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var query dto.ScheduleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	list, pagination, err := h.schedules.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, pagination)
}

// Get godoc
// @Summary Get a schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.schedules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Assignments godoc
// @Summary List the assignments of a schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/assignments [get]
func (h *ScheduleHandler) Assignments(c *gin.Context) {
	rows, err := h.schedules.Assignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Conflicts godoc
// @Summary List the warnings recorded for a schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/conflicts [get]
func (h *ScheduleHandler) Conflicts(c *gin.Context) {
	rows, err := h.schedules.Conflicts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Export godoc
// @Summary Download the schedule roster
// @Tags Schedules
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Schedule ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /schedules/{id}/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	file, err := h.exports.ExportRoster(c.Request.Context(), c.Param("id"), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Publish godoc
// @Summary Publish a draft schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules/{id}/publish [post]
func (h *ScheduleHandler) Publish(c *gin.Context) {
	schedule, err := h.schedules.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete a schedule with its assignments and conflicts
// @Tags Schedules
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.schedules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
