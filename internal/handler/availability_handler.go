package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
	"github.com/noah-isme/shift-scheduler-api/pkg/response"
)

type availabilityService interface {
	BulkSubmit(ctx context.Context, userID string, req dto.BulkAvailabilityRequest) (*dto.BulkAvailabilityResult, error)
	ListMine(ctx context.Context, userID, semester string) ([]models.Availability, error)
	ListForStudent(ctx context.Context, studentID, semester string) ([]models.Availability, error)
	Summary(ctx context.Context, semester string) (*dto.AvailabilitySummary, error)
	GetPreferences(ctx context.Context, userID, semester string) (*models.StudentPreference, error)
	UpsertPreferences(ctx context.Context, userID string, req dto.PreferenceRequest) (*models.StudentPreference, error)
}

// AvailabilityHandler lets students manage their availability and workload profile.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// BulkSubmit godoc
// @Summary Submit availability for many shifts
// @Description Entries that cannot be stored are reported individually; the rest are saved.
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.BulkAvailabilityRequest true "Availability entries"
// @Success 200 {object} response.Envelope
// @Router /availability/bulk [post]
func (h *AvailabilityHandler) BulkSubmit(c *gin.Context) {
	claims := requireUser(c)
	if claims == nil {
		return
	}
	var req dto.BulkAvailabilityRequest
	if !bindJSON(c, &req, "invalid availability payload") {
		return
	}
	result, err := h.service.BulkSubmit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List my availability for a semester
// @Tags Availability
// @Produce json
// @Param semester query string true "Semester"
// @Success 200 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	claims := requireUser(c)
	if claims == nil {
		return
	}
	records, err := h.service.ListMine(c.Request.Context(), claims.UserID, c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// StudentAvailability godoc
// @Summary List a student's availability for a semester
// @Tags Availability
// @Produce json
// @Param id path string true "Student ID"
// @Param semester query string true "Semester"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /availability/students/{id} [get]
func (h *AvailabilityHandler) StudentAvailability(c *gin.Context) {
	records, err := h.service.ListForStudent(c.Request.Context(), c.Param("id"), c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Summary godoc
// @Summary Staffing outlook per active shift
// @Description Counts available students and first-choice rankings per shift before generating a schedule.
// @Tags Availability
// @Produce json
// @Param semester query string true "Semester"
// @Success 200 {object} response.Envelope
// @Router /availability/summary [get]
func (h *AvailabilityHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// GetPreferences godoc
// @Summary Get my workload preferences
// @Tags Availability
// @Produce json
// @Param semester query string true "Semester"
// @Success 200 {object} response.Envelope
// @Router /availability/preferences [get]
func (h *AvailabilityHandler) GetPreferences(c *gin.Context) {
	claims := requireUser(c)
	if claims == nil {
		return
	}
	pref, err := h.service.GetPreferences(c.Request.Context(), claims.UserID, c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

// UpsertPreferences godoc
// @Summary Store my workload preferences
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.PreferenceRequest true "Preference payload"
// @Success 200 {object} response.Envelope
// @Router /availability/preferences [post]
func (h *AvailabilityHandler) UpsertPreferences(c *gin.Context) {
	claims := requireUser(c)
	if claims == nil {
		return
	}
	var req dto.PreferenceRequest
	if !bindJSON(c, &req, "invalid preference payload") {
		return
	}
	pref, err := h.service.UpsertPreferences(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}
