package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	"github.com/noah-isme/shift-scheduler-api/internal/middleware"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
)

type availabilityServiceMock struct {
	userID    string
	studentID string
	semester  string
	bulk      dto.BulkAvailabilityRequest
	pref      dto.PreferenceRequest
}

func (m *availabilityServiceMock) ListForStudent(ctx context.Context, studentID, semester string) ([]models.Availability, error) {
	if studentID == "bad" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid student id")
	}
	m.studentID, m.semester = studentID, semester
	return []models.Availability{{UserID: studentID, Semester: semester, IsAvailable: true}}, nil
}

func (m *availabilityServiceMock) Summary(ctx context.Context, semester string) (*dto.AvailabilitySummary, error) {
	if semester == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester is required")
	}
	return &dto.AvailabilitySummary{
		Semester:           semester,
		TotalShifts:        1,
		UnderstaffedShifts: 1,
		Shifts:             []dto.ShiftAvailabilitySummary{{ShiftID: "s-1", DayName: "Monday", AvailableStudents: 1, RequiredStudents: 2}},
	}, nil
}

func (m *availabilityServiceMock) BulkSubmit(ctx context.Context, userID string, req dto.BulkAvailabilityRequest) (*dto.BulkAvailabilityResult, error) {
	m.userID, m.bulk = userID, req
	return &dto.BulkAvailabilityResult{Created: len(req.Availabilities), Errors: []dto.AvailabilityEntryError{}}, nil
}

func (m *availabilityServiceMock) ListMine(ctx context.Context, userID, semester string) ([]models.Availability, error) {
	m.userID, m.semester = userID, semester
	return []models.Availability{}, nil
}

func (m *availabilityServiceMock) GetPreferences(ctx context.Context, userID, semester string) (*models.StudentPreference, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "preferences not found")
}

func (m *availabilityServiceMock) UpsertPreferences(ctx context.Context, userID string, req dto.PreferenceRequest) (*models.StudentPreference, error) {
	m.userID, m.pref = userID, req
	return &models.StudentPreference{UserID: userID, Semester: req.Semester}, nil
}

func newAvailabilityRouter(mock *availabilityServiceMock, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAvailabilityHandler(mock)
	r := gin.New()
	g := r.Group("/availability")
	if authenticated {
		g.Use(withClaims(models.RoleStudent))
	}
	g.POST("/bulk", h.BulkSubmit)
	g.GET("", h.List)
	g.GET("/preferences", h.GetPreferences)
	g.POST("/preferences", h.UpsertPreferences)
	return r
}

func TestAvailabilityHandlerBulk(t *testing.T) {
	mock := &availabilityServiceMock{}
	r := newAvailabilityRouter(mock, true)

	body := []byte(`{"semester":"2024-fall","availabilities":[{"shiftId":"6f1c1a9e-0d4b-4a51-9c57-1f0b7e3c2a01","isAvailable":true,"preferenceRank":2}]}`)
	w := serve(r, http.MethodPost, "/availability/bulk", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", mock.userID)
	require.Len(t, mock.bulk.Availabilities, 1)
	assert.True(t, *mock.bulk.Availabilities[0].IsAvailable)
	assert.Equal(t, 2, *mock.bulk.Availabilities[0].PreferenceRank)

	w = serve(r, http.MethodPost, "/availability/bulk", []byte(`[]`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityHandlerRequiresUser(t *testing.T) {
	r := newAvailabilityRouter(&availabilityServiceMock{}, false)
	w := serve(r, http.MethodGet, "/availability?semester=2024-fall", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func newAvailabilityAdminRouter(mock *availabilityServiceMock, role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAvailabilityHandler(mock)
	r := gin.New()
	g := r.Group("/availability", withClaims(role), middleware.RequireRoles(models.RoleAdmin))
	g.GET("/summary", h.Summary)
	g.GET("/students/:id", h.StudentAvailability)
	return r
}

func TestAvailabilityHandlerSummary(t *testing.T) {
	r := newAvailabilityAdminRouter(&availabilityServiceMock{}, models.RoleAdmin)

	w := serve(r, http.MethodGet, "/availability/summary?semester=2024-fall", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data dto.AvailabilitySummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2024-fall", body.Data.Semester)
	assert.Equal(t, 1, body.Data.UnderstaffedShifts)
	require.Len(t, body.Data.Shifts, 1)
	assert.False(t, body.Data.Shifts[0].IsAdequatelyStaffed)

	w = serve(r, http.MethodGet, "/availability/summary", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityHandlerStudentAvailability(t *testing.T) {
	mock := &availabilityServiceMock{}
	r := newAvailabilityAdminRouter(mock, models.RoleAdmin)

	w := serve(r, http.MethodGet, "/availability/students/8a3f2c10-7b6e-4d21-9f0a-5c4b3e2d1a00?semester=2024-fall", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "8a3f2c10-7b6e-4d21-9f0a-5c4b3e2d1a00", mock.studentID)
	assert.Equal(t, "2024-fall", mock.semester)

	w = serve(r, http.MethodGet, "/availability/students/bad?semester=2024-fall", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityAdminRoutesRejectStudents(t *testing.T) {
	r := newAvailabilityAdminRouter(&availabilityServiceMock{}, models.RoleStudent)

	w := serve(r, http.MethodGet, "/availability/summary?semester=2024-fall", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = serve(r, http.MethodGet, "/availability/students/8a3f2c10-7b6e-4d21-9f0a-5c4b3e2d1a00?semester=2024-fall", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAvailabilityHandlerListAndPreferences(t *testing.T) {
	mock := &availabilityServiceMock{}
	r := newAvailabilityRouter(mock, true)

	w := serve(r, http.MethodGet, "/availability?semester=2024-fall", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-fall", mock.semester)

	w = serve(r, http.MethodGet, "/availability/preferences?semester=2024-fall", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodPost, "/availability/preferences", []byte(`{"semester":"2024-fall","desiredHoursPerWeek":12,"maxShiftsPerDay":1,"maxShiftsPerWeek":4,"canWorkWeekends":true}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 12.0, mock.pref.DesiredHoursPerWeek)
	assert.True(t, mock.pref.CanWorkWeekends)
}
