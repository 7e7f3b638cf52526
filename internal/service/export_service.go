package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
	"github.com/noah-isme/shift-scheduler-api/pkg/export"
)

type rosterSource interface {
	Get(ctx context.Context, scheduleID string) (*models.Schedule, error)
	Assignments(ctx context.Context, scheduleID string) ([]models.ScheduleAssignmentDetail, error)
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered roster ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

var rosterHeaders = []string{"Day", "Start", "End", "Shift Type", "Student", "Email", "Preference Rank"}

// ExportService renders schedule rosters.
type ExportService struct {
	source    rosterSource
	renderers map[string]renderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with CSV and PDF renderers.
func NewExportService(source rosterSource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		source: source,
		renderers: map[string]renderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		logger: logger,
	}
}

// ExportRoster renders the schedule roster in the requested format. An empty
// format means CSV.
func (s *ExportService) ExportRoster(ctx context.Context, scheduleID, format string) (*ExportFile, error) {
	if format == "" {
		format = "csv"
	}
	r, ok := s.renderers[strings.ToLower(format)]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	schedule, err := s.source.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	rows, err := s.source.Assignments(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	body, err := r.Render(buildRosterDataset(schedule, rows))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	s.logger.Info("roster exported",
		zap.String("schedule_id", schedule.ID),
		zap.String("format", r.Extension()),
		zap.Int("rows", len(rows)),
	)
	return &ExportFile{
		Filename:    rosterFilename(schedule, r.Extension()),
		ContentType: r.ContentType(),
		Body:        body,
	}, nil
}

func rosterFilename(schedule *models.Schedule, ext string) string {
	id := schedule.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("schedule-%s-%s.%s", schedule.Semester, id, ext)
}

func buildRosterDataset(schedule *models.Schedule, rows []models.ScheduleAssignmentDetail) export.Dataset {
	sorted := make([]models.ScheduleAssignmentDetail, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.FullName < b.FullName
	})

	data := export.Dataset{
		Title:   fmt.Sprintf("Shift Roster %s", schedule.Semester),
		Headers: rosterHeaders,
		Rows:    make([]map[string]string, 0, len(sorted)),
		Notes: []string{
			fmt.Sprintf("Status: %s", schedule.Status),
			fmt.Sprintf("Generated: %s", schedule.GeneratedAt.Format(time.RFC3339)),
			fmt.Sprintf("Solver: %s (%s)", schedule.SolverStatus, schedule.AlgorithmVersion),
		},
	}
	for _, row := range sorted {
		rank := ""
		if row.AssignmentScore != nil {
			rank = strconv.FormatFloat(*row.AssignmentScore, 'f', -1, 64)
		}
		data.Rows = append(data.Rows, map[string]string{
			"Day":             models.Shift{DayOfWeek: row.DayOfWeek}.DayName(),
			"Start":           row.StartTime,
			"End":             row.EndTime,
			"Shift Type":      string(row.ShiftType),
			"Student":         row.FullName,
			"Email":           row.Email,
			"Preference Rank": rank,
		})
	}
	return data
}
