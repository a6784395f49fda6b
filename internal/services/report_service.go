package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/repositories"
)

const registerSheet = "Attendance Register"

type reportService struct {
	repo       repositories.Repository
	db         *gorm.DB
	logger     *slog.Logger
	identity   IdentityService
	attendance AttendanceService
}

func NewReportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, identity IdentityService, attendance AttendanceService) ReportService {
	return &reportService{
		repo:       repo,
		db:         db,
		logger:     logger,
		identity:   identity,
		attendance: attendance,
	}
}

// ExportAttendanceRegister builds an XLSX register for one course: one row
// per enrolled roll number with the same aggregated figures the engine uses
// for eligibility.
func (s *reportService) ExportAttendanceRegister(ctx context.Context, courseCode string) ([]byte, error) {
	normalized := models.NormalizeCourseCode(courseCode)
	s.logger.Info("Exporting attendance register", "course_code", courseCode)

	students, _, err := s.repo.Student().List(ctx, s.db, repositories.StudentFilters{
		CourseCode: &normalized,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	// Enrollment rows for one roll collapse into a single register row.
	rolls := make([]string, 0, len(students))
	seen := make(map[string]bool, len(students))
	for _, st := range students {
		if seen[st.Roll] {
			continue
		}
		seen[st.Roll] = true
		rolls = append(rolls, st.Roll)
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("Failed to close workbook", "error", cerr)
		}
	}()

	index, err := f.NewSheet(registerSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headers := []string{"Roll", "Department", "Year", "Attended", "Total", "Percent"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(registerSheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		_ = f.SetCellStyle(registerSheet, "A1", "F1", headerStyle)
	}

	row := 2
	for _, roll := range rolls {
		identity, err := s.identity.Resolve(ctx, roll)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", roll, err)
		}

		stats, err := s.attendance.Aggregate(ctx, identity, courseCode, AggregateOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate for %s: %w", roll, err)
		}

		values := []interface{}{
			identity.Roll,
			identity.Department,
			identity.Year,
			stats.Attended,
			stats.Total,
			stats.Percent,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(registerSheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("Attendance register exported", "course_code", courseCode, "rows", len(rolls))
	return buf.Bytes(), nil
}
