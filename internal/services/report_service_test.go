package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/campusgate/allocation-service/internal/models"
)

func TestReportService_ExportAttendanceRegister(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	repo.students = []*models.Student{
		{ID: 1, Roll: "21CS042", Department: "CSE", Year: 3, CourseCode: "CS301"},
		{ID: 2, Roll: "21CS042", Department: "CSE", Year: 3, CourseCode: "MA201"},
		{ID: 3, Roll: "21CS077", Department: "CSE", Year: 3, CourseCode: "CS301"},
	}
	repo.attendance = []*models.AttendanceRecord{
		{ID: 1, Date: day(2026, 3, 2), TimeSlot: "9:00", CourseCode: "CS301", TeacherName: "Prof. Mehta",
			PresentStudentIDs: datatypes.JSONSlice[uint]{1},
			AbsentStudentIDs:  datatypes.JSONSlice[uint]{3}},
	}

	logger := testLogger()
	identitySvc := NewIdentityService(repo, nil, logger)
	ledger := NewLedgerService(logger)
	attendanceSvc := NewAttendanceService(repo, nil, logger, ledger, identitySvc)
	service := NewReportService(repo, nil, logger, identitySvc, attendanceSvc)

	data, err := service.ExportAttendanceRegister(ctx, "cs-301")
	if err != nil {
		t.Fatalf("ExportAttendanceRegister failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Export is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(registerSheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	// Header plus one row per distinct roll.
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Roll" {
		t.Errorf("Expected header row, got %v", rows[0])
	}
	if rows[1][0] != "21CS042" || rows[2][0] != "21CS077" {
		t.Errorf("Unexpected roll order: %v / %v", rows[1][0], rows[2][0])
	}
	// 21CS042 was present in the only session.
	if rows[1][3] != "1" || rows[1][4] != "1" {
		t.Errorf("Expected 1/1 for 21CS042, got %v", rows[1])
	}
}
