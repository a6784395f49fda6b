package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/campusgate/allocation-service/internal/models"
)

func newAttendanceFixture() (*fakeRepository, AttendanceService, *models.StudentIdentity) {
	repo := newFakeRepository()
	repo.students = []*models.Student{
		{ID: 1, Roll: "21CS042", Department: "CSE", Year: 3, CourseCode: "CS301"},
		{ID: 2, Roll: "21CS042", Department: "CSE", Year: 3, CourseCode: "MA201"},
	}

	logger := testLogger()
	identitySvc := NewIdentityService(repo, nil, logger)
	ledger := NewLedgerService(logger)
	service := NewAttendanceService(repo, nil, logger, ledger, identitySvc)

	identity := &models.StudentIdentity{
		Roll:        "21CS042",
		InternalIDs: []uint{1, 2},
		Department:  "CSE",
		Year:        3,
		Records:     repo.students,
	}
	return repo, service, identity
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAttendanceService_Aggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("CrossEnrollmentSessionsCount", func(t *testing.T) {
		repo, service, identity := newAttendanceFixture()
		repo.attendance = []*models.AttendanceRecord{
			// Marked present against the CS301 enrollment row.
			{ID: 1, Date: day(2026, 3, 2), TimeSlot: "9:00-10:00", CourseCode: "cs-301", TeacherName: "Prof. Mehta",
				PresentStudentIDs: datatypes.JSONSlice[uint]{1}},
			// Marked absent against the MA201 enrollment row of the same
			// person, in a CS301 session.
			{ID: 2, Date: day(2026, 3, 4), TimeSlot: "9:00-10:00", CourseCode: "CS 301", TeacherName: "prof. mehta",
				AbsentStudentIDs: datatypes.JSONSlice[uint]{2}},
			// Someone else's session; not part of this student's total.
			{ID: 3, Date: day(2026, 3, 5), TimeSlot: "9:00-10:00", CourseCode: "CS301", TeacherName: "Prof. Mehta",
				PresentStudentIDs: datatypes.JSONSlice[uint]{99}},
			// Different course entirely.
			{ID: 4, Date: day(2026, 3, 5), TimeSlot: "11:00-12:00", CourseCode: "MA201", TeacherName: "Dr. Iyer",
				PresentStudentIDs: datatypes.JSONSlice[uint]{2}},
		}

		stats, err := service.Aggregate(ctx, identity, "CS301", AggregateOptions{})
		if err != nil {
			t.Fatalf("Aggregate failed: %v", err)
		}
		if stats.Attended != 1 || stats.Total != 2 {
			t.Errorf("Expected 1/2, got %d/%d", stats.Attended, stats.Total)
		}
		if stats.Percent != 50 {
			t.Errorf("Expected 50%%, got %v", stats.Percent)
		}
	})

	t.Run("FacultyFilterNormalized", func(t *testing.T) {
		repo, service, identity := newAttendanceFixture()
		repo.attendance = []*models.AttendanceRecord{
			{ID: 1, Date: day(2026, 3, 2), TimeSlot: "9:00", CourseCode: "CS301", TeacherName: " Prof. Mehta ",
				PresentStudentIDs: datatypes.JSONSlice[uint]{1}},
			{ID: 2, Date: day(2026, 3, 3), TimeSlot: "9:00", CourseCode: "CS301", TeacherName: "Dr. Iyer",
				AbsentStudentIDs: datatypes.JSONSlice[uint]{1}},
		}

		stats, err := service.Aggregate(ctx, identity, "CS301", AggregateOptions{FacultyName: "prof. mehta"})
		if err != nil {
			t.Fatalf("Aggregate failed: %v", err)
		}
		if stats.Attended != 1 || stats.Total != 1 {
			t.Errorf("Expected 1/1 with faculty filter, got %d/%d", stats.Attended, stats.Total)
		}
	})

	t.Run("AsOfCutoffShiftsAfternoonSlots", func(t *testing.T) {
		repo, service, identity := newAttendanceFixture()
		// Slot "1:30-2:30" is 13:30; faculty omit the meridiem.
		repo.attendance = []*models.AttendanceRecord{
			{ID: 1, Date: day(2026, 3, 10), TimeSlot: "1:30-2:30", CourseCode: "CS301", TeacherName: "Prof. Mehta",
				PresentStudentIDs: datatypes.JSONSlice[uint]{1}},
		}

		before := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)
		stats, err := service.Aggregate(ctx, identity, "CS301", AggregateOptions{AsOf: &before})
		if err != nil {
			t.Fatalf("Aggregate failed: %v", err)
		}
		if stats.Total != 0 {
			t.Errorf("Expected session after 13:00 cutoff to be excluded, got total %d", stats.Total)
		}

		after := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
		stats, err = service.Aggregate(ctx, identity, "CS301", AggregateOptions{AsOf: &after})
		if err != nil {
			t.Fatalf("Aggregate failed: %v", err)
		}
		if stats.Total != 1 {
			t.Errorf("Expected session before 14:00 cutoff to count, got total %d", stats.Total)
		}
	})

	t.Run("NoHistoryFailsOpen", func(t *testing.T) {
		_, service, identity := newAttendanceFixture()
		stats, err := service.Aggregate(ctx, identity, "CS301", AggregateOptions{})
		if err != nil {
			t.Fatalf("Aggregate failed: %v", err)
		}
		if stats.Total != 0 || stats.Percent != 100 {
			t.Errorf("Expected 0 total and 100%%, got %d and %v", stats.Total, stats.Percent)
		}
	})

	t.Run("NegativeAdjustmentsClampToZero", func(t *testing.T) {
		repo, service, identity := newAttendanceFixture()
		repo.attendance = []*models.AttendanceRecord{
			{ID: 1, Date: day(2026, 3, 2), TimeSlot: "9:00", CourseCode: "CS301", TeacherName: "Prof. Mehta",
				PresentStudentIDs: datatypes.JSONSlice[uint]{1}},
			{ID: 2, Date: day(2026, 3, 3), TimeSlot: "9:00", CourseCode: "CS301", TeacherName: "Prof. Mehta",
				AbsentStudentIDs: datatypes.JSONSlice[uint]{1}},
		}
		identity.Records[0].AttendedAdjustment = -5

		stats, err := service.Aggregate(ctx, identity, "CS301", AggregateOptions{})
		if err != nil {
			t.Fatalf("Aggregate failed: %v", err)
		}
		if stats.Attended != 0 || stats.Total != 2 {
			t.Errorf("Expected clamped 0/2, got %d/%d", stats.Attended, stats.Total)
		}
		if stats.Percent != 0 {
			t.Errorf("Expected 0%%, got %v", stats.Percent)
		}
	})

	t.Run("PercentCappedAtHundred", func(t *testing.T) {
		repo, service, identity := newAttendanceFixture()
		repo.attendance = []*models.AttendanceRecord{
			{ID: 1, Date: day(2026, 3, 2), TimeSlot: "9:00", CourseCode: "CS301", TeacherName: "Prof. Mehta",
				PresentStudentIDs: datatypes.JSONSlice[uint]{1}},
		}
		identity.Records[0].AttendedAdjustment = 5

		stats, err := service.Aggregate(ctx, identity, "CS301", AggregateOptions{})
		if err != nil {
			t.Fatalf("Aggregate failed: %v", err)
		}
		if stats.Percent != 100 {
			t.Errorf("Expected capped 100%%, got %v", stats.Percent)
		}
	})
}

func TestAttendanceService_MassBunks(t *testing.T) {
	ctx := context.Background()
	repo, service, _ := newAttendanceFixture()
	repo.attendance = []*models.AttendanceRecord{
		{ID: 1, Date: day(2026, 3, 2), TimeSlot: "9:00", CourseCode: "cs 301", TeacherName: "Prof. Mehta",
			AbsentStudentIDs: datatypes.JSONSlice[uint]{1, 2, 3}},
		{ID: 2, Date: day(2026, 3, 3), TimeSlot: "9:00", CourseCode: "CS301", TeacherName: "Prof. Mehta",
			PresentStudentIDs: datatypes.JSONSlice[uint]{1}, AbsentStudentIDs: datatypes.JSONSlice[uint]{2}},
		{ID: 3, Date: day(2026, 3, 4), TimeSlot: "9:00", CourseCode: "MA201", TeacherName: "Dr. Iyer",
			AbsentStudentIDs: datatypes.JSONSlice[uint]{7}},
	}

	events, err := service.MassBunks(ctx, "CS-301")
	if err != nil {
		t.Fatalf("MassBunks failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 mass bunk, got %d", len(events))
	}
	if events[0].RecordID != 1 || events[0].AbsentCount != 3 {
		t.Errorf("Unexpected event %+v", events[0])
	}
}

func TestAttendanceService_Summary(t *testing.T) {
	ctx := context.Background()
	repo, service, _ := newAttendanceFixture()
	repo.attendance = []*models.AttendanceRecord{
		{ID: 1, Date: day(2026, 3, 2), TimeSlot: "9:00", CourseCode: "cs-301", TeacherName: "Prof. Mehta",
			PresentStudentIDs: datatypes.JSONSlice[uint]{1}},
		{ID: 2, Date: day(2026, 3, 4), TimeSlot: "9:00", CourseCode: "CS 301", TeacherName: " PROF. MEHTA",
			AbsentStudentIDs: datatypes.JSONSlice[uint]{2}},
		{ID: 3, Date: day(2026, 3, 5), TimeSlot: "11:00", CourseCode: "MA201", TeacherName: "Dr. Iyer",
			PresentStudentIDs: datatypes.JSONSlice[uint]{2}},
		// Mass bunk in an enrolled course.
		{ID: 4, Date: day(2026, 3, 6), TimeSlot: "9:00", CourseCode: "CS301", TeacherName: "Prof. Mehta",
			AbsentStudentIDs: datatypes.JSONSlice[uint]{5, 6}},
	}

	summary, err := service.Summary(ctx, "21CS042")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if len(summary.PerCourse) != 2 {
		t.Fatalf("Expected 2 course groups, got %d", len(summary.PerCourse))
	}

	cs := summary.PerCourse[0]
	// Display strings keep the first spelling seen.
	if cs.CourseCode != "cs-301" || cs.Faculty != "Prof. Mehta" {
		t.Errorf("Unexpected display names %q / %q", cs.CourseCode, cs.Faculty)
	}
	if cs.Attended != 1 || cs.Total != 2 {
		t.Errorf("Expected CS301 1/2, got %d/%d", cs.Attended, cs.Total)
	}

	ma := summary.PerCourse[1]
	if ma.Attended != 1 || ma.Total != 1 || ma.Percent != 100 {
		t.Errorf("Expected MA201 1/1 at 100%%, got %d/%d at %v", ma.Attended, ma.Total, ma.Percent)
	}

	if summary.MassBunkCount != 1 {
		t.Errorf("Expected 1 mass bunk, got %d", summary.MassBunkCount)
	}
}
