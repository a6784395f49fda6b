package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/repositories"
)

type attendanceService struct {
	repo     repositories.Repository
	db       *gorm.DB
	logger   *slog.Logger
	ledger   LedgerService
	identity IdentityService
}

func NewAttendanceService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, ledger LedgerService, identity IdentityService) AttendanceService {
	return &attendanceService{
		repo:     repo,
		db:       db,
		logger:   logger,
		ledger:   ledger,
		identity: identity,
	}
}

// Aggregate computes attended/total/percent for one identity and course.
//
// "Total classes" means sessions the student's cohort actually held and
// recorded with this student as a participant (present or absent), not every
// session on the calendar. Ledger corrections are added on top, and a student
// with no class history at all defaults to 100% so new students are never
// blocked before any attendance exists.
func (s *attendanceService) Aggregate(ctx context.Context, identity *models.StudentIdentity, courseCode string, opts AggregateOptions) (AttendanceStats, error) {
	records, err := s.participatedRecords(ctx, identity, courseCode, opts)
	if err != nil {
		return AttendanceStats{}, err
	}

	attended := 0
	for _, pr := range records {
		if pr.present {
			attended++
		}
	}
	total := len(records)

	adj := s.ledger.CourseAdjustments(identity, courseCode)
	attended += adj.Attended
	total += adj.Total

	// Negative corrections must not drive the derived numbers below zero.
	if attended < 0 {
		attended = 0
	}
	if total < 0 {
		total = 0
	}

	stats := AttendanceStats{Attended: attended, Total: total}
	if total > 0 {
		stats.Percent = float64(attended) / float64(total) * 100
		if stats.Percent > 100 {
			stats.Percent = 100
		}
	} else {
		// No real or adjusted history: fail open.
		stats.Percent = 100
	}

	return stats, nil
}

// MassBunks lists sessions of a course where everyone recorded was absent.
// It is an informational signal for dashboards, independent of any student.
func (s *attendanceService) MassBunks(ctx context.Context, courseCode string) ([]MassBunkEvent, error) {
	all, err := s.repo.Attendance().List(ctx, s.db, repositories.AttendanceFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	normalized := models.NormalizeCourseCode(courseCode)
	var events []MassBunkEvent
	for _, record := range all {
		if models.NormalizeCourseCode(record.CourseCode) != normalized {
			continue
		}
		if record.IsMassBunk() {
			events = append(events, MassBunkEvent{
				RecordID:    record.ID,
				Date:        record.Date,
				TimeSlot:    record.TimeSlot,
				CourseCode:  record.CourseCode,
				AbsentCount: len(record.AbsentStudentIDs),
			})
		}
	}

	return events, nil
}

// Summary builds the per-course dashboard view for a roll, one row per
// (course, faculty) pair the student participated in, plus mass-bunk events
// across the student's enrolled courses.
func (s *attendanceService) Summary(ctx context.Context, roll string) (*AttendanceSummaryResponse, error) {
	identity, err := s.identity.Resolve(ctx, roll)
	if err != nil {
		return nil, err
	}
	if identity.LoginDisabled {
		return nil, ErrLoginDisabled
	}

	all, err := s.repo.Attendance().List(ctx, s.db, repositories.AttendanceFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	type groupKey struct {
		course  string
		faculty string
	}
	type groupAgg struct {
		courseDisplay  string
		facultyDisplay string
		attended       int
		total          int
	}

	groups := make(map[groupKey]*groupAgg)
	var order []groupKey

	for _, record := range all {
		present, participated := participation(identity, record)
		if !participated {
			continue
		}

		key := groupKey{
			course:  models.NormalizeCourseCode(record.CourseCode),
			faculty: models.NormalizeTeacherName(record.TeacherName),
		}
		agg, ok := groups[key]
		if !ok {
			agg = &groupAgg{
				courseDisplay:  record.CourseCode,
				facultyDisplay: record.TeacherName,
			}
			groups[key] = agg
			order = append(order, key)
		}
		agg.total++
		if present {
			agg.attended++
		}
	}

	summary := &AttendanceSummaryResponse{Roll: roll}
	for _, key := range order {
		agg := groups[key]

		adj := s.ledger.CourseAdjustments(identity, agg.courseDisplay)
		attended := agg.attended + adj.Attended
		total := agg.total + adj.Total
		if attended < 0 {
			attended = 0
		}
		if total < 0 {
			total = 0
		}

		percent := 100.0
		if total > 0 {
			percent = float64(attended) / float64(total) * 100
			if percent > 100 {
				percent = 100
			}
		}

		summary.PerCourse = append(summary.PerCourse, CourseAttendance{
			CourseCode: agg.courseDisplay,
			Faculty:    agg.facultyDisplay,
			Attended:   attended,
			Total:      total,
			Percent:    percent,
		})
	}

	// Mass bunks for every course the student is enrolled in.
	seen := make(map[string]bool)
	for _, record := range identity.Records {
		normalized := models.NormalizeCourseCode(record.CourseCode)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true

		events, err := s.MassBunks(ctx, record.CourseCode)
		if err != nil {
			return nil, err
		}
		summary.MassBunkEvents = append(summary.MassBunkEvents, events...)
	}
	summary.MassBunkCount = len(summary.MassBunkEvents)

	return summary, nil
}

// RecordSession stores one held session as entered by faculty. Course code
// and teacher name are kept verbatim; normalization happens on read.
func (s *attendanceService) RecordSession(ctx context.Context, req *RecordSessionRequest, recorderID string) (*models.AttendanceRecord, error) {
	if len(req.PresentStudentIDs) == 0 && len(req.AbsentStudentIDs) == 0 {
		return nil, fmt.Errorf("%w: a session needs at least one participant", ErrValidationFailed)
	}

	record := &models.AttendanceRecord{
		Date:              req.Date,
		TimeSlot:          req.TimeSlot,
		CourseCode:        req.CourseCode,
		TeacherName:       req.TeacherName,
		PresentStudentIDs: req.PresentStudentIDs,
		AbsentStudentIDs:  req.AbsentStudentIDs,
	}

	if err := s.repo.Attendance().Create(ctx, s.db, record); err != nil {
		return nil, fmt.Errorf("failed to store attendance record: %w", err)
	}

	s.logger.Info("Attendance session recorded",
		"record_id", record.ID,
		"course_code", record.CourseCode,
		"recorded_by", recorderID)
	return record, nil
}

// participatedRecord pairs a session with whether the student was present.
type participatedRecord struct {
	record  *models.AttendanceRecord
	present bool
}

func (s *attendanceService) participatedRecords(ctx context.Context, identity *models.StudentIdentity, courseCode string, opts AggregateOptions) ([]participatedRecord, error) {
	all, err := s.repo.Attendance().List(ctx, s.db, repositories.AttendanceFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	normalizedCourse := models.NormalizeCourseCode(courseCode)
	normalizedFaculty := models.NormalizeTeacherName(opts.FacultyName)

	var result []participatedRecord
	for _, record := range all {
		if models.NormalizeCourseCode(record.CourseCode) != normalizedCourse {
			continue
		}
		if normalizedFaculty != "" && models.NormalizeTeacherName(record.TeacherName) != normalizedFaculty {
			continue
		}
		if opts.AsOf != nil && sessionEffectiveTime(record).After(*opts.AsOf) {
			continue
		}

		present, participated := participation(identity, record)
		if !participated {
			continue
		}
		result = append(result, participatedRecord{record: record, present: present})
	}

	return result, nil
}

// participation reports whether any internal id of the identity appears in
// the session, and whether it was on the present side.
func participation(identity *models.StudentIdentity, record *models.AttendanceRecord) (present bool, participated bool) {
	for _, id := range record.PresentStudentIDs {
		if identity.HasInternalID(id) {
			return true, true
		}
	}
	for _, id := range record.AbsentStudentIDs {
		if identity.HasInternalID(id) {
			return false, true
		}
	}
	return false, false
}

// sessionEffectiveTime combines the session date with the start time parsed
// from the free-text slot label. Faculty enter slots in 12-hour form without
// a meridiem, so an hour below 7 means afternoon and is shifted by +12.
func sessionEffectiveTime(record *models.AttendanceRecord) time.Time {
	hour, minute, ok := parseSlotStart(record.TimeSlot)
	if !ok {
		return record.Date
	}
	if hour < 7 {
		hour += 12
	}
	d := record.Date
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location())
}

// parseSlotStart extracts the leading "H" or "H:MM" from a slot label such as
// "9:00-10:00" or "2 PM slot".
func parseSlotStart(slot string) (hour, minute int, ok bool) {
	i := 0
	for i < len(slot) && slot[i] >= '0' && slot[i] <= '9' {
		hour = hour*10 + int(slot[i]-'0')
		i++
		if i > 2 {
			break
		}
	}
	if i == 0 || hour > 23 {
		return 0, 0, false
	}
	if i < len(slot) && slot[i] == ':' {
		i++
		digits := 0
		for i < len(slot) && slot[i] >= '0' && slot[i] <= '9' && digits < 2 {
			minute = minute*10 + int(slot[i]-'0')
			i++
			digits++
		}
		if minute > 59 {
			minute = 0
		}
	}
	return hour, minute, true
}
