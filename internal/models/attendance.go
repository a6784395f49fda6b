package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// AttendanceRecord is one held session: (date, time slot, course, faculty).
// Course code and teacher name are free text as entered by faculty, so
// comparisons go through NormalizeCourseCode / NormalizeTeacherName.
type AttendanceRecord struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Date        time.Time `json:"date" gorm:"not null;index"`
	TimeSlot    string    `json:"time_slot" gorm:"not null;size:50"`
	CourseCode  string    `json:"course_code" gorm:"not null;size:100;index"`
	TeacherName string    `json:"teacher_name" gorm:"not null;size:100"`

	// A student's internal id appears in at most one of the two sets.
	PresentStudentIDs datatypes.JSONSlice[uint] `json:"present_student_ids" gorm:"type:jsonb"`
	AbsentStudentIDs  datatypes.JSONSlice[uint] `json:"absent_student_ids" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// IsMassBunk reports whether every recorded participant of the session was
// marked absent.
func (r *AttendanceRecord) IsMassBunk() bool {
	return len(r.PresentStudentIDs) == 0 && len(r.AbsentStudentIDs) > 0
}

// NormalizeCourseCode strips every non-alphanumeric character and upper-cases
// the rest, so "cs-301", "CS 301" and "Cs301" all compare equal.
func NormalizeCourseCode(code string) string {
	var b strings.Builder
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeTeacherName trims surrounding whitespace and lower-cases.
func NormalizeTeacherName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
