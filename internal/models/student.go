package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Student is one enrollment row. A physical student enrolled in several
// courses has several rows sharing the same roll number, each with its own
// internal id; attendance and submissions may reference any of them.
type Student struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Roll       string `json:"roll" gorm:"not null;index;size:50" validate:"required,max=50"`
	Name       string `json:"name" gorm:"not null;size:100" validate:"required,max=100"`
	Department string `json:"department" gorm:"not null;size:50;index"`
	Year       int    `json:"year" gorm:"not null"`
	CourseCode string `json:"course_code" gorm:"not null;size:50;index"`

	// Manually entered corrections, applied on top of recorded attendance.
	// May be negative.
	AttendedAdjustment     int `json:"attended_adjustment" gorm:"not null;default:0"`
	TotalClassesAdjustment int `json:"total_classes_adjustment" gorm:"not null;default:0"`

	// Per-course submission-count offsets, keyed by course code.
	SubmissionAdjustments datatypes.JSONType[map[string]int] `json:"submission_adjustments" gorm:"type:jsonb"`

	LoginDisabled bool `json:"login_disabled" gorm:"not null;default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Student) TableName() string {
	return "students"
}

// StudentIdentity is the canonical person resolved from every enrollment row
// sharing one roll number. It is built per request and never persisted.
type StudentIdentity struct {
	Roll        string `json:"roll"`
	InternalIDs []uint `json:"internal_ids"`
	Department  string `json:"department"`
	Year        int    `json:"year"`

	// True only when every enrollment row has login disabled.
	LoginDisabled bool `json:"login_disabled"`

	// Backing rows, kept so the adjustment ledger can sum corrections across
	// every row of the identity.
	Records []*Student `json:"-"`
}

// HasInternalID reports whether id belongs to this identity.
func (si *StudentIdentity) HasInternalID(id uint) bool {
	for _, internal := range si.InternalIDs {
		if internal == id {
			return true
		}
	}
	return false
}
