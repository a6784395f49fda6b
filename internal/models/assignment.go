package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssignmentType string

const (
	AssignmentManual          AssignmentType = "manual"
	AssignmentRandomized      AssignmentType = "randomized"
	AssignmentBatchAttendance AssignmentType = "batch_attendance"
	AssignmentPersonalized    AssignmentType = "personalized"
)

type AssignmentStatus string

const (
	AssignmentDraft    AssignmentStatus = "Draft"
	AssignmentActive   AssignmentStatus = "Active"
	AssignmentExpired  AssignmentStatus = "Expired"
	AssignmentArchived AssignmentStatus = "Archived"
)

// BracketRule maps an attendance-percentage range to a question count for
// batch_attendance assignments. Ranges may overlap; the highest Min wins.
type BracketRule struct {
	Min   float64 `json:"min" validate:"min=0,max=100"`
	Max   float64 `json:"max" validate:"min=0,max=100"`
	Count int     `json:"count" validate:"min=1"`
}

// Contains reports whether percent falls inside the rule's closed range.
func (r BracketRule) Contains(percent float64) bool {
	return percent >= r.Min && percent <= r.Max
}

// TopicWeight is a percentage share of a bracket's question count drawn from
// one topic.
type TopicWeight struct {
	Topic  string  `json:"topic" validate:"required"`
	Weight float64 `json:"weight" validate:"min=0,max=100"`
}

type Assignment struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Title       string           `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string          `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Type        AssignmentType   `json:"type" gorm:"not null;index" validate:"required,oneof=manual randomized batch_attendance personalized"`
	Status      AssignmentStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Active Expired Archived"`

	// Attendance is aggregated for this course, optionally restricted to
	// sessions held by this faculty member.
	CourseCode  string `json:"course_code" gorm:"not null;size:100;index"`
	FacultyName string `json:"faculty_name" gorm:"size:100"`

	StartTime *time.Time `json:"start_time"`
	Deadline  *time.Time `json:"deadline"`

	// randomized / personalized: how many questions each student draws.
	QuestionCount int `json:"question_count" gorm:"default:0"`

	// batch_attendance parameters.
	Rules        datatypes.JSONType[[]BracketRule] `json:"rules" gorm:"type:jsonb"`
	TopicWeights datatypes.JSONType[[]TopicWeight] `json:"topic_weights" gorm:"type:jsonb"`

	// personalized: enrollment-row ids the assignment targets.
	TargetStudentIDs datatypes.JSONSlice[uint] `json:"target_student_ids" gorm:"type:jsonb"`

	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:AssignmentID"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// Question belongs to an assignment's pool. Topic drives the weighted draw of
// batch_attendance allocation.
type Question struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	AssignmentID uint   `json:"assignment_id" gorm:"not null;index"`
	Text         string `json:"text" gorm:"type:text;not null" validate:"required,max=2000"`
	Topic        string `json:"topic" gorm:"size:100;index"`
	Marks        int    `json:"marks" gorm:"default:10" validate:"min=1,max=100"`

	CreatedBy string    `json:"created_by" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}
