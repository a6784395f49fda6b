package validator

import (
	"time"

	"github.com/campusgate/allocation-service/internal/models"
)

// AssignmentCreateRequest is the admin-facing payload for creating an
// assignment with its allocation strategy.
type AssignmentCreateRequest struct {
	Title       string                `json:"title" validate:"required,min=1,max=200"`
	Description *string               `json:"description" validate:"omitempty,max=1000"`
	Type        models.AssignmentType `json:"type" validate:"required,assignment_type"`
	CourseCode  string                `json:"course_code" validate:"required,max=100"`
	FacultyName string                `json:"faculty_name" validate:"omitempty,max=100"`
	StartTime   *time.Time            `json:"start_time"`
	Deadline    *time.Time            `json:"deadline"`

	QuestionCount    int                  `json:"question_count" validate:"omitempty,min=0,max=500"`
	Rules            []models.BracketRule `json:"rules" validate:"omitempty,dive"`
	TopicWeights     []models.TopicWeight `json:"topic_weights" validate:"omitempty,dive"`
	TargetStudentIDs []uint               `json:"target_student_ids"`

	Questions []QuestionCreateRequest `json:"questions" validate:"omitempty,dive"`
}

type AssignmentUpdateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	FacultyName *string    `json:"faculty_name" validate:"omitempty,max=100"`
	StartTime   *time.Time `json:"start_time"`
	Deadline    *time.Time `json:"deadline"`

	QuestionCount *int                 `json:"question_count" validate:"omitempty,min=0,max=500"`
	Rules         []models.BracketRule `json:"rules" validate:"omitempty,dive"`
	TopicWeights  []models.TopicWeight `json:"topic_weights" validate:"omitempty,dive"`
}

type QuestionCreateRequest struct {
	Text  string `json:"text" validate:"required,min=1,max=2000"`
	Topic string `json:"topic" validate:"omitempty,max=100"`
	Marks int    `json:"marks" validate:"omitempty,min=1,max=100"`
}

// AttendanceRecordRequest is the faculty-facing payload for recording one
// held session. A session with no participants at all is rejected.
type AttendanceRecordRequest struct {
	Date        time.Time `json:"date" validate:"required"`
	TimeSlot    string    `json:"time_slot" validate:"required,max=50"`
	CourseCode  string    `json:"course_code" validate:"required,max=100"`
	TeacherName string    `json:"teacher_name" validate:"required,max=100"`

	PresentStudentIDs []uint `json:"present_student_ids"`
	AbsentStudentIDs  []uint `json:"absent_student_ids"`
}

type ThresholdUpdateRequest struct {
	DefaultRequirement *float64           `json:"default_requirement" validate:"omitempty,percent"`
	Requirements       map[string]float64 `json:"requirements" validate:"omitempty,dive,percent"`
}
