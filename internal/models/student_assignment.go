package models

import (
	"time"

	"gorm.io/datatypes"
)

type StudentAssignmentStatus string

const (
	StudentAssignmentAssigned  StudentAssignmentStatus = "assigned"
	StudentAssignmentSubmitted StudentAssignmentStatus = "submitted"
	StudentAssignmentGraded    StudentAssignmentStatus = "graded"
)

// StudentAssignment is the persisted allocation result, one per
// (assignment, canonical identity). QuestionIDs are frozen at creation;
// later visits read the stored list even if the pool or rules change.
// The composite unique index makes concurrent first accesses converge on
// the first committed row.
type StudentAssignment struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	AssignmentID uint   `json:"assignment_id" gorm:"not null;uniqueIndex:idx_assignment_student"`
	StudentRoll  string `json:"student_roll" gorm:"not null;size:50;uniqueIndex:idx_assignment_student"`

	QuestionIDs datatypes.JSONSlice[uint] `json:"question_ids" gorm:"type:jsonb"`

	Status StudentAssignmentStatus `json:"status" gorm:"default:assigned;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Assignment Assignment `json:"assignment" gorm:"foreignKey:AssignmentID"`
}

func (StudentAssignment) TableName() string {
	return "student_assignments"
}
