package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/campusgate/allocation-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type StudentFilters struct {
	Department *string `json:"department"`
	Year       *int    `json:"year"`
	CourseCode *string `json:"course_code"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
	SortBy     string  `json:"sort_by"`
	SortOrder  string  `json:"sort_order"`
}

type AssignmentFilters struct {
	Type       *models.AssignmentType   `json:"type"`
	Status     *models.AssignmentStatus `json:"status"`
	CourseCode *string                  `json:"course_code"`
	CreatedBy  *string                  `json:"created_by"`
	DateFrom   *time.Time               `json:"date_from"`
	DateTo     *time.Time               `json:"date_to"`
	Limit      int                      `json:"limit"`
	Offset     int                      `json:"offset"`
	SortBy     string                   `json:"sort_by"`    // "created_at", "title", "deadline"
	SortOrder  string                   `json:"sort_order"` // "asc", "desc"
}

type AttendanceFilters struct {
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

// StudentRepository reads enrollment rows. The engine never writes them;
// they are owned by the student-management subsystem.
type StudentRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error)
	GetByRoll(ctx context.Context, tx *gorm.DB, roll string) ([]*models.Student, error)
	List(ctx context.Context, tx *gorm.DB, filters StudentFilters) ([]*models.Student, int64, error)
}

// AttendanceRepository reads attendance sessions. Course codes are free text,
// so callers fetch broadly and normalize in memory; a full scan is acceptable
// at current scale.
type AttendanceRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AttendanceRecord, error)
	List(ctx context.Context, tx *gorm.DB, filters AttendanceFilters) ([]*models.AttendanceRecord, error)
	Create(ctx context.Context, tx *gorm.DB, record *models.AttendanceRecord) error
}

type AssignmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error)
	Update(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters AssignmentFilters) ([]*models.Assignment, int64, error)

	// Question pool management
	AddQuestions(ctx context.Context, tx *gorm.DB, assignmentID uint, questions []*models.Question) error
	RemoveQuestion(ctx context.Context, tx *gorm.DB, assignmentID, questionID uint) error
	GetQuestionsByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error)
}

type StudentAssignmentRepository interface {
	// CreateIfAbsent inserts the allocation unless one already exists for
	// (assignmentID, roll), then returns the committed row either way. Two
	// concurrent first accesses converge on whichever insert won.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, allocation *models.StudentAssignment) (*models.StudentAssignment, error)
	GetByAssignmentAndRoll(ctx context.Context, tx *gorm.DB, assignmentID uint, roll string) (*models.StudentAssignment, error)
	GetByRoll(ctx context.Context, tx *gorm.DB, roll string) ([]*models.StudentAssignment, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.StudentAssignmentStatus) error
}

type ThresholdRepository interface {
	// Get returns the current config snapshot, or a default-valued document
	// when none has been stored yet.
	Get(ctx context.Context, tx *gorm.DB) (*models.ThresholdConfig, error)
	Save(ctx context.Context, tx *gorm.DB, config *models.ThresholdConfig) error
}
