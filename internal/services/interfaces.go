package services

import (
	"context"
	"time"

	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use request DTO types from the validator package
type CreateAssignmentRequest = validator.AssignmentCreateRequest
type UpdateAssignmentRequest = validator.AssignmentUpdateRequest
type CreateQuestionRequest = validator.QuestionCreateRequest
type UpdateThresholdRequest = validator.ThresholdUpdateRequest
type RecordSessionRequest = validator.AttendanceRecordRequest

// Adjustments are the summed manual corrections for one identity and course.
// Sums are reported unclamped; the aggregator clamps derived values.
type Adjustments struct {
	Attended   int `json:"attended_adjustment"`
	Total      int `json:"total_adjustment"`
	Submission int `json:"submission_adjustment"`
}

// AttendanceStats is the aggregator output for one (identity, course,
// faculty) triple.
type AttendanceStats struct {
	Attended int     `json:"attended"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
}

// AggregateOptions narrows which sessions count.
type AggregateOptions struct {
	// Restrict to sessions held by this faculty member (normalized compare).
	FacultyName string
	// Drop sessions after this cutoff, so attendance can be computed as it
	// stood at a deadline.
	AsOf *time.Time
}

// MassBunkEvent is a session where every recorded participant was absent.
// Informational only; it never feeds eligibility.
type MassBunkEvent struct {
	RecordID    uint      `json:"record_id"`
	Date        time.Time `json:"date"`
	TimeSlot    string    `json:"time_slot"`
	CourseCode  string    `json:"course_code"`
	AbsentCount int       `json:"absent_count"`
}

// CourseAttendance is one row of the student dashboard summary.
type CourseAttendance struct {
	CourseCode string  `json:"course"`
	Faculty    string  `json:"faculty"`
	Attended   int     `json:"attended"`
	Total      int     `json:"total"`
	Percent    float64 `json:"percent"`
}

type AttendanceSummaryResponse struct {
	Roll           string             `json:"roll"`
	PerCourse      []CourseAttendance `json:"per_course"`
	MassBunkCount  int                `json:"mass_bunk_count"`
	MassBunkEvents []MassBunkEvent    `json:"mass_bunk_events"`
}

// EligibilityResult is the evaluator output.
type EligibilityResult struct {
	CanAccess       bool    `json:"can_access"`
	RequiredPercent float64 `json:"required_percent"`
}

// EvaluationResult is the full engine answer for one (student, assignment)
// pair.
type EvaluationResult struct {
	CanAccess       bool    `json:"can_access"`
	RequiredPercent float64 `json:"required_percent"`
	Attended        int     `json:"attended"`
	Total           int     `json:"total"`
	Percent         float64 `json:"percent"`
	IsPastDeadline  bool    `json:"is_past_deadline"`

	// Nil when access is denied or no allocation applies; empty-but-allocated
	// never happens (an empty draw creates no row).
	QuestionIDs []uint             `json:"question_ids,omitempty"`
	Questions   []*models.Question `json:"questions,omitempty"`
}

type AssignmentResponse struct {
	*models.Assignment
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type AssignmentListResponse struct {
	Assignments []*AssignmentResponse `json:"assignments"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Size        int                   `json:"size"`
}

// ===== SERVICE INTERFACES =====

// IdentityService resolves a roll number (or any single enrollment-row id)
// into the canonical identity spanning every enrollment row.
type IdentityService interface {
	Resolve(ctx context.Context, roll string) (*models.StudentIdentity, error)
	ResolveByInternalID(ctx context.Context, id uint) (*models.StudentIdentity, error)
}

// LedgerService sums manual corrections across every enrollment row of an
// identity. Pure computation over the resolved rows; no clamping here.
type LedgerService interface {
	CourseAdjustments(identity *models.StudentIdentity, courseCode string) Adjustments
}

// AttendanceService aggregates attendance and detects mass bunks.
type AttendanceService interface {
	Aggregate(ctx context.Context, identity *models.StudentIdentity, courseCode string, opts AggregateOptions) (AttendanceStats, error)
	MassBunks(ctx context.Context, courseCode string) ([]MassBunkEvent, error)
	Summary(ctx context.Context, roll string) (*AttendanceSummaryResponse, error)
	RecordSession(ctx context.Context, req *RecordSessionRequest, recorderID string) (*models.AttendanceRecord, error)
}

// EligibilityService decides whether a percentage clears the requirement that
// applies to a (department, year, course, assignment) combination. The
// threshold config is passed in as a snapshot so one evaluation never reads
// two versions.
type EligibilityService interface {
	Evaluate(assignment *models.Assignment, cfg *models.ThresholdConfig, department string, year int, percent float64) EligibilityResult
}

// AllocationService is the engine entry point.
type AllocationService interface {
	EvaluateAndAllocate(ctx context.Context, roll string, assignmentID uint) (*EvaluationResult, error)
	GetAllocation(ctx context.Context, assignmentID uint, roll string) (*models.StudentAssignment, error)
	ListAllocations(ctx context.Context, roll string) ([]*models.StudentAssignment, error)
}

// AssignmentService is the admin CRUD surface around the engine.
type AssignmentService interface {
	Create(ctx context.Context, req *CreateAssignmentRequest, creatorID string) (*AssignmentResponse, error)
	GetByID(ctx context.Context, id uint) (*AssignmentResponse, error)
	Update(ctx context.Context, id uint, req *UpdateAssignmentRequest, userID string) (*AssignmentResponse, error)
	Delete(ctx context.Context, id uint, userID string) error
	List(ctx context.Context, filters AssignmentFilters) (*AssignmentListResponse, error)
	AddQuestions(ctx context.Context, assignmentID uint, reqs []CreateQuestionRequest, userID string) error
	RemoveQuestion(ctx context.Context, assignmentID, questionID uint, userID string) error
}

// ThresholdService reads and updates the attendance requirement config.
type ThresholdService interface {
	Get(ctx context.Context) (*models.ThresholdConfig, error)
	Update(ctx context.Context, req *UpdateThresholdRequest, userID string) (*models.ThresholdConfig, error)
}

// ReportService produces exports for faculty.
type ReportService interface {
	ExportAttendanceRegister(ctx context.Context, courseCode string) ([]byte, error)
}

// AssignmentFilters mirrors the repository filters at the service boundary.
type AssignmentFilters struct {
	Type       *models.AssignmentType
	Status     *models.AssignmentStatus
	CourseCode *string
	Page       int
	Size       int
}

// ServiceManager provides access to all services.
type ServiceManager interface {
	Identity() IdentityService
	Ledger() LedgerService
	Attendance() AttendanceService
	Eligibility() EligibilityService
	Allocation() AllocationService
	Assignment() AssignmentService
	Threshold() ThresholdService
	Report() ReportService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
