package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/campusgate/allocation-service/internal/events"
	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/repositories"
)

type allocationService struct {
	repo        repositories.Repository
	db          *gorm.DB
	logger      *slog.Logger
	identity    IdentityService
	attendance  AttendanceService
	eligibility EligibilityService
	shuffler    Shuffler
	publisher   events.EventPublisher
}

func NewAllocationService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	identity IdentityService,
	attendance AttendanceService,
	eligibility EligibilityService,
	shuffler Shuffler,
	publisher events.EventPublisher,
) AllocationService {
	return &allocationService{
		repo:        repo,
		db:          db,
		logger:      logger,
		identity:    identity,
		attendance:  attendance,
		eligibility: eligibility,
		shuffler:    shuffler,
		publisher:   publisher,
	}
}

// EvaluateAndAllocate answers both engine questions for one (student,
// assignment) pair: may the student see the questions, and which concrete
// subset applies. Question sets are materialized lazily on first eligible
// access and frozen; repeat calls read the stored row.
func (s *allocationService) EvaluateAndAllocate(ctx context.Context, roll string, assignmentID uint) (*EvaluationResult, error) {
	identity, err := s.identity.Resolve(ctx, roll)
	if err != nil {
		return nil, err
	}
	if identity.LoginDisabled {
		return nil, ErrLoginDisabled
	}

	assignment, err := s.repo.Assignment().GetByIDWithQuestions(ctx, s.db, assignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	now := time.Now()
	if assignment.StartTime != nil && now.Before(*assignment.StartTime) {
		return nil, ErrAssignmentNotStarted
	}

	// Snapshot the threshold config once; one evaluation never sees two
	// versions.
	thresholds, err := s.repo.Threshold().Get(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get threshold config: %w", err)
	}

	stats, err := s.aggregateFor(ctx, identity, assignment)
	if err != nil {
		return nil, err
	}

	eligibility := s.eligibility.Evaluate(assignment, thresholds, identity.Department, identity.Year, stats.Percent)

	result := &EvaluationResult{
		CanAccess:       eligibility.CanAccess,
		RequiredPercent: eligibility.RequiredPercent,
		Attended:        stats.Attended,
		Total:           stats.Total,
		Percent:         stats.Percent,
		IsPastDeadline:  assignment.Deadline != nil && now.After(*assignment.Deadline),
	}

	// A passed deadline overrides eligibility regardless of percentage.
	if result.IsPastDeadline {
		result.CanAccess = false
	}
	if !result.CanAccess {
		return result, nil
	}

	questionIDs, err := s.allocate(ctx, identity, assignment, stats.Percent)
	if err != nil {
		return nil, err
	}
	result.QuestionIDs = questionIDs

	if len(questionIDs) > 0 {
		questions, err := s.repo.Assignment().GetQuestionsByIDs(ctx, s.db, questionIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load allocated questions: %w", err)
		}
		result.Questions = questions
	}

	return result, nil
}

func (s *allocationService) GetAllocation(ctx context.Context, assignmentID uint, roll string) (*models.StudentAssignment, error) {
	allocation, err := s.repo.StudentAssignment().GetByAssignmentAndRoll(ctx, s.db, assignmentID, roll)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAllocationNotFound
		}
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}
	return allocation, nil
}

// ListAllocations returns every materialized question set of a student,
// newest first.
func (s *allocationService) ListAllocations(ctx context.Context, roll string) ([]*models.StudentAssignment, error) {
	if _, err := s.identity.Resolve(ctx, roll); err != nil {
		return nil, err
	}

	allocations, err := s.repo.StudentAssignment().GetByRoll(ctx, s.db, roll)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	return allocations, nil
}

// aggregateFor runs the aggregator scoped to the assignment's course and
// faculty, cut off at the deadline so late evaluations see attendance as it
// stood when the assignment closed. A missing course on the assignment is a
// configuration gap, not an error: it degrades to no history and the
// fail-open 100% default.
func (s *allocationService) aggregateFor(ctx context.Context, identity *models.StudentIdentity, assignment *models.Assignment) (AttendanceStats, error) {
	if assignment.CourseCode == "" {
		s.logger.Warn("Assignment has no course; attendance cannot be computed",
			"assignment_id", assignment.ID)
		return AttendanceStats{Attended: 0, Total: 0, Percent: 100}, nil
	}

	opts := AggregateOptions{FacultyName: assignment.FacultyName}
	if assignment.Deadline != nil {
		opts.AsOf = assignment.Deadline
	}

	return s.attendance.Aggregate(ctx, identity, assignment.CourseCode, opts)
}

// allocate materializes the student's question set according to the
// assignment's strategy. Returns the frozen id list, or nil when the strategy
// yields nothing for this student.
func (s *allocationService) allocate(ctx context.Context, identity *models.StudentIdentity, assignment *models.Assignment, percent float64) ([]uint, error) {
	// manual assignments share the fixed pool; nothing is persisted per
	// student.
	if assignment.Type == models.AssignmentManual {
		return questionIDs(assignment.Questions), nil
	}

	existing, err := s.repo.StudentAssignment().GetByAssignmentAndRoll(ctx, s.db, assignment.ID, identity.Roll)
	if err == nil {
		return existing.QuestionIDs, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing allocation: %w", err)
	}

	var selected []uint
	switch assignment.Type {
	case models.AssignmentRandomized:
		selected = s.drawRandom(questionIDs(assignment.Questions), assignment.QuestionCount)

	case models.AssignmentPersonalized:
		if !s.isTargeted(identity, assignment) {
			return nil, nil
		}
		selected = s.drawRandom(questionIDs(assignment.Questions), assignment.QuestionCount)

	case models.AssignmentBatchAttendance:
		selected = s.drawByAttendanceBracket(assignment, percent)

	default:
		return nil, fmt.Errorf("unknown assignment type %q", assignment.Type)
	}

	if len(selected) == 0 {
		// No matching bracket or an exhausted pool is "no questions
		// available", never a failure, and creates no row.
		return nil, nil
	}

	allocation := &models.StudentAssignment{
		AssignmentID: assignment.ID,
		StudentRoll:  identity.Roll,
		QuestionIDs:  selected,
		Status:       models.StudentAssignmentAssigned,
	}

	// Concurrent first accesses converge on whichever insert committed.
	committed, err := s.repo.StudentAssignment().CreateIfAbsent(ctx, s.db, allocation)
	if err != nil {
		return nil, fmt.Errorf("failed to persist allocation: %w", err)
	}

	if committed.ID == allocation.ID {
		event := events.AllocationCreatedEvent{
			AssignmentID: assignment.ID,
			StudentRoll:  identity.Roll,
			QuestionIDs:  committed.QuestionIDs,
		}
		if err := s.publisher.PublishAllocationCreated(ctx, event); err != nil {
			// The allocation is committed; a lost event must not fail it.
			s.logger.Error("Failed to publish allocation event",
				"error", err,
				"assignment_id", assignment.ID,
				"student_roll", identity.Roll)
		}
	}

	return committed.QuestionIDs, nil
}

func (s *allocationService) isTargeted(identity *models.StudentIdentity, assignment *models.Assignment) bool {
	for _, target := range assignment.TargetStudentIDs {
		if identity.HasInternalID(target) {
			return true
		}
	}
	return false
}

// drawRandom returns count ids drawn uniformly without replacement; the whole
// pool when count is zero or exceeds it.
func (s *allocationService) drawRandom(pool []uint, count int) []uint {
	if len(pool) == 0 {
		return nil
	}
	shuffled := make([]uint, len(pool))
	copy(shuffled, pool)
	s.shuffler.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if count <= 0 || count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}

// drawByAttendanceBracket picks the bracket containing percent (highest floor
// wins on overlap), then draws that bracket's count with topic weighting and
// fills any remainder from the rest of the pool.
func (s *allocationService) drawByAttendanceBracket(assignment *models.Assignment, percent float64) []uint {
	rule, ok := matchBracket(assignment.Rules.Data(), percent)
	if !ok {
		return nil
	}
	totalQ := rule.Count

	chosen := make([]uint, 0, totalQ)
	chosenSet := make(map[uint]bool)

	for _, tw := range assignment.TopicWeights.Data() {
		n := int(math.Round(float64(totalQ) * tw.Weight / 100))
		if n <= 0 {
			continue
		}

		topicPool := poolForTopic(assignment.Questions, tw.Topic, chosenSet)
		for _, id := range s.drawRandom(topicPool, n) {
			if !chosenSet[id] {
				chosenSet[id] = true
				chosen = append(chosen, id)
			}
		}
	}

	// Fill from the whole pool, excluding anything already chosen.
	if len(chosen) < totalQ {
		remainder := make([]uint, 0)
		for _, q := range assignment.Questions {
			if !chosenSet[q.ID] {
				remainder = append(remainder, q.ID)
			}
		}
		need := totalQ - len(chosen)
		for _, id := range s.drawRandom(remainder, need) {
			chosenSet[id] = true
			chosen = append(chosen, id)
		}
	}

	// Rounding drift can overshoot; the bracket count is a hard cap.
	if len(chosen) > totalQ {
		chosen = chosen[:totalQ]
	}

	return chosen
}

// matchBracket resolves overlapping rules toward the stricter bracket: rules
// are ordered by descending floor and the first containing range wins, so a
// student sitting exactly on a boundary lands in the higher-requirement
// bracket.
func matchBracket(rules []models.BracketRule, percent float64) (models.BracketRule, bool) {
	sorted := make([]models.BracketRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Min > sorted[j].Min
	})

	for _, rule := range sorted {
		if rule.Contains(percent) {
			return rule, true
		}
	}
	return models.BracketRule{}, false
}

func poolForTopic(questions []models.Question, topic string, exclude map[uint]bool) []uint {
	var pool []uint
	for _, q := range questions {
		if q.Topic == topic && !exclude[q.ID] {
			pool = append(pool, q.ID)
		}
	}
	return pool
}

func questionIDs(questions []models.Question) []uint {
	ids := make([]uint, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids
}
