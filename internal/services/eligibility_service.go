package services

import (
	"log/slog"

	"github.com/campusgate/allocation-service/internal/models"
)

type eligibilityService struct {
	logger *slog.Logger
}

func NewEligibilityService(logger *slog.Logger) EligibilityService {
	return &eligibilityService{logger: logger}
}

// Evaluate resolves the requirement that applies and decides pass/fail.
//
// Resolution order:
//  1. personalized and batch_attendance assignments never gate on
//     attendance; their percentage only steers which questions are drawn.
//  2. a batch_attendance assignment carrying its own rules redefines the
//     requirement as the lowest bracket floor (legacy interaction, kept
//     as observed).
//  3. otherwise the per-{dept}_{year}_{course} requirement, falling back to
//     the config default.
//
// Deadline enforcement is deliberately not here: the caller applies it before
// exposing questions.
func (s *eligibilityService) Evaluate(assignment *models.Assignment, cfg *models.ThresholdConfig, department string, year int, percent float64) EligibilityResult {
	required := cfg.RequirementFor(department, year, assignment.CourseCode)

	if assignment.Type == models.AssignmentPersonalized || assignment.Type == models.AssignmentBatchAttendance {
		if rules := assignment.Rules.Data(); assignment.Type == models.AssignmentBatchAttendance && len(rules) > 0 {
			required = lowestBracketFloor(rules)
		}
		return EligibilityResult{CanAccess: true, RequiredPercent: required}
	}

	return EligibilityResult{
		CanAccess:       percent >= required,
		RequiredPercent: required,
	}
}

func lowestBracketFloor(rules []models.BracketRule) float64 {
	floor := rules[0].Min
	for _, rule := range rules[1:] {
		if rule.Min < floor {
			floor = rule.Min
		}
	}
	return floor
}
