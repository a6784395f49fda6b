package services

import (
	"log/slog"

	"github.com/campusgate/allocation-service/internal/models"
)

type ledgerService struct {
	logger *slog.Logger
}

func NewLedgerService(logger *slog.Logger) LedgerService {
	return &ledgerService{logger: logger}
}

// CourseAdjustments sums manual corrections across every enrollment row of
// the identity, because a correction may have been applied against whichever
// row existed when it was entered. Sums may be negative; clamping is the
// caller's concern.
func (s *ledgerService) CourseAdjustments(identity *models.StudentIdentity, courseCode string) Adjustments {
	normalized := models.NormalizeCourseCode(courseCode)

	var adj Adjustments
	for _, record := range identity.Records {
		adj.Attended += record.AttendedAdjustment
		adj.Total += record.TotalClassesAdjustment

		if subs := record.SubmissionAdjustments.Data(); subs != nil {
			for course, offset := range subs {
				if models.NormalizeCourseCode(course) == normalized {
					adj.Submission += offset
				}
			}
		}
	}

	return adj
}
