package services

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/campusgate/allocation-service/internal/models"
)

func TestLedgerService_CourseAdjustments(t *testing.T) {
	service := NewLedgerService(testLogger())

	identity := &models.StudentIdentity{
		Roll:        "21CS042",
		InternalIDs: []uint{1, 2},
		Records: []*models.Student{
			{
				ID:                     1,
				Roll:                   "21CS042",
				CourseCode:             "CS301",
				AttendedAdjustment:     2,
				TotalClassesAdjustment: 1,
				SubmissionAdjustments:  datatypes.NewJSONType(map[string]int{"cs-301": 1}),
			},
			{
				ID:                     2,
				Roll:                   "21CS042",
				CourseCode:             "MA201",
				AttendedAdjustment:     -1,
				TotalClassesAdjustment: 0,
				SubmissionAdjustments:  datatypes.NewJSONType(map[string]int{"CS 301": 2, "MA201": 5}),
			},
		},
	}

	t.Run("SumsAcrossAllRows", func(t *testing.T) {
		adj := service.CourseAdjustments(identity, "CS301")
		if adj.Attended != 1 {
			t.Errorf("Expected attended sum 1, got %d", adj.Attended)
		}
		if adj.Total != 1 {
			t.Errorf("Expected total sum 1, got %d", adj.Total)
		}
		// "cs-301" and "CS 301" both normalize to CS301.
		if adj.Submission != 3 {
			t.Errorf("Expected submission sum 3, got %d", adj.Submission)
		}
	})

	t.Run("SubmissionKeysMatchedAfterNormalization", func(t *testing.T) {
		adj := service.CourseAdjustments(identity, "ma 201")
		if adj.Submission != 5 {
			t.Errorf("Expected submission sum 5, got %d", adj.Submission)
		}
	})

	t.Run("NegativeSumsNotClamped", func(t *testing.T) {
		negative := &models.StudentIdentity{
			Records: []*models.Student{
				{AttendedAdjustment: -4, TotalClassesAdjustment: -2},
			},
		}
		adj := service.CourseAdjustments(negative, "CS301")
		if adj.Attended != -4 || adj.Total != -2 {
			t.Errorf("Expected raw sums -4/-2, got %d/%d", adj.Attended, adj.Total)
		}
	})
}
