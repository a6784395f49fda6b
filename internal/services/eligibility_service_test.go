package services

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/campusgate/allocation-service/internal/models"
)

func TestEligibilityService_Evaluate(t *testing.T) {
	service := NewEligibilityService(testLogger())

	cfg := &models.ThresholdConfig{
		DefaultRequirement: 75,
		Requirements: datatypes.NewJSONType(map[string]float64{
			models.ThresholdKey("CSE", 3, "CS301"): 80,
		}),
	}

	tests := []struct {
		name         string
		assignment   *models.Assignment
		department   string
		year         int
		percent      float64
		wantAccess   bool
		wantRequired float64
	}{
		{
			name:         "manual above default",
			assignment:   &models.Assignment{Type: models.AssignmentManual, CourseCode: "MA201"},
			department:   "CSE",
			year:         3,
			percent:      76,
			wantAccess:   true,
			wantRequired: 75,
		},
		{
			name:         "manual exactly on boundary passes",
			assignment:   &models.Assignment{Type: models.AssignmentManual, CourseCode: "MA201"},
			department:   "CSE",
			year:         3,
			percent:      75,
			wantAccess:   true,
			wantRequired: 75,
		},
		{
			name:         "randomized below per-combination override",
			assignment:   &models.Assignment{Type: models.AssignmentRandomized, CourseCode: "CS301"},
			department:   "CSE",
			year:         3,
			percent:      78,
			wantAccess:   false,
			wantRequired: 80,
		},
		{
			name:         "override only applies to its combination",
			assignment:   &models.Assignment{Type: models.AssignmentRandomized, CourseCode: "CS301"},
			department:   "ECE",
			year:         3,
			percent:      78,
			wantAccess:   true,
			wantRequired: 75,
		},
		{
			name:         "personalized bypasses the gate",
			assignment:   &models.Assignment{Type: models.AssignmentPersonalized, CourseCode: "CS301"},
			department:   "CSE",
			year:         3,
			percent:      10,
			wantAccess:   true,
			wantRequired: 80,
		},
		{
			name:         "batch_attendance bypasses the gate",
			assignment:   &models.Assignment{Type: models.AssignmentBatchAttendance, CourseCode: "CS301"},
			department:   "CSE",
			year:         3,
			percent:      10,
			wantAccess:   true,
			wantRequired: 80,
		},
		{
			name: "batch_attendance rules report lowest bracket floor",
			assignment: &models.Assignment{
				Type:       models.AssignmentBatchAttendance,
				CourseCode: "CS301",
				Rules: datatypes.NewJSONType([]models.BracketRule{
					{Min: 75, Max: 100, Count: 5},
					{Min: 50, Max: 74.99, Count: 8},
				}),
			},
			department:   "CSE",
			year:         3,
			percent:      10,
			wantAccess:   true,
			wantRequired: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.Evaluate(tt.assignment, cfg, tt.department, tt.year, tt.percent)
			if got.CanAccess != tt.wantAccess {
				t.Errorf("CanAccess = %v, want %v", got.CanAccess, tt.wantAccess)
			}
			if got.RequiredPercent != tt.wantRequired {
				t.Errorf("RequiredPercent = %v, want %v", got.RequiredPercent, tt.wantRequired)
			}
		})
	}
}
