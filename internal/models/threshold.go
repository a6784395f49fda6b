package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// ThresholdConfig is the process-wide attendance requirement document,
// maintained by administrators. One row; read once per evaluation so a single
// call never sees two versions.
type ThresholdConfig struct {
	ID uint `json:"id" gorm:"primaryKey"`

	// Fallback when no per-key requirement exists.
	DefaultRequirement float64 `json:"default_requirement" gorm:"not null;default:75" validate:"min=0,max=100"`

	// Keyed by "{dept}_{year}_{course}".
	Requirements datatypes.JSONType[map[string]float64] `json:"requirements" gorm:"type:jsonb"`

	UpdatedBy string    `json:"updated_by" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ThresholdConfig) TableName() string {
	return "threshold_configs"
}

// ThresholdKey builds the per-combination lookup key.
func ThresholdKey(department string, year int, courseCode string) string {
	return fmt.Sprintf("%s_%d_%s", department, year, courseCode)
}

// RequirementFor resolves the required percentage for a combination, falling
// back to the scalar default.
func (c *ThresholdConfig) RequirementFor(department string, year int, courseCode string) float64 {
	if reqs := c.Requirements.Data(); reqs != nil {
		if v, ok := reqs[ThresholdKey(department, year, courseCode)]; ok {
			return v
		}
	}
	return c.DefaultRequirement
}
