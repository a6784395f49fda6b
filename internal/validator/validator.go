package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/campusgate/allocation-service/internal/models"
)

// ValidationError represents a single field failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Validator wraps go-playground/validator with the portal's custom rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()

	_ = validate.RegisterValidation("assignment_type", func(fl validator.FieldLevel) bool {
		switch models.AssignmentType(fl.Field().String()) {
		case models.AssignmentManual, models.AssignmentRandomized,
			models.AssignmentBatchAttendance, models.AssignmentPersonalized:
			return true
		}
		return false
	})

	_ = validate.RegisterValidation("percent", func(fl validator.FieldLevel) bool {
		v := fl.Field().Float()
		return v >= 0 && v <= 100
	})

	return &Validator{validate: validate}
}

// Validate validates a struct and returns ValidationErrors on failure.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var errs ValidationErrors
	for _, fe := range fieldErrors {
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return errs
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "assignment_type":
		return "must be a valid assignment type"
	case "percent":
		return "must be between 0 and 100"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ValidateBracketRules checks structural sanity of batch_attendance rules.
// Overlapping ranges are allowed (resolution picks the highest floor), but
// each rule must be internally consistent.
func ValidateBracketRules(rules []models.BracketRule) ValidationErrors {
	var errs ValidationErrors
	for i, rule := range rules {
		if rule.Min < 0 || rule.Min > 100 || rule.Max < 0 || rule.Max > 100 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rules[%d]", i),
				Message: "bounds must be between 0 and 100",
				Rule:    "percent",
			})
		}
		if rule.Min > rule.Max {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rules[%d]", i),
				Message: "min must not exceed max",
				Rule:    "range",
			})
		}
		if rule.Count < 1 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rules[%d].count", i),
				Message: "must be at least 1",
				Rule:    "min",
			})
		}
	}
	return errs
}

// ValidateTopicWeights checks topic weight entries. Weights need not sum to
// 100; the allocator fills any remainder from the whole pool.
func ValidateTopicWeights(weights []models.TopicWeight) ValidationErrors {
	var errs ValidationErrors
	for i, w := range weights {
		if w.Topic == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("topic_weights[%d].topic", i),
				Message: "is required",
				Rule:    "required",
			})
		}
		if w.Weight < 0 || w.Weight > 100 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("topic_weights[%d].weight", i),
				Message: "must be between 0 and 100",
				Rule:    "percent",
			})
		}
	}
	return errs
}
