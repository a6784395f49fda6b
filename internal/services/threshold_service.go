package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/repositories"
	"github.com/campusgate/allocation-service/internal/validator"
)

type thresholdService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewThresholdService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) ThresholdService {
	return &thresholdService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

func (s *thresholdService) Get(ctx context.Context) (*models.ThresholdConfig, error) {
	cfg, err := s.repo.Threshold().Get(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get threshold config: %w", err)
	}
	return cfg, nil
}

func (s *thresholdService) Update(ctx context.Context, req *UpdateThresholdRequest, userID string) (*models.ThresholdConfig, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	cfg, err := s.repo.Threshold().Get(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get threshold config: %w", err)
	}

	if req.DefaultRequirement != nil {
		cfg.DefaultRequirement = *req.DefaultRequirement
	}
	if req.Requirements != nil {
		requirements := cfg.Requirements.Data()
		if requirements == nil {
			requirements = make(map[string]float64)
		}
		for key, value := range req.Requirements {
			requirements[key] = value
		}
		cfg.Requirements = datatypes.NewJSONType(requirements)
	}
	cfg.UpdatedBy = userID

	if err := s.repo.Threshold().Save(ctx, s.db, cfg); err != nil {
		return nil, fmt.Errorf("failed to save threshold config: %w", err)
	}

	s.logger.Info("Threshold config updated",
		"default_requirement", cfg.DefaultRequirement,
		"override_count", len(cfg.Requirements.Data()),
		"updated_by", userID)
	return cfg, nil
}
