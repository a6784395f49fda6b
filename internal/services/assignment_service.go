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

type assignmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAssignmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) AssignmentService {
	return &assignmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

func (s *assignmentService) Create(ctx context.Context, req *CreateAssignmentRequest, creatorID string) (*AssignmentResponse, error) {
	s.logger.Info("Creating assignment", "title", req.Title, "type", req.Type, "creator_id", creatorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if errs := validator.ValidateBracketRules(req.Rules); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, errs)
	}
	if errs := validator.ValidateTopicWeights(req.TopicWeights); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, errs)
	}

	assignment := &models.Assignment{
		Title:            req.Title,
		Description:      req.Description,
		Type:             req.Type,
		Status:           models.AssignmentDraft,
		CourseCode:       req.CourseCode,
		FacultyName:      req.FacultyName,
		StartTime:        req.StartTime,
		Deadline:         req.Deadline,
		QuestionCount:    req.QuestionCount,
		Rules:            datatypes.NewJSONType(req.Rules),
		TopicWeights:     datatypes.NewJSONType(req.TopicWeights),
		TargetStudentIDs: req.TargetStudentIDs,
		CreatedBy:        creatorID,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Assignment().Create(ctx, nil, assignment); err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}

		if len(req.Questions) > 0 {
			questions := make([]*models.Question, 0, len(req.Questions))
			for _, q := range req.Questions {
				questions = append(questions, &models.Question{
					Text:      q.Text,
					Topic:     q.Topic,
					Marks:     q.Marks,
					CreatedBy: creatorID,
				})
			}
			if err := txRepo.Assignment().AddQuestions(ctx, nil, assignment.ID, questions); err != nil {
				return fmt.Errorf("failed to add questions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Assignment created", "assignment_id", assignment.ID)
	return s.buildResponse(assignment, creatorID), nil
}

func (s *assignmentService) GetByID(ctx context.Context, id uint) (*AssignmentResponse, error) {
	assignment, err := s.repo.Assignment().GetByIDWithQuestions(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return s.buildResponse(assignment, assignment.CreatedBy), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, req *UpdateAssignmentRequest, userID string) (*AssignmentResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	assignment, err := s.repo.Assignment().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	if assignment.CreatedBy != userID {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = req.Description
	}
	if req.FacultyName != nil {
		assignment.FacultyName = *req.FacultyName
	}
	if req.StartTime != nil {
		assignment.StartTime = req.StartTime
	}
	if req.Deadline != nil {
		assignment.Deadline = req.Deadline
	}
	if req.QuestionCount != nil {
		assignment.QuestionCount = *req.QuestionCount
	}
	if req.Rules != nil {
		if errs := validator.ValidateBracketRules(req.Rules); len(errs) > 0 {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, errs)
		}
		assignment.Rules = datatypes.NewJSONType(req.Rules)
	}
	if req.TopicWeights != nil {
		if errs := validator.ValidateTopicWeights(req.TopicWeights); len(errs) > 0 {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, errs)
		}
		assignment.TopicWeights = datatypes.NewJSONType(req.TopicWeights)
	}

	if err := s.repo.Assignment().Update(ctx, s.db, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}

	return s.buildResponse(assignment, userID), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint, userID string) error {
	assignment, err := s.repo.Assignment().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to get assignment: %w", err)
	}

	if assignment.CreatedBy != userID {
		return ErrForbidden
	}

	return s.repo.Assignment().Delete(ctx, s.db, id)
}

func (s *assignmentService) List(ctx context.Context, filters AssignmentFilters) (*AssignmentListResponse, error) {
	page := filters.Page
	if page < 1 {
		page = 1
	}
	size := filters.Size
	if size < 1 || size > 100 {
		size = 20
	}

	repoFilters := repositories.AssignmentFilters{
		Type:       filters.Type,
		Status:     filters.Status,
		CourseCode: filters.CourseCode,
		Limit:      size,
		Offset:     (page - 1) * size,
	}

	assignments, total, err := s.repo.Assignment().List(ctx, s.db, repoFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	response := &AssignmentListResponse{
		Assignments: make([]*AssignmentResponse, len(assignments)),
		Total:       total,
		Page:        page,
		Size:        size,
	}
	for i, a := range assignments {
		response.Assignments[i] = s.buildResponse(a, a.CreatedBy)
	}

	return response, nil
}

func (s *assignmentService) AddQuestions(ctx context.Context, assignmentID uint, reqs []CreateQuestionRequest, userID string) error {
	assignment, err := s.repo.Assignment().GetByID(ctx, s.db, assignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment.CreatedBy != userID {
		return ErrForbidden
	}

	questions := make([]*models.Question, 0, len(reqs))
	for _, q := range reqs {
		if err := s.validator.Validate(&q); err != nil {
			return fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		questions = append(questions, &models.Question{
			Text:      q.Text,
			Topic:     q.Topic,
			Marks:     q.Marks,
			CreatedBy: userID,
		})
	}

	return s.repo.Assignment().AddQuestions(ctx, s.db, assignmentID, questions)
}

func (s *assignmentService) RemoveQuestion(ctx context.Context, assignmentID, questionID uint, userID string) error {
	assignment, err := s.repo.Assignment().GetByID(ctx, s.db, assignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment.CreatedBy != userID {
		return ErrForbidden
	}

	if err := s.repo.Assignment().RemoveQuestion(ctx, s.db, assignmentID, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to remove question: %w", err)
	}
	return nil
}

func (s *assignmentService) buildResponse(assignment *models.Assignment, userID string) *AssignmentResponse {
	return &AssignmentResponse{
		Assignment: assignment,
		CanEdit:    assignment.CreatedBy == userID,
		CanDelete:  assignment.CreatedBy == userID,
	}
}
