package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/campusgate/allocation-service/internal/cache"
	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/repositories"
)

type AssignmentPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewAssignmentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (a *AssignmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AssignmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(assignment).Error; err != nil {
		return err
	}
	cache.InvalidateAssignmentCache(ctx, a.cacheManager, assignment.ID, assignment.CreatedBy)
	return nil
}

func (a *AssignmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) {
	db := a.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var assignment models.Assignment

	err := a.cacheManager.Assignment.CacheOrExecute(ctx, cacheKey, &assignment, cache.AssignmentCacheConfig.TTL, func() (interface{}, error) {
		var dbAssignment models.Assignment
		if err := db.WithContext(ctx).First(&dbAssignment, id).Error; err != nil {
			return nil, fmt.Errorf("failed to get assignment: %w", err)
		}
		return &dbAssignment, nil
	})

	return &assignment, err
}

func (a *AssignmentPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) {
	db := a.getDB(tx)
	var assignment models.Assignment
	if err := db.WithContext(ctx).
		Preload("Questions").
		First(&assignment, id).Error; err != nil {
		return nil, err
	}
	assignment.QuestionsCount = len(assignment.Questions)
	return &assignment, nil
}

func (a *AssignmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Save(assignment).Error; err != nil {
		return err
	}
	cache.InvalidateAssignmentCache(ctx, a.cacheManager, assignment.ID, assignment.CreatedBy)
	return nil
}

func (a *AssignmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Assignment{}, id).Error; err != nil {
		return err
	}
	cache.SafeDelete(ctx, a.cacheManager.Assignment, fmt.Sprintf("id:%d", id))
	return nil
}

func (a *AssignmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AssignmentFilters) ([]*models.Assignment, int64, error) {
	db := a.getDB(tx)
	var assignments []*models.Assignment
	var total int64

	// apply filters first
	query := db.WithContext(ctx).Model(&models.Assignment{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then pagination and sorting
	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

func (a *AssignmentPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AssignmentFilters) *gorm.DB {
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CourseCode != nil {
		query = query.Where("course_code = ?", *filters.CourseCode)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

func (a *AssignmentPostgreSQL) AddQuestions(ctx context.Context, tx *gorm.DB, assignmentID uint, questions []*models.Question) error {
	db := a.getDB(tx)
	for _, q := range questions {
		q.AssignmentID = assignmentID
	}
	if err := db.WithContext(ctx).Create(&questions).Error; err != nil {
		return err
	}
	cache.SafeDelete(ctx, a.cacheManager.Assignment, fmt.Sprintf("id:%d", assignmentID))
	return nil
}

func (a *AssignmentPostgreSQL) RemoveQuestion(ctx context.Context, tx *gorm.DB, assignmentID, questionID uint) error {
	db := a.getDB(tx)
	result := db.WithContext(ctx).
		Where("assignment_id = ? AND id = ?", assignmentID, questionID).
		Delete(&models.Question{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.SafeDelete(ctx, a.cacheManager.Assignment, fmt.Sprintf("id:%d", assignmentID))
	return nil
}

func (a *AssignmentPostgreSQL) GetQuestionsByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	db := a.getDB(tx)
	if len(ids) == 0 {
		return []*models.Question{}, nil
	}
	var questions []*models.Question
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}
