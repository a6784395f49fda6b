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

type StudentPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewStudentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.StudentRepository {
	return &StudentPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (s *StudentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	db := s.getDB(tx)
	var student models.Student
	if err := db.WithContext(ctx).First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentPostgreSQL) GetByRoll(ctx context.Context, tx *gorm.DB, roll string) ([]*models.Student, error) {
	db := s.getDB(tx)

	// Enrollment rows change rarely; cache the roster lookup.
	cacheKey := fmt.Sprintf("roll:%s", roll)
	var students []*models.Student

	err := s.cacheManager.Roster.CacheOrExecute(ctx, cacheKey, &students, cache.RosterCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.Student
		if err := db.WithContext(ctx).
			Where("roll = ?", roll).
			Order("id ASC").
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get students by roll: %w", err)
		}
		return rows, nil
	})

	return students, err
}

func (s *StudentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	db := s.getDB(tx)
	var students []*models.Student
	var total int64

	query := db.WithContext(ctx).Model(&models.Student{})
	if filters.Department != nil {
		query = query.Where("department = ?", *filters.Department)
	}
	if filters.Year != nil {
		query = query.Where("year = ?", *filters.Year)
	}
	if filters.CourseCode != nil {
		query = query.Where("course_code = ?", *filters.CourseCode)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}
