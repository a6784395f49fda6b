package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campusgate/allocation-service/internal/cache"
	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/repositories"
)

type StudentAssignmentPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewStudentAssignmentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.StudentAssignmentRepository {
	return &StudentAssignmentPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (s *StudentAssignmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// CreateIfAbsent relies on the unique (assignment_id, student_roll) index:
// the insert is attempted with ON CONFLICT DO NOTHING, and whichever row is
// committed afterwards is returned. A lost race therefore resolves to the
// winner's question set instead of a uniqueness violation.
func (s *StudentAssignmentPostgreSQL) CreateIfAbsent(ctx context.Context, tx *gorm.DB, allocation *models.StudentAssignment) (*models.StudentAssignment, error) {
	db := s.getDB(tx)

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_roll"}},
			DoNothing: true,
		}).
		Create(allocation)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create student assignment: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		return allocation, nil
	}

	// Insert was skipped; read the row the concurrent winner committed.
	return s.GetByAssignmentAndRoll(ctx, tx, allocation.AssignmentID, allocation.StudentRoll)
}

func (s *StudentAssignmentPostgreSQL) GetByAssignmentAndRoll(ctx context.Context, tx *gorm.DB, assignmentID uint, roll string) (*models.StudentAssignment, error) {
	db := s.getDB(tx)
	var allocation models.StudentAssignment
	if err := db.WithContext(ctx).
		Where("assignment_id = ? AND student_roll = ?", assignmentID, roll).
		First(&allocation).Error; err != nil {
		return nil, err
	}
	return &allocation, nil
}

func (s *StudentAssignmentPostgreSQL) GetByRoll(ctx context.Context, tx *gorm.DB, roll string) ([]*models.StudentAssignment, error) {
	db := s.getDB(tx)
	var allocations []*models.StudentAssignment
	if err := db.WithContext(ctx).
		Where("student_roll = ?", roll).
		Order("created_at DESC").
		Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

func (s *StudentAssignmentPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.StudentAssignmentStatus) error {
	db := s.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.StudentAssignment{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
