package postgres

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/campusgate/allocation-service/internal/cache"
	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/repositories"
)

type AttendancePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewAttendancePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AttendanceRepository {
	return &AttendancePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (a *AttendancePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AttendancePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AttendanceRecord, error) {
	db := a.getDB(tx)
	var record models.AttendanceRecord
	if err := db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns sessions within the optional date window. Course filtering is
// not pushed to SQL: codes are free text and must be normalized in memory.
func (a *AttendancePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AttendanceFilters) ([]*models.AttendanceRecord, error) {
	db := a.getDB(tx)
	var records []*models.AttendanceRecord

	query := db.WithContext(ctx).Model(&models.AttendanceRecord{})
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", *filters.DateTo)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("date ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (a *AttendancePostgreSQL) Create(ctx context.Context, tx *gorm.DB, record *models.AttendanceRecord) error {
	db := a.getDB(tx)
	// A session with no participants recorded on either side counts toward
	// nobody and is never stored.
	if len(record.PresentStudentIDs) == 0 && len(record.AbsentStudentIDs) == 0 {
		return gorm.ErrEmptySlice
	}
	return db.WithContext(ctx).Create(record).Error
}
