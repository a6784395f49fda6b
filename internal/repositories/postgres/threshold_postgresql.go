package postgres

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/campusgate/allocation-service/internal/cache"
	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/repositories"
)

const defaultAttendanceRequirement = 75

type ThresholdPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewThresholdPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ThresholdRepository {
	return &ThresholdPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (t *ThresholdPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

// Get reads the single config row. Missing config is not an error: the
// engine gets a document holding only the built-in default, so evaluation
// degrades to the scalar requirement rather than failing.
func (t *ThresholdPostgreSQL) Get(ctx context.Context, tx *gorm.DB) (*models.ThresholdConfig, error) {
	db := t.getDB(tx)
	var config models.ThresholdConfig

	err := t.cacheManager.Threshold.CacheOrExecute(ctx, "current", &config, cache.ThresholdCacheConfig.TTL, func() (interface{}, error) {
		var row models.ThresholdConfig
		err := db.WithContext(ctx).Order("id ASC").First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.ThresholdConfig{DefaultRequirement: defaultAttendanceRequirement}, nil
		}
		if err != nil {
			return nil, err
		}
		return &row, nil
	})

	return &config, err
}

func (t *ThresholdPostgreSQL) Save(ctx context.Context, tx *gorm.DB, config *models.ThresholdConfig) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Save(config).Error; err != nil {
		return err
	}
	cache.SafeDelete(ctx, t.cacheManager.Threshold, "current")
	return nil
}
