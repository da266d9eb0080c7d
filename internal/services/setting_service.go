package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"vmp-callback/internal/models"
	"vmp-callback/pkg/logging"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SettingService reads operational settings with a best-effort Redis
// read-through cache in front of the database. A nil Redis client
// disables caching. Settings are written elsewhere (bot admin
// commands); this service never mutates them.
type SettingService struct {
	db       *gorm.DB
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewSettingService creates a new setting service
func NewSettingService(db *gorm.DB, cache *redis.Client, cacheTTL time.Duration) *SettingService {
	return &SettingService{db: db, cache: cache, cacheTTL: cacheTTL}
}

func settingCacheKey(key string) string {
	return "setting:" + key
}

// Get returns the setting value for key, or "" when the setting does
// not exist or has no value. Cache failures are logged and fall through
// to the database.
func (s *SettingService) Get(ctx context.Context, key string) (string, error) {
	if s.cache != nil {
		value, err := s.cache.Get(ctx, settingCacheKey(key)).Result()
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, redis.Nil) {
			logging.Errorf("Setting cache read failed for %s: %v", key, err)
		}
	}

	var setting models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load setting %s: %w", key, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, settingCacheKey(key), setting.Value, s.cacheTTL).Err(); err != nil {
			logging.Errorf("Setting cache write failed for %s: %v", key, err)
		}
	}

	return setting.Value, nil
}
