package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/cache"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
)

const classIDsKeyPrefix = "class_ids:"

type classDirectory struct {
	repo   repositories.Repository
	cache  cache.CacheService
	ttl    time.Duration
	logger *slog.Logger
}

// NewClassDirectory looks up class membership in the store, fronted by cache
// when one is given. Cache failures fall through to the store.
func NewClassDirectory(repo repositories.Repository, cacheService cache.CacheService, ttl time.Duration, logger *slog.Logger) ClassDirectory {
	return &classDirectory{
		repo:   repo,
		cache:  cacheService,
		ttl:    ttl,
		logger: logger,
	}
}

func (d *classDirectory) ClassIDsForUser(ctx context.Context, userID string) ([]uint, error) {
	key := classIDsKeyPrefix + userID

	if d.cache != nil {
		var cached []uint
		err := d.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			d.logger.Warn("Class membership cache unavailable", "user_id", userID, "error", err)
		}
	}

	ids, err := d.repo.Class().ClassIDsForUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up classes for user %s: %w", userID, err)
	}
	if ids == nil {
		ids = []uint{}
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, key, ids, d.ttl); err != nil {
			d.logger.Warn("Failed to cache class membership", "user_id", userID, "error", err)
		}
	}
	return ids, nil
}

func (d *classDirectory) Invalidate(ctx context.Context, userIDs ...string) {
	if d.cache == nil {
		return
	}
	for _, userID := range userIDs {
		if err := d.cache.Delete(ctx, classIDsKeyPrefix+userID); err != nil {
			d.logger.Warn("Failed to invalidate class membership", "user_id", userID, "error", err)
		}
	}
}
