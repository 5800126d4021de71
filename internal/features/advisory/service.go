package advisory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheTTL = 10 * time.Minute

type AdvisoryService interface {
	GetAdvisory(ctx context.Context, id string) (*Advisory, error)
	ListAdvisories(ctx context.Context, limit int64) ([]Advisory, error)
	UpdateAdvisory(ctx context.Context, adv *Advisory) error
}

type AdvisoryServiceImpl struct {
	repo  AdvisoryRepository
	cache *redis.Client
	log   *zap.Logger
}

func NewAdvisoryService(repo AdvisoryRepository, cache *redis.Client, log *zap.Logger) AdvisoryService {
	return &AdvisoryServiceImpl{repo: repo, cache: cache, log: log}
}

func cacheKey(id string) string {
	return "advisory:" + id
}

// GetAdvisory reads through the Redis cache. Cache errors degrade to
// plain Mongo reads.
func (s *AdvisoryServiceImpl) GetAdvisory(ctx context.Context, id string) (*Advisory, error) {
	if cached, err := s.cache.Get(ctx, cacheKey(id)).Bytes(); err == nil {
		var adv Advisory
		if err := json.Unmarshal(cached, &adv); err == nil {
			return &adv, nil
		}
	}

	adv, err := s.repo.GetByID(ctx, id)
	if err != nil || adv == nil {
		return adv, err
	}

	if data, err := json.Marshal(adv); err == nil {
		if err := s.cache.Set(ctx, cacheKey(id), data, cacheTTL).Err(); err != nil {
			s.log.Debug("advisory cache write failed", zap.Error(err))
		}
	}
	return adv, nil
}

func (s *AdvisoryServiceImpl) ListAdvisories(ctx context.Context, limit int64) ([]Advisory, error) {
	return s.repo.List(ctx, limit)
}

func (s *AdvisoryServiceImpl) UpdateAdvisory(ctx context.Context, adv *Advisory) error {
	if err := s.repo.Update(ctx, adv); err != nil {
		return err
	}
	// Invalidate so the next composer run sees the fresh snapshot.
	if err := s.cache.Del(ctx, cacheKey(adv.ID.Hex())).Err(); err != nil {
		s.log.Debug("advisory cache invalidation failed", zap.Error(err))
	}
	return nil
}
