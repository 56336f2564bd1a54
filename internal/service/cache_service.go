package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/examplanner-api/internal/models"
	appErrors "github.com/noah-isme/examplanner-api/pkg/errors"
)

// CacheRepository stores JSON payloads by key.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CacheService keeps committed allotment details warm between commits. Cache
// failures are logged and reported as misses; the database stays authoritative.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service. ttl defaults to ten minutes.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Allotment returns the cached detail for id.
func (s *CacheService) Allotment(ctx context.Context, id string) (*models.AllotmentDetail, bool) {
	if !s.Enabled() {
		return nil, false
	}
	start := time.Now()
	var detail models.AllotmentDetail
	err := s.repo.Get(ctx, allotmentCacheKey(id), &detail)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("allotment cache read failed", zap.String("allotment_id", id), zap.Error(err))
		}
		return nil, false
	}
	return &detail, true
}

// StoreAllotment caches detail under its allotment id.
func (s *CacheService) StoreAllotment(ctx context.Context, detail *models.AllotmentDetail) {
	if !s.Enabled() || detail == nil {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, allotmentCacheKey(detail.ID), detail, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("allotment cache write failed", zap.String("allotment_id", detail.ID), zap.Error(err))
	}
}

// EvictAllotments drops the cached details of replaced or deleted allotments.
func (s *CacheService) EvictAllotments(ctx context.Context, ids ...string) {
	if !s.Enabled() || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, allotmentCacheKey(id))
	}
	if err := s.repo.Delete(ctx, keys...); err != nil {
		s.logger.Warn("allotment cache evict failed", zap.Strings("allotment_ids", ids), zap.Error(err))
	}
}

func allotmentCacheKey(id string) string {
	return "allotments:detail:" + id
}
