package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/reuniteit/internal/domain"
)

// Cache keys for the listing pages. Search results are deliberately not
// cached: the query space is unbounded and the pages are cheap.
const (
	cacheKeyReportList  = "reports:list"
	cacheKeyReportStats = "reports:stats"
)

// cachedReportRepository is a read-through cache decorator over a
// ReportRepository. The home page and the admin stats block are the hot
// reads; every write path invalidates both keys.
type cachedReportRepository struct {
	inner  ReportRepository
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedReportRepository wraps a ReportRepository with a listing cache.
// Cache failures are logged and degrade to the inner repository; they never
// fail a request.
func NewCachedReportRepository(inner ReportRepository, cache Cache, ttl time.Duration, logger zerolog.Logger) ReportRepository {
	return &cachedReportRepository{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "report_cache").Logger(),
	}
}

func (r *cachedReportRepository) Create(ctx context.Context, report *domain.Report) error {
	if err := r.inner.Create(ctx, report); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *cachedReportRepository) List(ctx context.Context) ([]*domain.Report, error) {
	if data, err := r.cache.Get(ctx, cacheKeyReportList); err == nil {
		var reports []*domain.Report
		if err := json.Unmarshal(data, &reports); err == nil {
			return reports, nil
		}
		r.logger.Warn().Msg("discarding undecodable cached report list")
	}

	reports, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(reports); err == nil {
		if err := r.cache.Set(ctx, cacheKeyReportList, data, r.ttl); err != nil {
			r.logger.Warn().Err(err).Msg("failed to cache report list")
		}
	}
	return reports, nil
}

func (r *cachedReportRepository) ListByOwner(ctx context.Context, userID string) ([]*domain.Report, error) {
	return r.inner.ListByOwner(ctx, userID)
}

func (r *cachedReportRepository) Search(ctx context.Context, query string) ([]*domain.Report, error) {
	if query == "" {
		return r.List(ctx)
	}
	return r.inner.Search(ctx, query)
}

func (r *cachedReportRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	if err := r.inner.SetApproved(ctx, id, approved); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedReportRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedReportRepository) DeleteByOwner(ctx context.Context, userID string) (int64, error) {
	n, err := r.inner.DeleteByOwner(ctx, userID)
	if err != nil {
		return n, err
	}
	if n > 0 {
		r.invalidate(ctx)
	}
	return n, nil
}

func (r *cachedReportRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	if data, err := r.cache.Get(ctx, cacheKeyReportStats); err == nil {
		var stats domain.Stats
		if err := json.Unmarshal(data, &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := r.inner.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(stats); err == nil {
		if err := r.cache.Set(ctx, cacheKeyReportStats, data, r.ttl); err != nil {
			r.logger.Warn().Err(err).Msg("failed to cache report stats")
		}
	}
	return stats, nil
}

func (r *cachedReportRepository) invalidate(ctx context.Context) {
	if err := r.cache.Delete(ctx, cacheKeyReportList, cacheKeyReportStats); err != nil {
		r.logger.Warn().Err(err).Msg("failed to invalidate report cache")
	}
}

var _ ReportRepository = (*cachedReportRepository)(nil)
