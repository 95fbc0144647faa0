package repository

import (
	"context"
	"errors"
	"time"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/domain/repository"
	"VacancyPulse/pkg/cache"
)

const rateKeyPrefix = "rates"

// CacheRateStore keeps monthly rate tables in a cache.Service.
type CacheRateStore struct {
	cache cache.Service
	ttl   time.Duration
}

var _ repository.RateCache = (*CacheRateStore)(nil)

// NewCacheRateStore creates a rate cache; ttl <= 0 keeps entries forever.
func NewCacheRateStore(c cache.Service, ttl time.Duration) *CacheRateStore {
	return &CacheRateStore{cache: c, ttl: ttl}
}

// RateKey returns the cache key of period, e.g. "rates:2022-03".
func RateKey(period models.YearMonth) string {
	return cache.GenerateKeyWithParams(rateKeyPrefix, period.String())
}

func (s *CacheRateStore) Get(ctx context.Context, period models.YearMonth) (map[string]float64, bool, error) {
	var rates map[string]float64
	if err := s.cache.Get(ctx, RateKey(period), &rates); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return rates, true, nil
}

func (s *CacheRateStore) Set(ctx context.Context, period models.YearMonth, rates map[string]float64) error {
	return s.cache.Set(ctx, RateKey(period), rates, s.ttl)
}
