package api

import (
	"context"
	"time"

	"github.com/agroguard/agroguard/core/pkg/contracts"
)

// CachedCrops serves crop monitoring records through a cache.
// NDVI feeds update on the order of hours, so a short TTL hides most round trips.
type CachedCrops struct {
	source CropSource
	cache  contracts.Cache
	ttl    time.Duration
	logger contracts.Logger
}

// NewCachedCrops wraps source with cache
func NewCachedCrops(source CropSource, cache contracts.Cache, ttl time.Duration, logger contracts.Logger) *CachedCrops {
	if logger == nil {
		logger = contracts.NopLogger{}
	}
	return &CachedCrops{source: source, cache: cache, ttl: ttl, logger: logger}
}

// MonitoringData returns cached monitoring records, fetching on a miss
func (c *CachedCrops) MonitoringData(ctx context.Context) ([]CropData, error) {
	return c.remember(ctx, "crops:monitoring", func() ([]CropData, error) {
		return c.source.MonitoringData(ctx)
	})
}

// FarmerCrops returns cached records for one farmer, fetching on a miss
func (c *CachedCrops) FarmerCrops(ctx context.Context, farmerID string) ([]CropData, error) {
	return c.remember(ctx, "crops:farmer:"+farmerID, func() ([]CropData, error) {
		return c.source.FarmerCrops(ctx, farmerID)
	})
}

// patternDeleter is implemented by caches that can drop a whole key family
type patternDeleter interface {
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

// Invalidate drops the cached overview, and every per-farmer entry when the
// cache supports pattern deletes.
func (c *CachedCrops) Invalidate(ctx context.Context) error {
	if pd, ok := c.cache.(patternDeleter); ok {
		n, err := pd.DeletePattern(ctx, "crops:*")
		if err != nil {
			return err
		}
		c.logger.Debug("crop cache invalidated", "keys", n)
		return nil
	}
	return c.cache.Delete(ctx, "crops:monitoring")
}

// remember falls back to the source when the cache itself is unavailable
func (c *CachedCrops) remember(ctx context.Context, key string, fetch func() ([]CropData, error)) ([]CropData, error) {
	var (
		out      []CropData
		fetched  []CropData
		fetchErr error
		called   bool
	)
	err := c.cache.Remember(ctx, key, c.ttl, func() (any, error) {
		c.logger.Debug("crop cache miss", "key", key)
		called = true
		fetched, fetchErr = fetch()
		if fetchErr != nil {
			return nil, fetchErr
		}
		return fetched, nil
	}, &out)

	switch {
	case err == nil:
		return out, nil
	case fetchErr != nil:
		return nil, fetchErr
	case called:
		c.logger.Warn("crop cache write failed", "key", key, "error", err)
		return fetched, nil
	default:
		c.logger.Warn("crop cache unavailable", "key", key, "error", err)
		return fetch()
	}
}

var _ CropSource = (*CachedCrops)(nil)
