package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"diabetes-assistant/internal/assessment"
	"diabetes-assistant/internal/cache"

	"golang.org/x/sync/singleflight"
)

const DefaultDoctorCacheTTL = 24 * time.Hour

// CachedDoctorFinder fronts a DoctorClient with a result cache. Concurrent
// lookups for the same key share one upstream call. Empty results are not
// cached.
type CachedDoctorFinder struct {
	client *DoctorClient
	cache  cache.DoctorCache
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

func NewCachedDoctorFinder(client *DoctorClient, c cache.DoctorCache, ttl time.Duration, logger *slog.Logger) *CachedDoctorFinder {
	if ttl <= 0 {
		ttl = DefaultDoctorCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedDoctorFinder{
		client: client,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(location string, radius int) string {
	return fmt.Sprintf("%s:%d", strings.ToLower(strings.TrimSpace(location)), radius)
}

func (f *CachedDoctorFinder) Search(ctx context.Context, location string) ([]assessment.Provider, error) {
	key := cacheKey(location, f.client.Radius())

	providers, ok, err := f.cache.Get(ctx, key)
	if err != nil {
		f.logger.Warn("doctor cache read failed", "key", key, "error", err)
	} else if ok {
		f.logger.Debug("doctor cache hit", "key", key, "count", len(providers))
		return providers, nil
	}

	v, err, _ := f.group.Do(key, func() (any, error) {
		providers, err := f.client.Search(ctx, location)
		if err != nil {
			return nil, err
		}
		if len(providers) > 0 {
			if err := f.cache.Set(ctx, key, providers, f.ttl); err != nil {
				f.logger.Warn("doctor cache write failed", "key", key, "error", err)
			}
		}
		return providers, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]assessment.Provider), nil
}
