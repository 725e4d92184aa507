package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"diabetes-assistant/internal/assessment"

	"github.com/redis/go-redis/v9"
)

const doctorKeyPrefix = "doctors:"

// DoctorCache stores provider search results by normalized query key.
// Get reports ok=false on a miss or an expired entry.
type DoctorCache interface {
	Get(ctx context.Context, key string) (providers []assessment.Provider, ok bool, err error)
	Set(ctx context.Context, key string, providers []assessment.Provider, ttl time.Duration) error
}

type redisDoctorCache struct {
	client *redis.Client
}

func NewRedisDoctorCache(client *redis.Client) DoctorCache {
	return &redisDoctorCache{
		client: client,
	}
}

func (c *redisDoctorCache) Get(ctx context.Context, key string) ([]assessment.Provider, bool, error) {
	data, err := c.client.Get(ctx, doctorKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var providers []assessment.Provider
	if err := json.Unmarshal(data, &providers); err != nil {
		return nil, false, err
	}
	return providers, true, nil
}

func (c *redisDoctorCache) Set(ctx context.Context, key string, providers []assessment.Provider, ttl time.Duration) error {
	data, err := json.Marshal(providers)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, doctorKeyPrefix+key, data, ttl).Err()
}

type memoryEntry struct {
	providers []assessment.Provider
	expires   time.Time
}

// MemoryDoctorCache is the in-process fallback used when no Redis address
// is configured.
type MemoryDoctorCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryDoctorCache() *MemoryDoctorCache {
	return &MemoryDoctorCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryDoctorCache) Get(_ context.Context, key string) ([]assessment.Provider, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]assessment.Provider(nil), e.providers...), true, nil
}

func (c *MemoryDoctorCache) Set(_ context.Context, key string, providers []assessment.Provider, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{
		providers: append([]assessment.Provider(nil), providers...),
		expires:   c.now().Add(ttl),
	}
	return nil
}
