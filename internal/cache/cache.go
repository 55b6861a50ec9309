package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/pkg/response"
)

const (
	dashboardKey  = "sacco:dashboard:stats"
	generationKey = "sacco:dashboard:generation"
)

// DashboardCache stores the latest computed dashboard summary.
//
// Every Invalidate bumps a generation counter. Get reports the generation it
// saw and Set stamps the entry with it, so stats computed before an
// invalidation are never served after it.
type DashboardCache interface {
	// Get returns the cached stats, or nil on a miss, and the current generation
	Get(ctx context.Context) (*domain.DashboardStats, int64, error)
	Set(ctx context.Context, generation int64, stats *domain.DashboardStats) error
	Invalidate(ctx context.Context) error
}

// kv is the subset of *redis.Client the cache uses
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

type entry struct {
	Generation int64                 `json:"generation"`
	Stats      *domain.DashboardStats `json:"stats"`
}

type RedisDashboardCache struct {
	client kv
	ttl    time.Duration
}

func NewRedisDashboardCache(client kv, ttl time.Duration) *RedisDashboardCache {
	return &RedisDashboardCache{client: client, ttl: ttl}
}

func (c *RedisDashboardCache) Get(ctx context.Context) (*domain.DashboardStats, int64, error) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}

	raw, err := c.client.Get(ctx, dashboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, nil
	}
	if err != nil {
		return nil, generation, err
	}

	var cached entry
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, generation, err
	}
	if cached.Generation != generation || cached.Stats == nil {
		return nil, generation, nil
	}

	return cached.Stats, generation, nil
}

func (c *RedisDashboardCache) Set(ctx context.Context, generation int64, stats *domain.DashboardStats) error {
	body, err := json.Marshal(entry{Generation: generation, Stats: stats})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, dashboardKey, body, c.ttl).Err()
}

// Invalidate retires every entry stamped with an older generation.
func (c *RedisDashboardCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

// Noop never stores anything. Used when redis or the TTL is disabled.
type Noop struct{}

func (Noop) Get(context.Context) (*domain.DashboardStats, int64, error) { return nil, 0, nil }

func (Noop) Set(context.Context, int64, *domain.DashboardStats) error { return nil }

func (Noop) Invalidate(context.Context) error { return nil }

// InvalidateOnWrite drops the cached dashboard after every successful
// non-GET request.
func InvalidateOnWrite(c DashboardCache, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			recorder := &response.Recorder{ResponseWriter: w, StatusCode: http.StatusOK}
			next.ServeHTTP(recorder, r)

			if recorder.StatusCode < 200 || recorder.StatusCode >= 300 {
				return
			}
			if err := c.Invalidate(r.Context()); err != nil {
				log.WithError(err).Warn("failed to invalidate dashboard cache")
			}
		})
	}
}
