package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/metrics"
	"github.com/spigell/career-navigator/internal/profile"
)

const (
	keyPrefix  = "recommendations:user:"
	defaultTTL = time.Hour
)

// RedisConfig holds connection settings.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedis creates a client with the pool settings used for short cache reads.
func NewRedis(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
}

// Cache keeps the latest recommendation record of each user in redis in front
// of another Store. Redis failures are logged and never fail a lookup.
type Cache struct {
	store  Store
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCache(store Store, client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: store, client: client, ttl: ttl, logger: logger}
}

func cacheKey(userID string) string {
	return keyPrefix + userID
}

func (c *Cache) GetProfile(ctx context.Context, userID string) (*profile.UserProfile, error) {
	return c.store.GetProfile(ctx, userID)
}

func (c *Cache) LatestRecommendations(ctx context.Context, userID string) (*Record, error) {
	data, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	switch {
	case err == nil:
		var rec Record
		if err := json.Unmarshal(data, &rec); err == nil {
			metrics.CacheLookups.WithLabelValues("redis", "hit").Inc()
			return &rec, nil
		}
		c.logger.Warn("dropping unreadable cache entry", zap.String("user_id", userID))
		c.client.Del(ctx, cacheKey(userID))
	case errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues("redis", "miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("redis", "error").Inc()
		c.logger.Warn("redis lookup failed", zap.String("user_id", userID), zap.Error(err))
	}

	rec, err := c.store.LatestRecommendations(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		metrics.CacheLookups.WithLabelValues("postgres", "miss").Inc()
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	metrics.CacheLookups.WithLabelValues("postgres", "hit").Inc()

	c.put(ctx, rec)
	return rec, nil
}

func (c *Cache) SaveRecommendations(ctx context.Context, userID string, recs []ai.Recommendation) (*Record, error) {
	rec, err := c.store.SaveRecommendations(ctx, userID, recs)
	if err != nil {
		return nil, err
	}
	c.put(ctx, rec)
	return rec, nil
}

func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return c.store.Ping(ctx)
}

func (c *Cache) put(ctx context.Context, rec *Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		c.logger.Warn("encode cache entry", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, cacheKey(rec.UserID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis write failed", zap.String("user_id", rec.UserID), zap.Error(err))
	}
}
