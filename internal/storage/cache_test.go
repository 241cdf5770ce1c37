package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/profile"
)

type memoryStore struct {
	records     map[string]*Record
	latestCalls int
	saveErr     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]*Record)}
}

func (m *memoryStore) GetProfile(_ context.Context, userID string) (*profile.UserProfile, error) {
	return &profile.UserProfile{ID: userID}, nil
}

func (m *memoryStore) LatestRecommendations(_ context.Context, userID string) (*Record, error) {
	m.latestCalls++
	rec, ok := m.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (m *memoryStore) SaveRecommendations(_ context.Context, userID string, recs []ai.Recommendation) (*Record, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	rec := &Record{ID: "rec-" + userID, UserID: userID, Recommendations: recs, CreatedAt: time.Now().UTC()}
	m.records[userID] = rec
	return rec, nil
}

func (m *memoryStore) Ping(context.Context) error { return nil }

func newTestCache(t *testing.T, store Store) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCache(store, client, time.Minute, nil), mr
}

func TestCacheReadThrough(t *testing.T) {
	store := newMemoryStore()
	store.records["user-1"] = &Record{ID: "rec-1", UserID: "user-1", Recommendations: ai.StaticDefaults()}
	cache, mr := newTestCache(t, store)
	ctx := context.Background()

	first, err := cache.LatestRecommendations(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", first.ID)
	assert.True(t, mr.Exists(cacheKey("user-1")))
	assert.Equal(t, time.Minute, mr.TTL(cacheKey("user-1")))

	second, err := cache.LatestRecommendations(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.Equal(t, 1, store.latestCalls, "second lookup must be served by redis")
}

func TestCacheMissNotFound(t *testing.T) {
	cache, mr := newTestCache(t, newMemoryStore())

	_, err := cache.LatestRecommendations(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists(cacheKey("nobody")))
}

func TestCacheSaveWritesThrough(t *testing.T) {
	store := newMemoryStore()
	cache, mr := newTestCache(t, store)

	rec, err := cache.SaveRecommendations(context.Background(), "user-2", ai.StaticDefaults()[:2])
	require.NoError(t, err)

	raw, err := mr.Get(cacheKey("user-2"))
	require.NoError(t, err)

	var cached Record
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, rec.ID, cached.ID)
	assert.Len(t, cached.Recommendations, 2)
}

func TestCacheSaveError(t *testing.T) {
	store := newMemoryStore()
	store.saveErr = errors.New("disk full")
	cache, mr := newTestCache(t, store)

	_, err := cache.SaveRecommendations(context.Background(), "user-3", ai.StaticDefaults())
	assert.Error(t, err)
	assert.False(t, mr.Exists(cacheKey("user-3")))
}

func TestCacheIgnoresCorruptEntries(t *testing.T) {
	store := newMemoryStore()
	store.records["user-4"] = &Record{ID: "rec-4", UserID: "user-4"}
	cache, mr := newTestCache(t, store)
	require.NoError(t, mr.Set(cacheKey("user-4"), "{not json"))

	rec, err := cache.LatestRecommendations(context.Background(), "user-4")
	require.NoError(t, err)
	assert.Equal(t, "rec-4", rec.ID)
	assert.Equal(t, 1, store.latestCalls)
}

func TestCacheSurvivesRedisOutage(t *testing.T) {
	store := newMemoryStore()
	store.records["user-5"] = &Record{ID: "rec-5", UserID: "user-5"}
	cache, mr := newTestCache(t, store)
	mr.Close()

	rec, err := cache.LatestRecommendations(context.Background(), "user-5")
	require.NoError(t, err)
	assert.Equal(t, "rec-5", rec.ID)

	assert.Error(t, cache.Ping(context.Background()))
}
