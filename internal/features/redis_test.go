package features

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonathan/talent-match/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_RoundTrip(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set, skipping redis integration test")
	}

	ctx := context.Background()
	cache, err := NewRedisCache(ctx, redisURL, time.Minute)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	key := types.CacheKey(types.KindJob, "job-redis-test", int(time.Now().UnixNano()%1_000_000))
	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	fs := &types.FeatureSet{
		RecordID:        "job-redis-test",
		Kind:            types.KindJob,
		Skills:          []string{"go", "sql"},
		ExperienceYears: 3,
		EducationTier:   types.TierBachelor,
		Embedding:       []float32{0.6, 0.8},
	}
	require.NoError(t, cache.Set(ctx, key, fs))

	got, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fs, got)
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not-a-url", time.Minute)
	assert.Error(t, err)
}
