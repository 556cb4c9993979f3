package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/adpilot/internal/domain"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, time.Minute), mr
}

func TestRecommendationRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	recs := []domain.Recommendation{
		{ID: "scale_winner_summer", Priority: 1, ConfidenceScore: 85, ConfidenceLevel: domain.ConfidenceHigh},
	}
	c.SetRecommendations(ctx, "acct-1", "both", recs)

	var got []domain.Recommendation
	require.True(t, c.GetRecommendations(ctx, "acct-1", "both", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "scale_winner_summer", got[0].ID)
	assert.Equal(t, 85, got[0].ConfidenceScore)
}

func TestMissReturnsFalse(t *testing.T) {
	c, _ := newTestCache(t)
	var got []domain.Recommendation
	assert.False(t, c.GetRecommendations(context.Background(), "acct-1", "both", &got))
}

func TestKeysAreScopedByPlatformAndWindow(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.SetRecommendations(ctx, "acct-1", "search", []domain.Recommendation{{ID: "a_b"}})
	var got []domain.Recommendation
	assert.False(t, c.GetRecommendations(ctx, "acct-1", "social", &got))

	c.SetStats(ctx, "acct-1", 30, domain.RecommendationStats{Total: 7})
	var stats domain.RecommendationStats
	assert.False(t, c.GetStats(ctx, "acct-1", 90, &stats))
	require.True(t, c.GetStats(ctx, "acct-1", 30, &stats))
	assert.Equal(t, 7, stats.Total)
}

func TestInvalidateAccount(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.SetRecommendations(ctx, "acct-1", "both", []domain.Recommendation{{ID: "a_b"}})
	c.SetStats(ctx, "acct-1", 30, domain.RecommendationStats{Total: 3})
	c.SetRecommendations(ctx, "acct-2", "both", []domain.Recommendation{{ID: "c_d"}})

	c.InvalidateAccount(ctx, "acct-1")

	var recs []domain.Recommendation
	var stats domain.RecommendationStats
	assert.False(t, c.GetRecommendations(ctx, "acct-1", "both", &recs))
	assert.False(t, c.GetStats(ctx, "acct-1", 30, &stats))

	// Other accounts are untouched.
	assert.True(t, c.GetRecommendations(ctx, "acct-2", "both", &recs))
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetRecommendations(ctx, "acct-1", "both", []domain.Recommendation{{ID: "a_b"}})
	mr.FastForward(2 * time.Minute)

	var got []domain.Recommendation
	assert.False(t, c.GetRecommendations(ctx, "acct-1", "both", &got))
}

func TestNilClientDisablesCache(t *testing.T) {
	c := New(nil, time.Minute)
	ctx := context.Background()

	// All no-ops, no panics.
	c.SetRecommendations(ctx, "acct-1", "both", []domain.Recommendation{{ID: "a_b"}})
	c.InvalidateAccount(ctx, "acct-1")

	var got []domain.Recommendation
	assert.False(t, c.GetRecommendations(ctx, "acct-1", "both", &got))
}
