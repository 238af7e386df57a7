package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lac-hong-legacy/authguard/shared"
)

func newTestLimiter(t *testing.T) (*RateLimitService, func()) {
	t.Helper()

	redisSvc, mr := newTestRedis(t)
	store := newTestStore(t)

	svc := &RateLimitService{
		generalTiers: []limitTier{
			{Name: shared.TierMinute, Window: time.Minute, Ceiling: 3},
			{Name: shared.TierHour, Window: time.Hour, Ceiling: 10},
		},
		loginTiers: []limitTier{
			{Name: shared.TierMinute, Window: time.Minute, Ceiling: 2},
		},
		counters: redisSvc,
		sqlSvc:   store,
	}

	return svc, func() { mr.Close() }
}

func TestRateLimitAllowsUpToCeiling(t *testing.T) {
	svc, done := newTestLimiter(t)
	defer done()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		allowed, _ := svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")
		require.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, tier := svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")
	assert.False(t, allowed)
	assert.Equal(t, shared.TierMinute, tier)
}

func TestRateLimitIsolatesIdentities(t *testing.T) {
	svc, done := newTestLimiter(t)
	defer done()

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")
	}

	allowed, _ := svc.CheckRateLimit(ctx, "10.0.0.2", "/api/v1/me")
	assert.True(t, allowed, "a different identity must not inherit the block")
}

func TestLoginPathsGetStricterTiers(t *testing.T) {
	svc, done := newTestLimiter(t)
	defer done()

	ctx := context.Background()

	allowed, _ := svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/login")
	require.True(t, allowed)
	allowed, _ = svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/login")
	require.True(t, allowed)

	// Third login attempt trips the login ceiling of 2 even though the
	// general minute ceiling of 3 has room left.
	allowed, tier := svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/login")
	assert.False(t, allowed)
	assert.Equal(t, shared.TierMinute, tier)
}

func TestIsLoginPath(t *testing.T) {
	assert.True(t, IsLoginPath("/api/v1/login"))
	assert.True(t, IsLoginPath("/api/v1/signup"))
	assert.True(t, IsLoginPath("/api/v1/check-id"))
	assert.False(t, IsLoginPath("/api/v1/me"))
	assert.False(t, IsLoginPath("/ping"))
}

func TestRateLimitFailsOpenWhenRedisDown(t *testing.T) {
	svc, done := newTestLimiter(t)
	done() // kill redis before any request

	allowed, _ := svc.CheckRateLimit(context.Background(), "10.0.0.1", "/api/v1/me")
	assert.True(t, allowed, "counter store outage must not deny requests")
}

func TestRateLimitWindowExpires(t *testing.T) {
	redisSvc, mr := newTestRedis(t)
	defer mr.Close()
	store := newTestStore(t)

	svc := &RateLimitService{
		generalTiers: []limitTier{
			{Name: shared.TierMinute, Window: time.Minute, Ceiling: 1},
		},
		counters: redisSvc,
		sqlSvc:   store,
	}

	ctx := context.Background()
	allowed, _ := svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")
	require.True(t, allowed)
	allowed, _ = svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")
	require.False(t, allowed)

	// The counter carries a TTL, so once the window lapses it resets.
	mr.FastForward(2 * time.Minute)

	allowed, _ = svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")
	assert.True(t, allowed)
}

func TestClearLimits(t *testing.T) {
	svc, done := newTestLimiter(t)
	defer done()

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")
	}

	allowed, _ := svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")
	require.False(t, allowed)

	require.NoError(t, svc.ClearLimits(ctx, "10.0.0.1"))

	allowed, _ = svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")
	assert.True(t, allowed)
}

func TestClearAllLimits(t *testing.T) {
	svc, done := newTestLimiter(t)
	defer done()

	ctx := context.Background()
	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		for i := 0; i < 4; i++ {
			svc.CheckRateLimit(ctx, ip, "/api/v1/me")
		}
	}

	require.NoError(t, svc.ClearAllLimits(ctx))

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		allowed, _ := svc.CheckRateLimit(ctx, ip, "/api/v1/me")
		assert.True(t, allowed, "counters for %s should be gone", ip)
	}
}

func TestGetStatsReadsWithoutCounting(t *testing.T) {
	svc, done := newTestLimiter(t)
	defer done()

	ctx := context.Background()
	svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")
	svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")

	stats, err := svc.GetStats(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", stats.Identity)
	require.Len(t, stats.General, 2)
	assert.Equal(t, int64(2), stats.General[0].Count)
	assert.Equal(t, int64(3), stats.General[0].Ceiling)

	// Reading stats twice must not bump the counters.
	again, err := svc.GetStats(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), again.General[0].Count)
}

// mapCounters is an in-process CounterStore; the limiter must work against
// any implementation, not just the redis service.
type mapCounters struct {
	counts map[string]int64
}

func (m *mapCounters) IncrementWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.counts[key]++
	return m.counts[key], nil
}

func (m *mapCounters) GetCount(_ context.Context, key string) (int64, error) {
	return m.counts[key], nil
}

func (m *mapCounters) DeleteKeys(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.counts, key)
	}
	return nil
}

func (m *mapCounters) DeleteByPattern(_ context.Context, _ string) error {
	m.counts = map[string]int64{}
	return nil
}

func TestRateLimitAcceptsAnyCounterStore(t *testing.T) {
	svc := &RateLimitService{
		generalTiers: []limitTier{
			{Name: shared.TierMinute, Window: time.Minute, Ceiling: 2},
		},
		counters: &mapCounters{counts: map[string]int64{}},
		sqlSvc:   newTestStore(t),
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		allowed, _ := svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")
		require.True(t, allowed)
	}

	allowed, tier := svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")
	assert.False(t, allowed)
	assert.Equal(t, shared.TierMinute, tier)

	require.NoError(t, svc.ClearLimits(ctx, "10.0.0.1"))
	allowed, _ = svc.CheckRateLimit(ctx, "10.0.0.1", "/api/v1/me")
	assert.True(t, allowed)
}
