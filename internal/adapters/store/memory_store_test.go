package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(zap.NewNop(), time.Hour)
	t.Cleanup(s.Stop)
	return s
}

func entry(hash string, ttl time.Duration) *core.StoredAssessment {
	return &core.StoredAssessment{
		ContentHash: hash,
		RiskScore:   0.82,
		RiskLevel:   core.RiskLevelHigh,
		LastSeen:    time.Now(),
		ExpiresAt:   time.Now().Add(ttl),
	}
}

func TestMemoryStoreSetGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, entry("abc123", time.Hour)))

	got, err := s.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, 0.82, got.RiskScore)
	assert.Equal(t, core.RiskLevelHigh, got.RiskLevel)
}

func TestMemoryStoreMiss(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, entry("stale", -time.Minute)))

	_, err := s.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound, "expired entries read as misses")
}

func TestMemoryStoreDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, entry("gone", time.Hour)))
	require.NoError(t, s.Delete(ctx, "gone"))

	_, err := s.Get(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestMemoryStoreCleanup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, entry("fresh", time.Hour)))
	require.NoError(t, s.Set(ctx, entry("stale", -time.Minute)))

	require.NoError(t, s.Cleanup(ctx))

	_, err := s.Get(ctx, "fresh")
	assert.NoError(t, err)
	_, err = s.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreStopIsIdempotent(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), time.Hour)
	s.Stop()
	s.Stop()
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := entry("key", time.Hour)
	require.NoError(t, s.Set(ctx, first))

	second := entry("key", time.Hour)
	second.RiskScore = 0.12
	second.RiskLevel = core.RiskLevelLow
	require.NoError(t, s.Set(ctx, second))

	got, err := s.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 0.12, got.RiskScore)
	assert.Equal(t, core.RiskLevelLow, got.RiskLevel)
}
