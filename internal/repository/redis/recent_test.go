package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func setupTestRedis(t *testing.T) (*RecentRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRecentRepository(client), mr
}

func sampleItems() []domain.RecentItem {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return []domain.RecentItem{
		{ProductID: 42, Name: "Widget", SKU: "WI-042", Price: 2499, ViewedAt: now},
		{ProductID: 7, Name: "Gadget", SKU: "GA-007", Price: 999, ViewedAt: now.Add(-time.Minute)},
	}
}

func TestRecentRepository_SaveAndLoad(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	items := sampleItems()
	require.NoError(t, repo.Save(ctx, "dev-1", items))

	loaded, err := repo.Load(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, items, loaded)
}

func TestRecentRepository_Load_UnknownDevice(t *testing.T) {
	repo, _ := setupTestRedis(t)

	_, err := repo.Load(context.Background(), "unknown")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRecentRepository_Load_CorruptPayload(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("recent:dev-1", "{not json"))

	_, err := repo.Load(context.Background(), "dev-1")
	assert.ErrorIs(t, err, apperrors.ErrCorruptData)
}

func TestRecentRepository_Save_ReplacesPrevious(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "dev-1", sampleItems()))
	require.NoError(t, repo.Save(ctx, "dev-1", sampleItems()[:1]))

	loaded, err := repo.Load(ctx, "dev-1")
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestRecentRepository_Save_EmptyRemovesKey(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "dev-1", sampleItems()))
	require.NoError(t, repo.Save(ctx, "dev-1", nil))

	assert.False(t, mr.Exists("recent:dev-1"))
	_, err := repo.Load(ctx, "dev-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRecentRepository_NoTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, repo.Save(context.Background(), "dev-1", sampleItems()))

	// Entries leave only by capacity eviction, never by expiry.
	assert.Equal(t, time.Duration(0), mr.TTL("recent:dev-1"))
}

func TestRecentRepository_StoredShape(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, repo.Save(context.Background(), "dev-1", sampleItems()))

	raw, err := mr.Get("recent:dev-1")
	require.NoError(t, err)

	var decoded []domain.RecentItem
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, int64(42), decoded[0].ProductID)
}
