package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const keyPrefix = "recent:"

// RecentRepository implements repository.RecentRepository using Redis. Each
// device's list is one JSON value with no TTL; entries only leave the list by
// capacity eviction.
type RecentRepository struct {
	client *redis.Client
}

// NewRecentRepository creates a new Redis-backed recently-viewed repository.
func NewRecentRepository(client *redis.Client) *RecentRepository {
	return &RecentRepository{client: client}
}

// Load retrieves the device's recently-viewed list.
func (r *RecentRepository) Load(ctx context.Context, deviceID string) ([]domain.RecentItem, error) {
	key := keyPrefix + deviceID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("recent items", deviceID)
		}
		return nil, fmt.Errorf("redis get recent items: %w", err)
	}

	var items []domain.RecentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, apperrors.CorruptData("recent items", err)
	}

	return items, nil
}

// Save persists the device's recently-viewed list, replacing any previous
// value. An empty list removes the key.
func (r *RecentRepository) Save(ctx context.Context, deviceID string, items []domain.RecentItem) error {
	key := keyPrefix + deviceID

	if len(items) == 0 {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis del recent items: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal recent items: %w", err)
	}

	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set recent items: %w", err)
	}

	return nil
}
