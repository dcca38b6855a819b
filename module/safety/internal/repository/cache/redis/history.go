package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/cache"
)

var _ cache.HistoryCache = (*HistoryCache)(nil)

const historyKeyFormat = "location_history:%s"

// HistoryCache keeps each member's history snapshot in Redis, keyed by
// member id, so it survives engine restarts. Entries have no TTL; they are
// removed explicitly by ClearHistory.
type HistoryCache struct {
	client *goredis.Client
}

func NewHistoryCache(client *goredis.Client) *HistoryCache {
	return &HistoryCache{client: client}
}

func (c *HistoryCache) Get(ctx context.Context, memberID string) ([]domain.LocationSample, error) {
	data, err := c.client.Get(ctx, historyKey(memberID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	var samples []domain.LocationSample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	return samples, nil
}

func (c *HistoryCache) Set(ctx context.Context, memberID string, samples []domain.LocationSample) error {
	data, err := json.Marshal(samples)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return c.client.Set(ctx, historyKey(memberID), data, 0).Err()
}

func (c *HistoryCache) Remove(ctx context.Context, memberID string) error {
	return c.client.Del(ctx, historyKey(memberID)).Err()
}

func historyKey(memberID string) string {
	return fmt.Sprintf(historyKeyFormat, memberID)
}
