package cache

import (
	"context"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
)

// HistoryCache persists a member's bounded location history across engine
// restarts, keyed by member id.
type HistoryCache interface {
	// Get returns nil with no error when no history is cached.
	Get(ctx context.Context, memberID string) ([]domain.LocationSample, error)
	Set(ctx context.Context, memberID string, samples []domain.LocationSample) error
	Remove(ctx context.Context, memberID string) error
}
