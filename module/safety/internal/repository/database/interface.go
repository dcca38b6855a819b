package database

import (
	"context"
	"time"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
)

type AlertRepository interface {
	Insert(ctx context.Context, alert *domain.Alert) error
	// Resolve marks the row resolved only if it is not already; a second
	// resolve leaves the first writer's resolved_by/resolved_at in place.
	Resolve(ctx context.Context, alertID, resolvedBy string, resolvedAt time.Time) error
	ListByCommunity(ctx context.Context, communityID string) ([]domain.Alert, error)
}

type PatrolRepository interface {
	Insert(ctx context.Context, session *domain.PatrolSession) error
	UpdateRoute(ctx context.Context, sessionID string, route []domain.LocationSample) error
	Complete(ctx context.Context, sessionID string, endTime time.Time) error
	ListRecent(ctx context.Context, communityID string, limit int) ([]domain.PatrolSession, error)
}

type ProfileRepository interface {
	UpdateLastLocation(ctx context.Context, memberID string, sample domain.LocationSample) error
	DisplayName(ctx context.Context, memberID string) (string, error)
}
