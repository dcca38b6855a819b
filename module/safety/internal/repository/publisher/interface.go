package publisher

import (
	"context"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
)

// NotificationPublisher fans out alarm commands and user-facing toasts to
// the community's notification consumers.
type NotificationPublisher interface {
	PublishAlarm(ctx context.Context, cmd *domain.AlarmCommand) error
	PublishToast(ctx context.Context, toast *domain.Toast) error
}

// AlertEventPublisher pushes alert insert/update events onto the realtime
// channel. The local alert list is never mutated directly by a write; it
// converges through these events coming back.
type AlertEventPublisher interface {
	PublishInsert(ctx context.Context, alert *domain.Alert) error
	PublishUpdate(ctx context.Context, update *domain.AlertUpdate) error
}
