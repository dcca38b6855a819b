package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/publisher"
)

// AlarmPlayer owns the single "currently playing" alarm slot. Play preempts
// whatever is playing; at most one sound is active at a time. The audible
// side effect is carried by the notification publisher and rendered by the
// sounder daemons.
type AlarmPlayer struct {
	mu      sync.Mutex
	pub     publisher.NotificationPublisher
	playing bool
	current domain.AlertType
}

func NewAlarmPlayer(pub publisher.NotificationPublisher) *AlarmPlayer {
	return &AlarmPlayer{pub: pub}
}

// Play starts the sound for the given alert type, stopping any current one
// first. Panic and emergency sounds loop until stopped; the rest play once.
// Publish failures are logged, never surfaced: an unreachable sounder must
// not fail the alert that triggered it.
func (p *AlarmPlayer) Play(ctx context.Context, t domain.AlertType) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		p.publish(ctx, &domain.AlarmCommand{
			Action:    domain.AlarmStop,
			Timestamp: time.Now().Unix(),
		})
	}

	p.publish(ctx, &domain.AlarmCommand{
		Action:    domain.AlarmStart,
		AlertType: t,
		Sound:     soundFor(t),
		Loop:      loops(t),
		Timestamp: time.Now().Unix(),
	})
	p.playing = true
	p.current = t
}

// Stop silences the current sound. Safe to call when nothing is playing.
func (p *AlarmPlayer) Stop(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return
	}
	p.publish(ctx, &domain.AlarmCommand{
		Action:    domain.AlarmStop,
		Timestamp: time.Now().Unix(),
	})
	p.playing = false
	p.current = ""
}

// Playing reports the active alarm type, if any.
func (p *AlarmPlayer) Playing() (domain.AlertType, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.playing
}

func (p *AlarmPlayer) publish(ctx context.Context, cmd *domain.AlarmCommand) {
	if err := p.pub.PublishAlarm(ctx, cmd); err != nil {
		log.Printf("alarm %s: %v", cmd.Action, err)
	}
}

func loops(t domain.AlertType) bool {
	return t == domain.AlertPanic || t == domain.AlertEmergency
}

func soundFor(t domain.AlertType) string {
	switch t {
	case domain.AlertPanic:
		return "alarm_panic"
	case domain.AlertEmergency:
		return "alarm_emergency"
	case domain.AlertPatrolStop:
		return "chime_patrol"
	default:
		return "chime_system"
	}
}
