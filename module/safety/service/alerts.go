package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/database"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/publisher"
)

type locationProvider interface {
	CurrentLocation(memberID string) (domain.LocationSample, bool)
}

// AlertService owns the in-memory alert list for the active community.
// Writes go to the backend and the realtime channel; the local list is
// mutated only through ApplyInsert/ApplyUpdate, so a caller's own write and
// its realtime echo converge regardless of arrival order.
type AlertService struct {
	mu          sync.Mutex
	communityID string
	repo        database.AlertRepository
	tracker     locationProvider
	alarm       *AlarmPlayer
	events      publisher.AlertEventPublisher
	alerts      []domain.Alert
}

func NewAlertService(communityID string, repo database.AlertRepository, tracker locationProvider, alarm *AlarmPlayer, events publisher.AlertEventPublisher) *AlertService {
	return &AlertService{
		communityID: communityID,
		repo:        repo,
		tracker:     tracker,
		alarm:       alarm,
		events:      events,
	}
}

// Refresh seeds the list from the backend. Called once when the community
// scope is established.
func (s *AlertService) Refresh(ctx context.Context) error {
	alerts, err := s.repo.ListByCommunity(ctx, s.communityID)
	if err != nil {
		return fmt.Errorf("load alerts: %w", err)
	}

	s.mu.Lock()
	s.alerts = alerts
	s.mu.Unlock()
	return nil
}

// CreateAlert persists a new alert stamped with the sender's current tracked
// location. The local list is not touched: the insert arrives back through
// the realtime channel. The alarm fires immediately regardless of that
// delivery.
func (s *AlertService) CreateAlert(ctx context.Context, sender domain.Member, alertType domain.AlertType, message string, priority int) (*domain.Alert, error) {
	if sender.CommunityID == "" {
		return nil, domain.ErrCommunityRequired
	}
	loc, ok := s.tracker.CurrentLocation(sender.ID)
	if !ok {
		return nil, domain.ErrLocationRequired
	}
	if !domain.ValidAlertType(alertType) || priority < domain.HighestPriority || priority > domain.LowestPriority {
		return nil, domain.ErrInvalidAlert
	}

	alert := &domain.Alert{
		ID:          uuid.NewString(),
		SenderID:    sender.ID,
		SenderName:  sender.DisplayName,
		CommunityID: sender.CommunityID,
		Type:        alertType,
		Priority:    priority,
		Location:    loc.Point(),
		Message:     message,
		Resolved:    false,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Insert(ctx, alert); err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}

	if err := s.events.PublishInsert(ctx, alert); err != nil {
		log.Printf("publish alert insert %s: %v", alert.ID, err)
	}

	s.alarm.Play(ctx, alertType)
	return alert, nil
}

// ResolveAlert marks the alert resolved and unconditionally stops any
// playing alarm. The local reflection arrives through the realtime update
// event.
func (s *AlertService) ResolveAlert(ctx context.Context, callerID, alertID string) error {
	now := time.Now()
	if err := s.repo.Resolve(ctx, alertID, callerID, now); err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}

	update := &domain.AlertUpdate{
		ID:         alertID,
		Resolved:   true,
		ResolvedBy: callerID,
		ResolvedAt: &now,
	}
	if err := s.events.PublishUpdate(ctx, update); err != nil {
		log.Printf("publish alert update %s: %v", alertID, err)
	}

	s.alarm.Stop(ctx)
	return nil
}

// Alerts returns the full list, newest first.
func (s *AlertService) Alerts() []domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// ActiveAlerts is a derived projection of the unresolved alerts. It is never
// stored separately, so it cannot desynchronize from the list.
func (s *AlertService) ActiveAlerts() []domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Alert
	for _, a := range s.alerts {
		if !a.Resolved {
			out = append(out, a)
		}
	}
	return out
}

// ApplyInsert merges a realtime insert into the list, idempotent by id: a
// redelivered event leaves the first-seen copy untouched. Returns true when
// the alert was new.
func (s *AlertService) ApplyInsert(alert domain.Alert) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if s.alerts[i].ID == alert.ID {
			return false
		}
	}
	s.alerts = append([]domain.Alert{alert}, s.alerts...)
	return true
}

// ApplyUpdate merges the mutable fields of a realtime update into the
// matching alert, preserving everything else, including locally-enriched
// fields absent from the payload. Resolution is terminal: once resolved the
// first writer's resolved_by/resolved_at stay, making the merge commutative
// with the local write path. Returns false for an unknown id.
func (s *AlertService) ApplyUpdate(update domain.AlertUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if s.alerts[i].ID != update.ID {
			continue
		}
		if update.Resolved && !s.alerts[i].Resolved {
			s.alerts[i].Resolved = true
			s.alerts[i].ResolvedBy = update.ResolvedBy
			s.alerts[i].ResolvedAt = update.ResolvedAt
		}
		return true
	}
	return false
}
