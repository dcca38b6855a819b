package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/publisher"
)

const (
	insertTopicFormat = "/community/%s/alerts/insert"
	updateTopicFormat = "/community/%s/alerts/update"

	// Alerts at this priority or more urgent alarm and toast every member.
	notifyPriorityThreshold = 2

	lookupTimeout = 5 * time.Second
)

type alertStore interface {
	ApplyInsert(alert domain.Alert) bool
	ApplyUpdate(update domain.AlertUpdate) bool
}

type profileLookup interface {
	DisplayName(ctx context.Context, memberID string) (string, error)
}

type alarmPlayer interface {
	Play(ctx context.Context, t domain.AlertType)
}

type alertInsertMessage struct {
	ID          string `json:"id"`
	SenderID    string `json:"sender_id"`
	CommunityID string `json:"community_id"`
	Type        string `json:"type"`
	Priority    int    `json:"priority"`
	Location    struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"created_at"`
}

type alertUpdateMessage struct {
	ID         string `json:"id"`
	Resolved   bool   `json:"resolved"`
	ResolvedBy string `json:"resolved_by"`
	ResolvedAt int64  `json:"resolved_at"`
}

// AlertEventSubscriber reconciles the local alert list against the realtime
// insert/update stream for one community. Malformed payloads are dropped and
// logged; redelivered inserts are absorbed by the store's idempotent merge.
// This is the only path by which other members learn of a new alert.
type AlertEventSubscriber struct {
	client      mqtt.Client
	communityID string
	store       alertStore
	profiles    profileLookup
	alarm       alarmPlayer
	notifier    publisher.NotificationPublisher
}

func NewAlertEventSubscriber(client mqtt.Client, communityID string, store alertStore, profiles profileLookup, alarm alarmPlayer, notifier publisher.NotificationPublisher) *AlertEventSubscriber {
	return &AlertEventSubscriber{
		client:      client,
		communityID: communityID,
		store:       store,
		profiles:    profiles,
		alarm:       alarm,
		notifier:    notifier,
	}
}

func (s *AlertEventSubscriber) Start() error {
	insertTopic := fmt.Sprintf(insertTopicFormat, s.communityID)
	if token := s.client.Subscribe(insertTopic, 1, s.handleInsert); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", insertTopic, token.Error())
	}

	updateTopic := fmt.Sprintf(updateTopicFormat, s.communityID)
	if token := s.client.Subscribe(updateTopic, 1, s.handleUpdate); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", updateTopic, token.Error())
	}
	return nil
}

// Stop unsubscribes both topics so no events are delivered into a stale
// store after community change or logout.
func (s *AlertEventSubscriber) Stop() {
	token := s.client.Unsubscribe(
		fmt.Sprintf(insertTopicFormat, s.communityID),
		fmt.Sprintf(updateTopicFormat, s.communityID),
	)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Printf("unsubscribe alert events: %v", err)
	}
}

func (s *AlertEventSubscriber) handleInsert(_ mqtt.Client, msg mqtt.Message) {
	var raw alertInsertMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid alert insert: %v", err)
		return
	}
	if err := validateInsertMessage(&raw, s.communityID); err != nil {
		log.Printf("alert insert validation error: %v", err)
		return
	}

	alert := domain.Alert{
		ID:          raw.ID,
		SenderID:    raw.SenderID,
		SenderName:  s.lookupName(raw.SenderID),
		CommunityID: raw.CommunityID,
		Type:        domain.AlertType(raw.Type),
		Priority:    raw.Priority,
		Location:    domain.GeoPoint{Lat: raw.Location.Latitude, Lon: raw.Location.Longitude},
		Message:     raw.Message,
		CreatedAt:   time.Unix(raw.CreatedAt, 0),
	}

	if !s.store.ApplyInsert(alert) {
		log.Printf("duplicate alert insert %s dropped", alert.ID)
		return
	}

	if alert.Priority <= notifyPriorityThreshold {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		s.alarm.Play(ctx, alert.Type)

		sender := alert.SenderName
		if sender == "" {
			sender = alert.SenderID
		}
		toast := &domain.Toast{
			Message:   fmt.Sprintf("%s alert from %s", alert.Type, sender),
			Severity:  domain.ToastWarning,
			Timestamp: time.Now().Unix(),
		}
		if err := s.notifier.PublishToast(ctx, toast); err != nil {
			log.Printf("alert toast %s: %v", alert.ID, err)
		}
	}
}

func (s *AlertEventSubscriber) handleUpdate(_ mqtt.Client, msg mqtt.Message) {
	var raw alertUpdateMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid alert update: %v", err)
		return
	}
	if raw.ID == "" {
		log.Printf("alert update validation error: id: required")
		return
	}

	update := domain.AlertUpdate{
		ID:         raw.ID,
		Resolved:   raw.Resolved,
		ResolvedBy: raw.ResolvedBy,
	}
	if raw.ResolvedAt > 0 {
		t := time.Unix(raw.ResolvedAt, 0)
		update.ResolvedAt = &t
	}

	if !s.store.ApplyUpdate(update) {
		log.Printf("alert update for unknown id %s dropped", raw.ID)
	}
}

// lookupName is best-effort: a failed lookup leaves the name absent.
func (s *AlertEventSubscriber) lookupName(memberID string) string {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	name, err := s.profiles.DisplayName(ctx, memberID)
	if err != nil {
		log.Printf("sender name lookup for %s: %v", memberID, err)
		return ""
	}
	return name
}

func validateInsertMessage(msg *alertInsertMessage, communityID string) error {
	if msg.ID == "" {
		return fmt.Errorf("id: required")
	}
	if msg.SenderID == "" {
		return fmt.Errorf("sender_id: required")
	}
	if msg.CommunityID != communityID {
		return fmt.Errorf("community_id: not in scope")
	}
	if !domain.ValidAlertType(domain.AlertType(msg.Type)) {
		return fmt.Errorf("type: unknown alert type %q", msg.Type)
	}
	if msg.Priority < domain.HighestPriority || msg.Priority > domain.LowestPriority {
		return fmt.Errorf("priority: must be between 1 and 5")
	}
	if msg.Location.Latitude < -90 || msg.Location.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Location.Longitude < -180 || msg.Location.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.CreatedAt <= 0 {
		return fmt.Errorf("created_at: must be positive")
	}
	return nil
}
