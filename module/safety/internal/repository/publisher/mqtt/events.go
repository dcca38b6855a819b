package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/publisher"
)

var _ publisher.AlertEventPublisher = (*AlertEventPublisher)(nil)

const (
	insertTopicFormat = "/community/%s/alerts/insert"
	updateTopicFormat = "/community/%s/alerts/update"
)

// AlertEventPublisher pushes alert events onto the community's realtime
// topics. Wire shapes mirror the backend rows; every subscribed engine,
// including the writer's own, converges through these events.
type AlertEventPublisher struct {
	client      paho.Client
	communityID string
}

func NewAlertEventPublisher(client paho.Client, communityID string) *AlertEventPublisher {
	return &AlertEventPublisher{client: client, communityID: communityID}
}

type insertPayload struct {
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

type updatePayload struct {
	ID         string `json:"id"`
	Resolved   bool   `json:"resolved"`
	ResolvedBy string `json:"resolved_by"`
	ResolvedAt int64  `json:"resolved_at"`
}

func (p *AlertEventPublisher) PublishInsert(_ context.Context, alert *domain.Alert) error {
	msg := insertPayload{
		ID:          alert.ID,
		SenderID:    alert.SenderID,
		CommunityID: alert.CommunityID,
		Type:        string(alert.Type),
		Priority:    alert.Priority,
		Message:     alert.Message,
		CreatedAt:   alert.CreatedAt.Unix(),
	}
	msg.Location.Latitude = alert.Location.Lat
	msg.Location.Longitude = alert.Location.Lon

	return p.publish(fmt.Sprintf(insertTopicFormat, p.communityID), msg)
}

func (p *AlertEventPublisher) PublishUpdate(_ context.Context, update *domain.AlertUpdate) error {
	msg := updatePayload{
		ID:         update.ID,
		Resolved:   update.Resolved,
		ResolvedBy: update.ResolvedBy,
	}
	if update.ResolvedAt != nil {
		msg.ResolvedAt = update.ResolvedAt.Unix()
	}

	return p.publish(fmt.Sprintf(updateTopicFormat, p.communityID), msg)
}

func (p *AlertEventPublisher) publish(topic string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}
	token := p.client.Publish(topic, 1, false, body)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
