package subscriber

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/service"
)

// fix topics are per member: /community/<community_id>/member/<member_id>/fix
const fixTopicFormat = "/community/%s/member/%s/fix"

type fixMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

// MQTTPositionSource implements service.PositionSource over per-member MQTT
// fix topics.
type MQTTPositionSource struct {
	client      mqtt.Client
	communityID string
}

func NewMQTTPositionSource(client mqtt.Client, communityID string) *MQTTPositionSource {
	return &MQTTPositionSource{client: client, communityID: communityID}
}

var _ service.PositionSource = (*MQTTPositionSource)(nil)

func (s *MQTTPositionSource) Watch(memberID string, onFix func(domain.LocationSample), onError func(error)) (service.WatchHandle, error) {
	topic := fmt.Sprintf(fixTopicFormat, s.communityID, memberID)

	token := s.client.Subscribe(topic, 1, fixHandler(onFix))
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return &mqttWatch{client: s.client, topic: topic}, nil
}

type mqttWatch struct {
	client mqtt.Client
	topic  string
}

func (w *mqttWatch) Cancel() {
	token := w.client.Unsubscribe(w.topic)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Printf("unsubscribe %s: %v", w.topic, err)
	}
}

func fixHandler(onFix func(domain.LocationSample)) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var raw fixMessage
		if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
			log.Printf("invalid fix message: %v", err)
			return
		}
		if err := validateFixMessage(&raw); err != nil {
			log.Printf("fix validation error: %v", err)
			return
		}
		onFix(domain.LocationSample{
			Lat:       raw.Latitude,
			Lon:       raw.Longitude,
			Accuracy:  raw.Accuracy,
			Timestamp: time.Unix(raw.Timestamp, 0),
		})
	}
}

func validateFixMessage(msg *fixMessage) error {
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
