package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/publisher"
)

var _ publisher.NotificationPublisher = (*NotificationPublisher)(nil)

const (
	exchangeName   = "community.notifications"
	alarmQueueName = "alarm_commands"
	toastQueueName = "member_toasts"
)

// NotificationPublisher fans alarm commands and toasts out over a durable
// exchange. Sounder daemons consume the alarm queue; UI gateways consume the
// toast queue.
type NotificationPublisher struct {
	ch *amqp.Channel
}

func NewNotificationPublisher(conn *amqp.Connection) (*NotificationPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	for queue, key := range map[string]string{
		alarmQueueName: "alarm.*",
		toastQueueName: "toast.*",
	} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", queue, err)
		}
		if err := ch.QueueBind(queue, key, exchangeName, false, nil); err != nil {
			return nil, fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	return &NotificationPublisher{ch: ch}, nil
}

func (p *NotificationPublisher) PublishAlarm(ctx context.Context, cmd *domain.AlarmCommand) error {
	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal alarm command: %w", err)
	}
	return p.publish(ctx, "alarm."+string(cmd.Action), body)
}

func (p *NotificationPublisher) PublishToast(ctx context.Context, toast *domain.Toast) error {
	body, err := json.Marshal(toast)
	if err != nil {
		return fmt.Errorf("marshal toast: %w", err)
	}
	return p.publish(ctx, "toast."+toast.Severity, body)
}

func (p *NotificationPublisher) publish(ctx context.Context, key string, body []byte) error {
	return p.ch.PublishWithContext(ctx, exchangeName, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
