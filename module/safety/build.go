package safety

import (
	"context"
	"database/sql"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"

	handler "github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/handler/http"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/handler/subscriber"
	cacheredis "github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/cache/redis"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/database/postgres"
	pubmqtt "github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/publisher/mqtt"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/publisher/rabbitmq"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/service"
)

// Module is the safety-event and patrol-tracking engine for one community.
type Module struct {
	TrackerSvc  *service.TrackerService
	GeofenceSvc *service.GeofenceService
	PatrolSvc   *service.PatrolService
	AlertSvc    *service.AlertService
	Alarm       *service.AlarmPlayer

	communityID     string
	alertHandler    *handler.AlertHandler
	patrolHandler   *handler.PatrolHandler
	trackingHandler *handler.TrackingHandler
	alertSync       *subscriber.AlertEventSubscriber
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient paho.Client, redisClient *goredis.Client, communityID string) (*Module, error) {
	alertRepo := postgres.NewAlertRepo(db)
	patrolRepo := postgres.NewPatrolRepo(db)
	profileRepo := postgres.NewProfileRepo(db)
	historyCache := cacheredis.NewHistoryCache(redisClient)

	notifier, err := rabbitmq.NewNotificationPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("notification publisher: %w", err)
	}
	events := pubmqtt.NewAlertEventPublisher(mqttClient, communityID)
	source := subscriber.NewMQTTPositionSource(mqttClient, communityID)

	alarm := service.NewAlarmPlayer(notifier)
	tracker := service.NewTrackerService(source, profileRepo, historyCache)
	geofence := service.NewGeofenceService(notifier)
	patrol := service.NewPatrolService(patrolRepo)
	alerts := service.NewAlertService(communityID, alertRepo, tracker, alarm, events)

	tracker.AddSink(geofence)
	tracker.AddSink(patrol)

	sync := subscriber.NewAlertEventSubscriber(mqttClient, communityID, alerts, profileRepo, alarm, notifier)

	return &Module{
		TrackerSvc:      tracker,
		GeofenceSvc:     geofence,
		PatrolSvc:       patrol,
		AlertSvc:        alerts,
		Alarm:           alarm,
		communityID:     communityID,
		alertHandler:    handler.NewAlertHandler(alerts),
		patrolHandler:   handler.NewPatrolHandler(patrol),
		trackingHandler: handler.NewTrackingHandler(tracker, geofence),
		alertSync:       sync,
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.alertHandler.Register(r)
	m.patrolHandler.Register(r)
	m.trackingHandler.Register(r)
}

// Start seeds the alert and patrol lists and attaches the realtime
// subscriptions.
func (m *Module) Start(ctx context.Context) error {
	if err := m.AlertSvc.Refresh(ctx); err != nil {
		return err
	}
	if err := m.PatrolSvc.Refresh(ctx, m.communityID); err != nil {
		return err
	}
	return m.alertSync.Start()
}

// Stop detaches the realtime subscriptions so no events land in a stale
// store.
func (m *Module) Stop() {
	m.alertSync.Stop()
}
