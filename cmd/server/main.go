package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/waspersolution/vigilant-soundscape-sub000/config"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety"
)

func main() {
	cfg := config.Load()

	db, err := config.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Disconnect(250)

	redisClient, err := config.NewRedis(cfg)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	safetyModule, err := safety.Build(db, amqpConn, mqttClient, redisClient, cfg.CommunityID)
	if err != nil {
		log.Fatalf("safety module: %v", err)
	}

	if err := safetyModule.Start(context.Background()); err != nil {
		log.Fatalf("start safety module: %v", err)
	}
	defer safetyModule.Stop()

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mqttClient, redisClient)
	health.Register(r)

	safetyModule.RegisterRoutes(&r.RouterGroup)

	log.Printf("community %s engine listening on :%s", cfg.CommunityID, cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server: %v", err)
	}
}
