package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// fix-publisher wanders a handful of simulated members around the community
// center and publishes their position fixes, for exercising the engine
// without real devices.

type fixMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

const (
	centerLat = 6.5244 // Lagos
	centerLon = 3.3792
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}
	communityID := "default"
	if v := os.Getenv("COMMUNITY_ID"); v != "" {
		communityID = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("vigilant-fix-publisher")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	members := []string{"guard-1", "guard-2", "member-1", "member-2", "member-3"}
	positions := make(map[string][2]float64, len(members))
	for _, m := range members {
		positions[m] = [2]float64{
			centerLat + (rand.Float64()-0.5)*0.01,
			centerLon + (rand.Float64()-0.5)*0.01,
		}
	}

	log.Printf("connected to %s, publishing fixes for community %s every %ds...", broker, communityID, intervalSec)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		member := members[rand.Intn(len(members))]
		pos := positions[member]
		pos[0] += (rand.Float64() - 0.5) * 0.0005
		pos[1] += (rand.Float64() - 0.5) * 0.0005
		positions[member] = pos

		msg := fixMessage{
			Latitude:  pos[0],
			Longitude: pos[1],
			Accuracy:  5 + rand.Float64()*20,
			Timestamp: time.Now().Unix(),
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/community/%s/member/%s/fix", communityID, member)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		log.Printf("published to %s: %s", topic, payload)
	}
}
