package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
)

// StoreSink writes entries to the activity_logs table.
type StoreSink struct {
	Repo store.ActivityLogs
}

func (s StoreSink) Write(ctx context.Context, e domain.ActivityEntry) error {
	return s.Repo.CreateActivityLog(ctx, e)
}

// Publisher is the part of mqtt.Client the sink uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

var ErrPublishTimeout = errors.New("activity: mqtt publish timed out")

// MQTTSink publishes each entry as JSON to <Prefix>/<action>.
type MQTTSink struct {
	Client Publisher
	Prefix string
	QoS    byte
}

// Topic returns the topic an entry with action is published to.
func (s MQTTSink) Topic(action string) string {
	return strings.TrimSuffix(s.Prefix, "/") + "/" + action
}

func (s MQTTSink) Write(ctx context.Context, e domain.ActivityEntry) error {
	payload, err := json.Marshal(mqttPayload(e))
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}

	token := s.Client.Publish(s.Topic(e.Action), s.QoS, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrPublishTimeout, ctx.Err())
	}
}

type activityMessage struct {
	ID          string         `json:"id"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
	UserID      string         `json:"user_id,omitempty"`
	TeamID      string         `json:"team_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// mqttPayload leaves out the client IP and user agent, which stay in the
// database only.
func mqttPayload(e domain.ActivityEntry) activityMessage {
	return activityMessage{
		ID:          e.ID,
		Action:      e.Action,
		Description: e.Description,
		UserID:      e.UserID,
		TeamID:      e.TeamID,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt,
	}
}

const (
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // milliseconds
)

// ConnectMQTT connects a paho client to brokerURL (tcp://host:1883).
func ConnectMQTT(brokerURL, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(60 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect: timeout after %v", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return client, nil
}

// DisconnectMQTT waits briefly for in-flight publishes then disconnects.
func DisconnectMQTT(client mqtt.Client) {
	if client != nil && client.IsConnected() {
		client.Disconnect(disconnectQuiesce)
	}
}
