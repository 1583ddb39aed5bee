package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// MQTTTransport publishes alerts to an MQTT broker, for deployments that
// would rather stay on the local network than go through AWS.
type MQTTTransport struct {
	client paho.Client
	topic  string
}

// mqttPayload is the JSON document published per alert.
type mqttPayload struct {
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes"`
}

// NewMQTTTransport creates a transport connected to the given broker.
func NewMQTTTransport(broker, topic, clientID string) (*MQTTTransport, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &MQTTTransport{client: client, topic: topic}, nil
}

// Publish sends one alert document. QoS 1 (at-least-once): a power outage
// notification is worth a duplicate more than a loss. MQTT has no HTTP
// acknowledgment, so a completed publish reports 200.
func (t *MQTTTransport) Publish(ctx context.Context, message string, attrs map[string]string) (int, error) {
	payload, err := json.Marshal(mqttPayload{Message: message, Attributes: attrs})
	if err != nil {
		return 0, fmt.Errorf("format payload: %w", err)
	}

	token := t.client.Publish(t.topic, 1, false, payload)

	deadline := 5 * time.Second
	if d, ok := ctx.Deadline(); ok {
		if remaining := time.Until(d); remaining < deadline {
			deadline = remaining
		}
	}
	if !token.WaitTimeout(deadline) {
		return 0, fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return 0, fmt.Errorf("publish: %w", err)
	}

	return http.StatusOK, nil
}

// Close disconnects from the broker.
func (t *MQTTTransport) Close() error {
	t.client.Disconnect(1000) // 1 second timeout
	return nil
}
