package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"coffeebot/internal/models"
)

const connectTimeout = 10 * time.Second

// newClient is replaced in tests.
var newClient = paho.NewClient

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client paho.Client
	topic  string
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker, clientID, topic string) (*RealPublisher, error) {
	if clientID == "" {
		clientID = "coffeebot"
	}
	if topic == "" {
		topic = DefaultTopic
	}
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := newClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		// Connect retries in the background until Disconnect.
		client.Disconnect(0)
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &RealPublisher{client: client, topic: topic}, nil
}

// Publish sends a retained announcement so late subscribers see the current pot.
func (p *RealPublisher) Publish(a models.Announcement) error {
	payload, err := FormatPayload(a)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 1, retained
	token := p.client.Publish(p.topic, 1, true, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
