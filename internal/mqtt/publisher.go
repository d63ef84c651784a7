// Package mqtt mirrors published aggregates to an MQTT broker as retained
// JSON messages, one topic per sensor type.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/narodmon-avg/internal/aggregator"
	"github.com/tejusbharadwaj/narodmon-avg/internal/config"
	"github.com/tejusbharadwaj/narodmon-avg/internal/models"
)

const publishQoS = 1

type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

type Publisher struct {
	client paho.Client
	pub    tokenPublisher
	prefix string
	logger *logrus.Logger

	mu        sync.RWMutex
	connected bool
}

func NewPublisher(cfg config.MQTTConfig, logger *logrus.Logger) *Publisher {
	p := &Publisher{
		prefix: strings.TrimSuffix(cfg.TopicPrefix, "/"),
		logger: logger,
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ paho.Client) {
		p.setConnected(true)
		logger.WithField("broker", cfg.Broker).Info("MQTT connected")
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.setConnected(false)
		logger.WithError(err).Warn("MQTT connection lost")
	})

	p.client = paho.NewClient(opts)
	p.pub = p.client
	return p
}

// Connect starts the connection attempt and waits for it or ctx. On failure
// the client is closed so it stops retrying in the background.
func (p *Publisher) Connect(ctx context.Context) error {
	token := p.client.Connect()
	if err := waitToken(ctx, token); err != nil {
		p.Close()
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (p *Publisher) Name() string {
	return "mqtt"
}

// Publish sends every aggregate as a retained message.
func (p *Publisher) Publish(ctx context.Context, aggregates []models.Aggregate) error {
	for _, agg := range aggregates {
		payload, err := Payload(agg)
		if err != nil {
			return err
		}
		topic := Topic(p.prefix, agg.TypeID)
		if err := waitToken(ctx, p.pub.Publish(topic, publishQoS, true, payload)); err != nil {
			return fmt.Errorf("mqtt publish %s: %w", topic, err)
		}
		p.logger.WithField("topic", topic).Debug("Mirrored aggregate")
	}
	return nil
}

// IsConnected reports the state seen by the connect and connection-lost
// handlers.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Disconnect(250)
	}
	return nil
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

// Topic returns "<prefix>/<slug>/state".
func Topic(prefix string, typeID int) string {
	if prefix == "" {
		return fmt.Sprintf("%s/state", aggregator.Slug(typeID))
	}
	return fmt.Sprintf("%s/%s/state", prefix, aggregator.Slug(typeID))
}

// Payload carries the same values as the Home Assistant entity.
func Payload(agg models.Aggregate) ([]byte, error) {
	body := aggregator.Attributes(agg)
	body["state"] = aggregator.StateValue(agg)
	return json.Marshal(body)
}

func waitToken(ctx context.Context, token paho.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
