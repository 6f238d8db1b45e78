package ingestion

import (
	"errors"
	"fmt"
	"sync"

	pkgmqtt "eld-compliance/pkg/mqtt"
)

// MQTTBridgeConfig describes the topic and MQTT connection parameters for
// the streaming location pipeline.
type MQTTBridgeConfig struct {
	ClientConfig  *pkgmqtt.Config
	LocationTopic string
	QoS           byte
}

// MQTTBridge wires broker messages into the location processor.
type MQTTBridge struct {
	cfg       *MQTTBridgeConfig
	client    *pkgmqtt.Client
	processor *Processor

	mu      sync.Mutex
	started bool
}

func NewMQTTBridge(cfg *MQTTBridgeConfig, processor *Processor) (*MQTTBridge, error) {
	if cfg == nil || cfg.ClientConfig == nil {
		return nil, errors.New("mqtt bridge config is not configured")
	}
	if processor == nil {
		return nil, errors.New("processor is required")
	}

	client := pkgmqtt.NewClient(cfg.ClientConfig)
	return &MQTTBridge{
		cfg:       cfg,
		client:    client,
		processor: processor,
	}, nil
}

// Start establishes the MQTT connection and subscribes to the location topic.
func (b *MQTTBridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return nil
	}

	if err := b.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	err := b.client.Subscribe(b.cfg.LocationTopic, b.cfg.QoS, func(topic string, payload []byte) {
		b.processor.Enqueue(payload)
	})
	if err != nil {
		b.client.Disconnect()
		return err
	}

	b.started = true
	return nil
}

// Stop unsubscribes and tears down the connection.
func (b *MQTTBridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return
	}

	_ = b.client.Unsubscribe(b.cfg.LocationTopic)
	b.client.Disconnect()
	b.started = false
}

// Connected reports whether the broker connection is up.
func (b *MQTTBridge) Connected() bool {
	return b.client.IsConnected()
}
