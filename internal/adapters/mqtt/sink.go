// Package mqtt publishes dispatch reports to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/bft-labs/viscactl/internal/domain"
	"github.com/bft-labs/viscactl/pkg/log"
)

// Defaults for the report sink.
const (
	DefaultTopic          = "viscactl/reports"
	DefaultConnectTimeout = 5 * time.Second
	publishTimeout        = 2 * time.Second
	disconnectQuiesce     = 250 // ms
)

// ErrNotConnected is returned when publishing without a broker connection.
var ErrNotConnected = errors.New("mqtt not connected")

// Config configures the sink.
type Config struct {
	Broker   string
	Topic    string
	ClientID string
	QoS      byte
}

// DefaultClientID returns a unique client id.
func DefaultClientID() string {
	return "viscactl-" + uuid.NewString()
}

// Sink implements ports.ReportSink by publishing each report as JSON to
// <topic>/<source>.
type Sink struct {
	cfg    Config
	client mqtt.Client
	logger log.Logger

	mu        sync.RWMutex
	connected bool
	published uint64
	errors    uint64
}

// NewSink creates a sink. Call Connect before use.
func NewSink(cfg Config, logger log.Logger) *Sink {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID()
	}
	return &Sink{cfg: cfg, logger: logger}
}

// Connect establishes the broker connection. Reconnection after that is
// handled by the client.
func (s *Sink) Connect(ctx context.Context) error {
	broker := s.cfg.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(s.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(mqtt.Client) {
		s.setConnected(true)
		s.logger.Info("mqtt connection established",
			log.String("broker", broker),
			log.String("client_id", s.cfg.ClientID),
		)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		s.setConnected(false)
		s.logger.Warn("mqtt connection lost, will auto-reconnect",
			log.String("broker", broker),
			log.Err(err),
		)
	}

	s.client = mqtt.NewClient(opts)
	s.logger.Info("connecting to mqtt broker", log.String("broker", broker))

	token := s.client.Connect()
	timeout := DefaultConnectTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt connection timeout: %s", broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}

	s.setConnected(true)
	return nil
}

// Report publishes r. Failures are counted and logged, never returned.
func (s *Sink) Report(r domain.Report) {
	if err := s.publish(r); err != nil {
		s.mu.Lock()
		s.errors++
		s.mu.Unlock()
		s.logger.Warn("report not published", log.String("id", r.ID), log.Err(err))
	}
}

func (s *Sink) publish(r domain.Report) error {
	if !s.isConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	topic := s.cfg.Topic + "/" + string(r.Source)
	token := s.client.Publish(topic, s.cfg.QoS, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	s.mu.Lock()
	s.published++
	s.mu.Unlock()

	s.logger.Debug("report published",
		log.String("topic", topic),
		log.Int("size", len(payload)),
	)
	return nil
}

// Disconnect closes the broker connection.
func (s *Sink) Disconnect() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(disconnectQuiesce)
		s.logger.Info("mqtt disconnected")
	}
	s.setConnected(false)
}

// Stats contains sink counters.
type Stats struct {
	Connected bool
	Published uint64
	Errors    uint64
}

// Stats returns sink counters.
func (s *Sink) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Connected: s.connected, Published: s.published, Errors: s.errors}
}

func (s *Sink) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}

func (s *Sink) isConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}
