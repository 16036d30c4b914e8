package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vitals-monitor/config"
	"vitals-monitor/models"
)

type ReadingProcessor interface {
	ProcessReading(reading models.Reading) error
}

// Subscriber feeds readings published on MQTT into the processor. Topics are
// expected in the form <prefix>/<user_id>/<suffix>, e.g. vitals/user_001/readings.
type Subscriber struct {
	cfg       config.MQTTConfig
	client    mqtt.Client
	processor ReadingProcessor
	logger    *zap.Logger
}

func NewSubscriber(cfg config.MQTTConfig, processor ReadingProcessor, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "vitals-monitor-" + uuid.NewString()
	}
	return &Subscriber{
		cfg:       cfg,
		processor: processor,
		logger:    logger.With(zap.String("component", "mqtt")),
	}
}

func (s *Subscriber) Start() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	opts.SetClientID(s.cfg.ClientID)
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
	}
	if s.cfg.Password != "" {
		opts.SetPassword(s.cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.logger.Warn("connection lost", zap.Error(err))
	})
	// после переподключения подписка восстанавливается заново
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		if err := s.subscribe(c); err != nil {
			s.logger.Error("resubscribe failed", zap.Error(err))
		}
	})

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker %s: %w", s.cfg.Broker, token.Error())
	}

	s.logger.Info("connected", zap.String("broker", s.cfg.Broker), zap.String("topic", s.cfg.Topic))
	return nil
}

func (s *Subscriber) subscribe(c mqtt.Client) error {
	token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		if err := s.HandleMessage(msg.Topic(), msg.Payload()); err != nil {
			s.logger.Warn("dropping reading", zap.String("topic", msg.Topic()), zap.Error(err))
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", s.cfg.Topic, token.Error())
	}
	return nil
}

// HandleMessage decodes one payload. The user id from the topic is used when
// the payload carries none.
func (s *Subscriber) HandleMessage(topic string, payload []byte) error {
	var reading models.Reading
	if err := json.Unmarshal(payload, &reading); err != nil {
		return fmt.Errorf("decode reading: %w", err)
	}

	if reading.UserID == "" {
		reading.UserID = UserIDFromTopic(topic)
	}

	if err := reading.Validate(); err != nil {
		return err
	}

	return s.processor.ProcessReading(reading)
}

func UserIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}

func (s *Subscriber) Stop() {
	if s.client == nil {
		return
	}
	if s.client.IsConnected() {
		s.client.Unsubscribe(s.cfg.Topic).WaitTimeout(time.Second)
	}
	s.client.Disconnect(250)
}

func (s *Subscriber) IsConnected() bool {
	return s.client != nil && s.client.IsConnected()
}
