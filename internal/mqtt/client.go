package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"fireplace_rf/internal/logger"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	payloadOnline  = "online"
	payloadOffline = "offline"

	connectTimeout = 10 * time.Second
)

// Config describes the broker connection and topic layout.
type Config struct {
	Broker          string
	Username        string
	Password        string
	ClientID        string
	TopicPrefix     string
	DiscoveryPrefix string
}

// Manager is the slice of a broker client the bridge needs.
type Manager interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) error
	Subscribe(topic string, qos byte, handler paho.MessageHandler) error
	TopicPrefix() string
	DiscoveryPrefix() string
	AvailabilityTopic() string
}

type manager struct {
	client          paho.Client
	topicPrefix     string
	discoveryPrefix string
}

// NewManager wraps a paho client.
func NewManager(client paho.Client, topicPrefix, discoveryPrefix string) Manager {
	if discoveryPrefix == "" {
		discoveryPrefix = "homeassistant"
	}
	return &manager{client: client, topicPrefix: topicPrefix, discoveryPrefix: discoveryPrefix}
}

func (m *manager) Publish(topic string, qos byte, retained bool, payload interface{}) error {
	var body []byte
	switch v := payload.(type) {
	case string:
		body = []byte(v)
	case []byte:
		body = v
	default:
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
	}
	token := m.client.Publish(topic, qos, retained, body)
	token.Wait()
	return token.Error()
}

func (m *manager) Subscribe(topic string, qos byte, handler paho.MessageHandler) error {
	token := m.client.Subscribe(topic, qos, handler)
	token.Wait()
	return token.Error()
}

func (m *manager) TopicPrefix() string     { return m.topicPrefix }
func (m *manager) DiscoveryPrefix() string { return m.discoveryPrefix }

func (m *manager) AvailabilityTopic() string {
	return m.topicPrefix + "/status"
}

// Connect dials the broker. onConnect runs after every (re)connect, so
// subscriptions made there survive broker restarts.
func Connect(cfg Config, log *logger.Logger, onConnect func(Manager)) (paho.Client, Manager, error) {
	log = logger.OrNop(log)
	availability := cfg.TopicPrefix + "/status"

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(false)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetWill(availability, payloadOffline, 0, true)

	var mgr Manager
	opts.SetOnConnectHandler(func(c paho.Client) {
		log.Infow("mqtt_connected", "broker", cfg.Broker)
		c.Publish(availability, 0, true, payloadOnline)
		if onConnect != nil {
			onConnect(mgr)
		}
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warnw("mqtt_connection_lost", "err", err)
	})

	client := paho.NewClient(opts)
	mgr = NewManager(client, cfg.TopicPrefix, cfg.DiscoveryPrefix)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	return client, mgr, nil
}
