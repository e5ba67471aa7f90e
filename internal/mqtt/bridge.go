package mqtt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"fireplace_rf/internal/logger"
	"fireplace_rf/internal/models"
	"fireplace_rf/internal/service"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	payloadOn     = "ON"
	payloadOff    = "OFF"
	payloadToggle = "TOGGLE"
	// Home Assistant clears the preset selection with this value.
	payloadNoPreset = "None"
)

type topics struct {
	state          string
	command        string
	powerState     string
	powerCommand   string
	presetState    string
	presetCommand  string
	discoveryTopic string
}

func newTopics(mgr Manager, id string) topics {
	base := fmt.Sprintf("%s/fireplace/%s", mgr.TopicPrefix(), id)
	return topics{
		state:          base + "/state",
		command:        base + "/command",
		powerState:     base + "/power/state",
		powerCommand:   base + "/power/command",
		presetState:    base + "/preset/state",
		presetCommand:  base + "/preset/command",
		discoveryTopic: fmt.Sprintf("%s/fan/%s/config", mgr.DiscoveryPrefix(), id),
	}
}

type deviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
}

// fanDiscovery exposes the fireplace as a Home Assistant fan: power levels
// map onto the speed range, presets onto preset modes.
type fanDiscovery struct {
	UniqueID               string     `json:"unique_id"`
	Name                   string     `json:"name"`
	StateTopic             string     `json:"state_topic"`
	CommandTopic           string     `json:"command_topic"`
	PayloadOn              string     `json:"payload_on"`
	PayloadOff             string     `json:"payload_off"`
	PercentageStateTopic   string     `json:"percentage_state_topic,omitempty"`
	PercentageCommandTopic string     `json:"percentage_command_topic,omitempty"`
	SpeedRangeMin          int        `json:"speed_range_min,omitempty"`
	SpeedRangeMax          int        `json:"speed_range_max,omitempty"`
	PresetModeStateTopic   string     `json:"preset_mode_state_topic,omitempty"`
	PresetModeCommandTopic string     `json:"preset_mode_command_topic,omitempty"`
	PresetModes            []string   `json:"preset_modes,omitempty"`
	AvailabilityTopic      string     `json:"availability_topic"`
	Device                 deviceInfo `json:"device"`
}

// Bridge mirrors the fireplace onto MQTT and forwards commands from it.
type Bridge struct {
	mgr     Manager
	control service.Fireplace
	mon     service.Monitoring
	log     *logger.Logger
	topics  topics

	mu sync.Mutex
}

func NewBridge(mgr Manager, id string, control service.Fireplace, mon service.Monitoring, log *logger.Logger) *Bridge {
	return &Bridge{
		mgr:     mgr,
		control: control,
		mon:     mon,
		log:     logger.OrNop(log),
		topics:  newTopics(mgr, id),
	}
}

// Register publishes discovery and the current state, then subscribes to the
// command topics. It is safe to call again after a reconnect.
func (b *Bridge) Register(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap, err := b.mon.GetState(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if err := b.mgr.Publish(b.topics.discoveryTopic, 0, true, b.discovery(snap)); err != nil {
		return fmt.Errorf("publish discovery: %w", err)
	}
	if err := b.publishState(snap); err != nil {
		return fmt.Errorf("publish initial state: %w", err)
	}

	if err := b.mgr.Subscribe(b.topics.command, 0, b.onCommand); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.topics.command, err)
	}
	if snap.SupportsPower {
		if err := b.mgr.Subscribe(b.topics.powerCommand, 0, b.onPowerCommand); err != nil {
			return fmt.Errorf("subscribe %s: %w", b.topics.powerCommand, err)
		}
	}
	if len(snap.PresetModes) > 0 {
		if err := b.mgr.Subscribe(b.topics.presetCommand, 0, b.onPresetCommand); err != nil {
			return fmt.Errorf("subscribe %s: %w", b.topics.presetCommand, err)
		}
	}
	b.log.Infow("mqtt_bridge_registered", "discovery", b.topics.discoveryTopic)
	return nil
}

// Run registers the bridge and publishes every state change until ctx ends.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.Register(ctx); err != nil {
		return err
	}

	changes := make(chan models.FireplaceSnapshot, 1)
	cancel := b.mon.Subscribe(func(s models.FireplaceSnapshot) {
		select {
		case <-changes:
		default:
		}
		select {
		case changes <- s:
		default:
		}
	})
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			if err := b.mgr.Publish(b.mgr.AvailabilityTopic(), 0, true, payloadOffline); err != nil {
				b.log.Warnw("mqtt_publish_failed", "topic", b.mgr.AvailabilityTopic(), "err", err)
			}
			return nil
		case s := <-changes:
			b.mu.Lock()
			err := b.publishState(s)
			b.mu.Unlock()
			if err != nil {
				b.log.Warnw("mqtt_state_publish_failed", "err", err)
			}
		}
	}
}

func (b *Bridge) discovery(s models.FireplaceSnapshot) fanDiscovery {
	d := fanDiscovery{
		UniqueID:          s.ID,
		Name:              s.Name,
		StateTopic:        b.topics.state,
		CommandTopic:      b.topics.command,
		PayloadOn:         payloadOn,
		PayloadOff:        payloadOff,
		AvailabilityTopic: b.mgr.AvailabilityTopic(),
		Device: deviceInfo{
			Identifiers:  []string{"fireplace_rf_" + s.ID},
			Name:         s.Name,
			Manufacturer: "fireplace_rf",
			Model:        "RF fireplace",
		},
	}
	if s.SupportsPower && s.PowerCount > 0 {
		d.PercentageStateTopic = b.topics.powerState
		d.PercentageCommandTopic = b.topics.powerCommand
		d.SpeedRangeMin = 1
		d.SpeedRangeMax = s.PowerCount
	}
	if len(s.PresetModes) > 0 {
		d.PresetModeStateTopic = b.topics.presetState
		d.PresetModeCommandTopic = b.topics.presetCommand
		d.PresetModes = s.PresetModes
	}
	return d
}

func (b *Bridge) publishState(s models.FireplaceSnapshot) error {
	state := payloadOff
	if s.On {
		state = payloadOn
	}
	if err := b.mgr.Publish(b.topics.state, 0, true, state); err != nil {
		return err
	}
	if s.SupportsPower {
		if err := b.mgr.Publish(b.topics.powerState, 0, true, strconv.Itoa(s.Power)); err != nil {
			return err
		}
	}
	if len(s.PresetModes) > 0 {
		preset := s.PresetMode
		if preset == "" {
			preset = payloadNoPreset
		}
		if err := b.mgr.Publish(b.topics.presetState, 0, true, preset); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bridge) onCommand(_ paho.Client, msg paho.Message) {
	if msg.Retained() {
		return
	}
	ctx := context.Background()
	payload := strings.ToUpper(strings.TrimSpace(string(msg.Payload())))

	var err error
	switch payload {
	case payloadOn:
		err = b.control.TurnOn(ctx)
	case payloadOff:
		err = b.control.TurnOff(ctx)
	case payloadToggle:
		err = b.control.Toggle(ctx)
	default:
		b.log.Warnw("mqtt_command_invalid", "topic", msg.Topic(), "payload", payload)
		return
	}
	if err != nil {
		b.log.Errorw("mqtt_command_failed", "payload", payload, "err", err)
	}
}

// onPowerCommand treats level 0 as off, anything else turns on at that level.
func (b *Bridge) onPowerCommand(_ paho.Client, msg paho.Message) {
	if msg.Retained() {
		return
	}
	ctx := context.Background()
	level, err := strconv.Atoi(strings.TrimSpace(string(msg.Payload())))
	if err != nil {
		b.log.Warnw("mqtt_power_invalid", "payload", string(msg.Payload()), "err", err)
		return
	}
	if level <= 0 {
		err = b.control.TurnOff(ctx)
	} else {
		on := true
		err = b.control.Perform(ctx, service.CallParams{State: &on, Power: &level})
	}
	if err != nil {
		b.log.Errorw("mqtt_power_command_failed", "level", level, "err", err)
	}
}

func (b *Bridge) onPresetCommand(_ paho.Client, msg paho.Message) {
	if msg.Retained() {
		return
	}
	preset := strings.TrimSpace(string(msg.Payload()))
	if preset == "" || preset == payloadNoPreset {
		return
	}
	if err := b.control.Perform(context.Background(), service.CallParams{PresetMode: preset}); err != nil {
		b.log.Errorw("mqtt_preset_command_failed", "preset", preset, "err", err)
	}
}
