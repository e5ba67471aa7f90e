package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"fireplace_rf/internal/models"
	"fireplace_rf/internal/service"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type published struct {
	topic    string
	retained bool
	payload  interface{}
}

type fakeManager struct {
	mu       sync.Mutex
	msgs     []published
	handlers map[string]paho.MessageHandler
	pubErr   error
}

func (m *fakeManager) Publish(topic string, _ byte, retained bool, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, published{topic: topic, retained: retained, payload: payload})
	return m.pubErr
}

func (m *fakeManager) Subscribe(topic string, _ byte, h paho.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handlers == nil {
		m.handlers = map[string]paho.MessageHandler{}
	}
	m.handlers[topic] = h
	return nil
}

func (m *fakeManager) TopicPrefix() string       { return "fireplace_rf" }
func (m *fakeManager) DiscoveryPrefix() string   { return "homeassistant" }
func (m *fakeManager) AvailabilityTopic() string { return "fireplace_rf/status" }

func (m *fakeManager) last(topic string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.msgs) - 1; i >= 0; i-- {
		if m.msgs[i].topic == topic {
			return m.msgs[i].payload, true
		}
	}
	return nil, false
}

func (m *fakeManager) deliver(t *testing.T, topic, payload string, retained bool) {
	t.Helper()
	m.mu.Lock()
	h, ok := m.handlers[topic]
	m.mu.Unlock()
	if !ok {
		t.Fatalf("no subscription for %s", topic)
	}
	h(nil, &fakeMessage{topic: topic, payload: []byte(payload), retained: retained})
}

type fakeMessage struct {
	topic    string
	payload  []byte
	retained bool
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return m.retained }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

type fakeControl struct {
	mu     sync.Mutex
	ops    []string
	params []service.CallParams
}

func (f *fakeControl) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
	return nil
}

func (f *fakeControl) TurnOn(context.Context) error  { return f.record("turn_on") }
func (f *fakeControl) TurnOff(context.Context) error { return f.record("turn_off") }
func (f *fakeControl) Toggle(context.Context) error  { return f.record("toggle") }
func (f *fakeControl) CyclePower(context.Context, bool) error {
	return f.record("cycle_power")
}
func (f *fakeControl) Perform(_ context.Context, p service.CallParams) error {
	f.mu.Lock()
	f.params = append(f.params, p)
	f.mu.Unlock()
	return f.record("call")
}

type fakeMonitoring struct {
	mu   sync.Mutex
	snap models.FireplaceSnapshot
	err  error
	subs []func(models.FireplaceSnapshot)
}

func (f *fakeMonitoring) GetState(context.Context) (models.FireplaceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.err
}

func (f *fakeMonitoring) Subscribe(fn func(models.FireplaceSnapshot)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	return func() {}
}

func (f *fakeMonitoring) publish(s models.FireplaceSnapshot) {
	f.mu.Lock()
	subs := append([]func(models.FireplaceSnapshot){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

func (f *fakeMonitoring) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func fullSnapshot() models.FireplaceSnapshot {
	return models.FireplaceSnapshot{
		ID:            "living_room",
		Name:          "Living Room",
		On:            true,
		Power:         2,
		SupportsPower: true,
		PowerCount:    5,
		PresetModes:   []string{"eco", "wood"},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBridge_RegisterPublishesDiscoveryAndState(t *testing.T) {
	mgr := &fakeManager{}
	b := NewBridge(mgr, "living_room", &fakeControl{}, &fakeMonitoring{snap: fullSnapshot()}, nil)

	if err := b.Register(context.Background()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	raw, ok := mgr.last("homeassistant/fan/living_room/config")
	if !ok {
		t.Fatal("discovery not published")
	}
	body, err := json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	var d map[string]any
	if err := json.Unmarshal(body, &d); err != nil {
		t.Fatal(err)
	}
	if d["unique_id"] != "living_room" || d["speed_range_max"] != float64(5) || d["speed_range_min"] != float64(1) {
		t.Fatalf("unexpected discovery: %v", d)
	}
	if d["percentage_command_topic"] != "fireplace_rf/fireplace/living_room/power/command" {
		t.Fatalf("percentage topic = %v", d["percentage_command_topic"])
	}

	want := map[string]string{
		"fireplace_rf/fireplace/living_room/state":        "ON",
		"fireplace_rf/fireplace/living_room/power/state":  "2",
		"fireplace_rf/fireplace/living_room/preset/state": "None",
	}
	for topic, payload := range want {
		got, ok := mgr.last(topic)
		if !ok || got != payload {
			t.Fatalf("%s = %v, want %q", topic, got, payload)
		}
	}

	var subs []string
	for topic := range mgr.handlers {
		subs = append(subs, topic)
	}
	if len(subs) != 3 {
		t.Fatalf("subscriptions = %v", subs)
	}
}

func TestBridge_OnOffOnlyDevice(t *testing.T) {
	mgr := &fakeManager{}
	mon := &fakeMonitoring{snap: models.FireplaceSnapshot{ID: "den", Name: "Den"}}
	b := NewBridge(mgr, "den", &fakeControl{}, mon, nil)

	if err := b.Register(context.Background()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, ok := mgr.last("fireplace_rf/fireplace/den/power/state"); ok {
		t.Fatal("power state published for a device without power levels")
	}
	if len(mgr.handlers) != 1 {
		t.Fatalf("expected only the command subscription, got %d", len(mgr.handlers))
	}
	raw, _ := mgr.last("homeassistant/fan/den/config")
	if d := raw.(fanDiscovery); d.PercentageCommandTopic != "" || d.PresetModes != nil {
		t.Fatalf("unexpected discovery: %+v", d)
	}
}

func TestBridge_RegisterErrors(t *testing.T) {
	b := NewBridge(&fakeManager{}, "x", &fakeControl{}, &fakeMonitoring{err: errors.New("boom")}, nil)
	if err := b.Register(context.Background()); err == nil {
		t.Fatal("expected state error")
	}

	b = NewBridge(&fakeManager{pubErr: errors.New("offline")}, "x", &fakeControl{}, &fakeMonitoring{}, nil)
	if err := b.Register(context.Background()); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestBridge_Commands(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		payload  string
		retained bool
		wantOps  []string
	}{
		{"on", "fireplace_rf/fireplace/living_room/command", "ON", false, []string{"turn_on"}},
		{"off lower case", "fireplace_rf/fireplace/living_room/command", "off", false, []string{"turn_off"}},
		{"toggle", "fireplace_rf/fireplace/living_room/command", "TOGGLE", false, []string{"toggle"}},
		{"garbage", "fireplace_rf/fireplace/living_room/command", "LOUDER", false, nil},
		{"retained ignored", "fireplace_rf/fireplace/living_room/command", "ON", true, nil},
		{"power level", "fireplace_rf/fireplace/living_room/power/command", "3", false, []string{"call"}},
		{"power zero", "fireplace_rf/fireplace/living_room/power/command", "0", false, []string{"turn_off"}},
		{"power garbage", "fireplace_rf/fireplace/living_room/power/command", "max", false, nil},
		{"preset", "fireplace_rf/fireplace/living_room/preset/command", "wood", false, []string{"call"}},
		{"preset none", "fireplace_rf/fireplace/living_room/preset/command", "None", false, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			mgr := &fakeManager{}
			control := &fakeControl{}
			b := NewBridge(mgr, "living_room", control, &fakeMonitoring{snap: fullSnapshot()}, nil)
			if err := b.Register(context.Background()); err != nil {
				t.Fatalf("Register: %v", err)
			}

			mgr.deliver(t, tt.topic, tt.payload, tt.retained)
			if !reflect.DeepEqual(control.ops, tt.wantOps) {
				t.Fatalf("ops = %v, want %v", control.ops, tt.wantOps)
			}
		})
	}
}

func TestBridge_PowerCommandParams(t *testing.T) {
	mgr := &fakeManager{}
	control := &fakeControl{}
	b := NewBridge(mgr, "living_room", control, &fakeMonitoring{snap: fullSnapshot()}, nil)
	if err := b.Register(context.Background()); err != nil {
		t.Fatal(err)
	}
	mgr.deliver(t, "fireplace_rf/fireplace/living_room/power/command", "4", false)

	p := control.params[0]
	if p.State == nil || !*p.State || p.Power == nil || *p.Power != 4 {
		t.Fatalf("params = %+v", p)
	}
}

func TestBridge_RunPublishesChangesAndOffline(t *testing.T) {
	mgr := &fakeManager{}
	mon := &fakeMonitoring{snap: fullSnapshot()}
	b := NewBridge(mgr, "living_room", &fakeControl{}, mon, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	waitFor(t, func() bool { return mon.subscribers() == 1 })

	next := fullSnapshot()
	next.On = false
	next.PresetMode = "eco"
	mon.publish(next)

	waitFor(t, func() bool {
		got, _ := mgr.last("fireplace_rf/fireplace/living_room/state")
		return got == "OFF"
	})
	if got, _ := mgr.last("fireplace_rf/fireplace/living_room/preset/state"); got != "eco" {
		t.Fatalf("preset state = %v", got)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, _ := mgr.last("fireplace_rf/status"); got != payloadOffline {
		t.Fatalf("availability = %v", got)
	}
}
