package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fireplace_rf/internal/decoder"
	"fireplace_rf/internal/models"
	"fireplace_rf/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockFireplace struct {
	err error

	calls      []string
	lastParams service.CallParams
	lastOff    bool
}

func (m *mockFireplace) TurnOn(context.Context) error {
	m.calls = append(m.calls, "turn_on")
	return m.err
}
func (m *mockFireplace) TurnOff(context.Context) error {
	m.calls = append(m.calls, "turn_off")
	return m.err
}
func (m *mockFireplace) Toggle(context.Context) error {
	m.calls = append(m.calls, "toggle")
	return m.err
}
func (m *mockFireplace) Perform(_ context.Context, p service.CallParams) error {
	m.calls = append(m.calls, "call")
	m.lastParams = p
	if p.Empty() {
		return service.ErrEmptyCall
	}
	return m.err
}
func (m *mockFireplace) CyclePower(_ context.Context, offCycle bool) error {
	m.calls = append(m.calls, "cycle_power")
	m.lastOff = offCycle
	return m.err
}

type mockMonitoring struct {
	state models.FireplaceSnapshot
	err   error

	mu   sync.Mutex
	subs []func(models.FireplaceSnapshot)
}

func (m *mockMonitoring) GetState(context.Context) (models.FireplaceSnapshot, error) {
	return m.state, m.err
}

func (m *mockMonitoring) Subscribe(fn func(models.FireplaceSnapshot)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
	return func() {}
}

func (m *mockMonitoring) subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

func (m *mockMonitoring) publish(s models.FireplaceSnapshot) {
	m.mu.Lock()
	subs := append([]func(models.FireplaceSnapshot){}, m.subs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

type mockReceiver struct {
	res   decoder.Result
	err   error
	stats decoder.Statistics

	lastDurations []int
	resets        int
}

func (m *mockReceiver) HandleCapture(_ context.Context, durations []int) (decoder.Result, error) {
	m.lastDurations = durations
	return m.res, m.err
}
func (m *mockReceiver) Stats() decoder.Statistics { return m.stats }
func (m *mockReceiver) ResetStats() {
	m.resets++
	m.stats = decoder.Statistics{}
}
func (m *mockReceiver) Protocol() string          { return "a" }

type mockEventLog struct {
	resp     []models.FireplaceEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.FireplaceEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request) *http.Request {
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
