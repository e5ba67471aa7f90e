package service

import (
	"context"
	"sync"
	"time"

	"fireplace_rf/internal/decoder"
	"fireplace_rf/internal/fireplace"
	"fireplace_rf/internal/logger"
	"fireplace_rf/internal/models"
	"fireplace_rf/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Fireplace exposes control operations on the single fireplace entity.
type Fireplace interface {
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
	Toggle(ctx context.Context) error
	Perform(ctx context.Context, p CallParams) error
	CyclePower(ctx context.Context, offCycle bool) error
}

// Monitoring exposes read-only state and change notifications.
type Monitoring interface {
	GetState(ctx context.Context) (models.FireplaceSnapshot, error)
	// Subscribe calls fn after every published change until cancel is called.
	Subscribe(fn func(models.FireplaceSnapshot)) (cancel func())
}

// Receiver turns captured RF bursts into fireplace commands.
type Receiver interface {
	HandleCapture(ctx context.Context, durations []int) (decoder.Result, error)
	Stats() decoder.Statistics
	ResetStats()
	Protocol() string
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.FireplaceEvent, error)
}

// Service aggregates all sub-services.
type Service struct {
	Fireplace
	Monitoring
	Receiver
	EventLog
	Authorization
}

// Deps carries what NewService wires together.
type Deps struct {
	Repos     *repository.Repository
	Fireplace *fireplace.Fireplace
	Decoder   *decoder.Decoder
	Dispatch  DispatchTable
	Auth      AuthConfig
	Log       *logger.Logger
}

// NewService wires the repository layer and the fireplace entity into concrete services.
func NewService(d Deps) *Service {
	log := logger.OrNop(d.Log)
	control := NewFireplaceService(d.Fireplace, &sync.Mutex{}, log.Named("fireplace"))
	return &Service{
		Fireplace:     control,
		Monitoring:    NewMonitoringService(d.Fireplace),
		Receiver:      NewReceiverService(d.Decoder, d.Dispatch, control, d.Repos.EventRepo, log.Named("receiver")),
		EventLog:      NewEventLogService(d.Repos.EventRepo),
		Authorization: NewAuthService(d.Repos.Auth, d.Auth),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
