package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/typerush-presence/events"
)

// Options configures the presence module.
type Options struct {
	AppName   string
	AdminName string
	QueueSize int
	Now       func() time.Time
}

// Module hosts the session registry and the event dispatcher.
type Module struct {
	opts       Options
	registry   *Registry
	presence   *Presence
	gateway    Gateway
	dispatcher *Dispatcher
	publisher  *busPublisher
	cancel     context.CancelFunc
	logger     types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new presence module.
func NewModule(opts Options, logger types.Logger) *Module {
	registry := NewRegistry()
	return &Module{
		opts:      opts,
		registry:  registry,
		presence:  NewPresence(registry),
		publisher: &busPublisher{logger: logger},
		logger:    logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "presence"
}

// SetGateway sets the connection transport (called from main.go).
func (m *Module) SetGateway(gateway Gateway) {
	m.gateway = gateway
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.publisher.bus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.SessionJoinedV1.ToBase(),
		events.SessionLeftV1.ToBase(),
		events.ProgressReportedV1.ToBase(),
	}
}

// Start wires the coordinator and relay and starts the dispatcher.
func (m *Module) Start(_ context.Context) error {
	if m.gateway == nil {
		return fmt.Errorf("presence gateway dependency not set")
	}

	messages := NewMessageBuilder(m.opts.AdminName, m.opts.Now)
	coordinator := NewCoordinator(m.registry, m.gateway, messages, m.publisher, m.opts.AppName, m.logger)
	relay := NewRelay(m.registry, m.gateway, messages, m.publisher, m.logger)
	router := NewRouter(coordinator, relay, m.logger)
	m.dispatcher = NewDispatcher(router.Handle, m.opts.QueueSize, m.logger)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.dispatcher.Run(ctx)

	m.logger.Info("Presence module started", "admin", m.opts.AdminName)
	return nil
}

// Stop halts the dispatcher. Events still queued are discarded.
func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
		m.dispatcher.Wait()
	}
	m.logger.Info("Presence module stopped", "sessions", m.registry.Len())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	healthy := m.dispatcher != nil && m.dispatcher.Running()
	message := "operational"
	if !healthy {
		message = "dispatcher not running"
	}
	return mono.HealthStatus{
		Healthy: healthy,
		Message: message,
		Details: map[string]any{
			"sessions": m.registry.Len(),
			"rooms":    len(m.registry.OccupiedRooms()),
		},
	}
}

// Dispatch queues an inbound event for the dispatcher. It returns false when
// the module is not running.
func (m *Module) Dispatch(in Inbound) bool {
	if m.dispatcher == nil {
		return false
	}
	return m.dispatcher.Dispatch(in)
}

// Registry returns the session registry.
func (m *Module) Registry() *Registry {
	return m.registry
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceListRooms,
		json.Unmarshal,
		json.Marshal,
		m.handleListRooms,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListRooms, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceGetRoomUsers,
		json.Unmarshal,
		json.Marshal,
		m.handleGetRoomUsers,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetRoomUsers, err)
	}

	m.logger.Info("Registered presence services",
		"services", []string{ServiceListRooms, ServiceGetRoomUsers})
	return nil
}

func (m *Module) handleListRooms(_ context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	return ListRoomsResponse{Rooms: m.registry.RoomCounts()}, nil
}

func (m *Module) handleGetRoomUsers(_ context.Context, req GetRoomUsersRequest, _ *mono.Msg) (GetRoomUsersResponse, error) {
	return GetRoomUsersResponse{
		Room:  req.Room,
		Users: m.presence.RoomSnapshot(req.Room).Users,
	}, nil
}
