package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/typerush-presence/events"
)

// errNotStarted is returned by handlers invoked before Start.
var errNotStarted = errors.New("stats repository not initialized")

// StatsModule records presence events to SQLite and serves room statistics.
type StatsModule struct {
	db           *gorm.DB
	repo         *Repository
	dbPath       string
	defaultLimit int
	logger       types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*StatsModule)(nil)
var _ mono.ServiceProviderModule = (*StatsModule)(nil)
var _ mono.EventConsumerModule = (*StatsModule)(nil)
var _ mono.HealthCheckableModule = (*StatsModule)(nil)

// NewModule creates a new StatsModule backed by the SQLite file at dbPath.
func NewModule(dbPath string, defaultLimit int, logger types.Logger) *StatsModule {
	return &StatsModule{
		dbPath:       dbPath,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Name returns the module name.
func (m *StatsModule) Name() string {
	return "stats"
}

// Start opens the database and runs migrations.
func (m *StatsModule) Start(_ context.Context) error {
	m.logger.Info("Opening stats database", "path", m.dbPath)

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := m.useDB(db); err != nil {
		return err
	}

	m.logger.Info("Stats module started")
	return nil
}

// useDB migrates db and builds the repository on top of it.
func (m *StatsModule) useDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&RoomEvent{}, &ProgressSample{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	m.db = db
	m.repo = NewRepository(db)
	return nil
}

// Stop closes the database connection.
func (m *StatsModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	m.logger.Info("Stats database closed")
	return nil
}

// Health pings the database.
func (m *StatsModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": "sqlite",
			"path":   m.dbPath,
		},
	}
}

// RegisterEventConsumers subscribes to presence events.
func (m *StatsModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.SessionJoinedV1, m.handleSessionJoined, m); err != nil {
		return fmt.Errorf("failed to register SessionJoined consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.SessionLeftV1, m.handleSessionLeft, m); err != nil {
		return fmt.Errorf("failed to register SessionLeft consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ProgressReportedV1, m.handleProgressReported, m); err != nil {
		return fmt.Errorf("failed to register ProgressReported consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"SessionJoined", "SessionLeft", "ProgressReported"})
	return nil
}

// RegisterServices registers request-reply services in the service container.
func (m *StatsModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetRoomStats, json.Unmarshal, json.Marshal, m.getRoomStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetRoomStats, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetLeaderboard, json.Unmarshal, json.Marshal, m.getLeaderboard,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetLeaderboard, err)
	}

	m.logger.Info("Registered stats services",
		"services", []string{ServiceGetRoomStats, ServiceGetLeaderboard})
	return nil
}

// Event handlers. A storage failure is logged and swallowed so the event is
// not redelivered forever.

func (m *StatsModule) handleSessionJoined(ctx context.Context, event events.SessionJoinedEvent, _ *mono.Msg) error {
	if m.repo == nil {
		return errNotStarted
	}
	err := m.repo.RecordRoomEvent(ctx, &RoomEvent{
		ConnID:       event.ConnID,
		Name:         event.Name,
		Room:         event.Room,
		Kind:         KindJoined,
		PreviousRoom: event.PreviousRoom,
		OccurredAt:   event.Timestamp,
	})
	if err != nil {
		m.logger.Error("Failed to store join", "connID", event.ConnID, "room", event.Room, "error", err)
	}
	return nil
}

func (m *StatsModule) handleSessionLeft(ctx context.Context, event events.SessionLeftEvent, _ *mono.Msg) error {
	if m.repo == nil {
		return errNotStarted
	}
	err := m.repo.RecordRoomEvent(ctx, &RoomEvent{
		ConnID:     event.ConnID,
		Name:       event.Name,
		Room:       event.Room,
		Kind:       KindLeft,
		Reason:     event.Reason,
		OccurredAt: event.Timestamp,
	})
	if err != nil {
		m.logger.Error("Failed to store leave", "connID", event.ConnID, "room", event.Room, "error", err)
	}
	return nil
}

func (m *StatsModule) handleProgressReported(ctx context.Context, event events.ProgressReportedEvent, _ *mono.Msg) error {
	if m.repo == nil {
		return errNotStarted
	}
	err := m.repo.RecordProgress(ctx, &ProgressSample{
		ConnID:     event.ConnID,
		Name:       event.Name,
		Room:       event.Room,
		WPM:        event.WPM,
		RecordedAt: event.Timestamp,
	})
	if err != nil {
		m.logger.Error("Failed to store progress", "connID", event.ConnID, "room", event.Room, "error", err)
	}
	return nil
}

// Service handlers

func (m *StatsModule) getRoomStats(ctx context.Context, req GetRoomStatsRequest, _ *mono.Msg) (RoomStats, error) {
	if m.repo == nil {
		return RoomStats{}, errNotStarted
	}
	if req.Room == "" {
		return RoomStats{}, fmt.Errorf("room is required")
	}

	stats := RoomStats{Room: req.Room}
	var err error
	if stats.Joins, err = m.repo.CountRoomEvents(ctx, req.Room, KindJoined); err != nil {
		return RoomStats{}, err
	}
	if stats.Leaves, err = m.repo.CountRoomEvents(ctx, req.Room, KindLeft); err != nil {
		return RoomStats{}, err
	}
	if stats.Samples, err = m.repo.CountSamples(ctx, req.Room); err != nil {
		return RoomStats{}, err
	}

	best, err := m.repo.BestSample(ctx, req.Room)
	switch {
	case errors.Is(err, ErrNoSamples):
	case err != nil:
		return RoomStats{}, err
	default:
		stats.BestWPM = best.WPM
	}
	return stats, nil
}

func (m *StatsModule) getLeaderboard(ctx context.Context, req GetLeaderboardRequest, _ *mono.Msg) (GetLeaderboardResponse, error) {
	if m.repo == nil {
		return GetLeaderboardResponse{}, errNotStarted
	}
	if req.Room == "" {
		return GetLeaderboardResponse{}, fmt.Errorf("room is required")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = m.defaultLimit
	}
	entries, err := m.repo.Leaderboard(ctx, req.Room, limit)
	if err != nil {
		return GetLeaderboardResponse{}, err
	}
	return GetLeaderboardResponse{Room: req.Room, Entries: entries}, nil
}
