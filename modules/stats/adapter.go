package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// StatsPort defines the stats queries available to other modules.
type StatsPort interface {
	RoomStats(ctx context.Context, room string) (RoomStats, error)
	Leaderboard(ctx context.Context, room string, limit int) ([]LeaderboardEntry, error)
}

// StatsAdapter implements StatsPort using the service container.
type StatsAdapter struct {
	container mono.ServiceContainer
}

// NewStatsAdapter creates a new StatsAdapter.
func NewStatsAdapter(container mono.ServiceContainer) StatsPort {
	if container == nil {
		panic("stats: ServiceContainer is nil")
	}
	return &StatsAdapter{container: container}
}

// RoomStats returns the recorded totals for room.
func (a *StatsAdapter) RoomStats(ctx context.Context, room string) (RoomStats, error) {
	req := GetRoomStatsRequest{Room: room}
	var resp RoomStats
	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceGetRoomStats, json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return RoomStats{}, fmt.Errorf("failed to get room stats: %w", err)
	}
	return resp, nil
}

// Leaderboard returns up to limit entries; zero selects the server default.
func (a *StatsAdapter) Leaderboard(ctx context.Context, room string, limit int) ([]LeaderboardEntry, error) {
	req := GetLeaderboardRequest{Room: room, Limit: limit}
	var resp GetLeaderboardResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceGetLeaderboard, json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return resp.Entries, nil
}
