package presence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/typerush-presence/domain/presence"
)

// PresencePort defines the read operations other modules may call.
type PresencePort interface {
	ListRooms(ctx context.Context) ([]RoomSummary, error)
	GetRoomUsers(ctx context.Context, room string) ([]domain.Session, error)
}

// PresenceAdapter implements PresencePort using the service container.
type PresenceAdapter struct {
	container mono.ServiceContainer
}

// NewPresenceAdapter creates a new PresenceAdapter.
func NewPresenceAdapter(container mono.ServiceContainer) PresencePort {
	if container == nil {
		panic("presence: ServiceContainer is nil")
	}
	return &PresenceAdapter{container: container}
}

// ListRooms returns every occupied room with its member count.
func (a *PresenceAdapter) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	req := ListRoomsRequest{}
	var resp ListRoomsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListRooms,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return resp.Rooms, nil
}

// GetRoomUsers returns the members of room.
func (a *PresenceAdapter) GetRoomUsers(ctx context.Context, room string) ([]domain.Session, error) {
	req := GetRoomUsersRequest{Room: room}
	var resp GetRoomUsersResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetRoomUsers,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get room users: %w", err)
	}
	return resp.Users, nil
}
