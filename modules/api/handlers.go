package api

import (
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	domain "github.com/example/typerush-presence/domain/presence"
	"github.com/example/typerush-presence/modules/presence"
	"github.com/example/typerush-presence/modules/stats"
)

const maxLeaderboardLimit = 100

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	// Health check
	app.Get("/health", m.healthHandler)

	// WebSocket endpoint
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(m.handleWebSocket))

	// REST API v1
	api := app.Group("/api/v1")
	api.Get("/rooms", m.listRooms)
	api.Get("/rooms/:room/users", m.getRoomUsers)
	api.Get("/rooms/:room/stats", m.getRoomStats)
	api.Get("/rooms/:room/leaderboard", m.getLeaderboard)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// listRooms handles GET /api/v1/rooms.
func (m *APIModule) listRooms(c *fiber.Ctx) error {
	rooms, err := m.presenceAdapter.ListRooms(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to list rooms", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list rooms",
		})
	}

	response := RoomListResponse{
		Rooms: make([]RoomResponse, 0, len(rooms)),
	}
	for _, room := range rooms {
		response.Rooms = append(response.Rooms, RoomResponse{
			Name:  room.Name,
			Users: room.Users,
		})
	}

	return c.JSON(response)
}

// getRoomUsers handles GET /api/v1/rooms/:room/users.
func (m *APIModule) getRoomUsers(c *fiber.Ctx) error {
	room := c.Params("room")

	users, err := m.presenceAdapter.GetRoomUsers(c.UserContext(), room)
	if err != nil {
		m.logger.Error("Failed to get room users", "room", room, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "lookup_failed",
			Message: "Failed to get room users",
		})
	}
	if users == nil {
		users = []domain.Session{}
	}

	return c.JSON(RoomUsersResponse{Room: room, Users: users})
}

// getRoomStats handles GET /api/v1/rooms/:room/stats.
func (m *APIModule) getRoomStats(c *fiber.Ctx) error {
	room := c.Params("room")

	roomStats, err := m.statsAdapter.RoomStats(c.UserContext(), room)
	if err != nil {
		m.logger.Error("Failed to get room stats", "room", room, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to get room stats",
		})
	}

	return c.JSON(roomStats)
}

// getLeaderboard handles GET /api/v1/rooms/:room/leaderboard.
func (m *APIModule) getLeaderboard(c *fiber.Ctx) error {
	room := c.Params("room")
	limit := 0 // server default
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxLeaderboardLimit {
			limit = parsed
		}
	}

	entries, err := m.statsAdapter.Leaderboard(c.UserContext(), room, limit)
	if err != nil {
		m.logger.Error("Failed to get leaderboard", "room", room, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to get leaderboard",
		})
	}

	response := LeaderboardResponse{Room: room, Entries: entries}
	if response.Entries == nil {
		response.Entries = make([]stats.LeaderboardEntry, 0)
	}
	return c.JSON(response)
}

// handleWebSocket handles WebSocket connections at /ws. Every frame is
// handed to the dispatcher; replies flow back through the hub.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	connID := uuid.New().String()

	client, err := m.hub.Register(connID, c)
	if err != nil {
		m.logger.Warn("Rejecting WebSocket client", "connID", connID, "error", err)
		return
	}
	defer func() {
		m.hub.Unregister(connID)
		m.dispatcher.Dispatch(presence.Inbound{ConnID: connID, Event: domain.EventDisconnect})
		_ = c.Close()
		<-client.Done()
		m.logger.Info("WebSocket client disconnected", "connID", connID)
	}()

	m.logger.Info("WebSocket client connected", "connID", connID)
	if !m.dispatcher.Dispatch(presence.Inbound{ConnID: connID, Event: domain.EventConnect}) {
		return
	}

	// Message loop
	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Debug("Client closed connection", "connID", connID)
			} else {
				m.logger.Debug("Read error", "connID", connID, "error", err)
			}
			break
		}

		in, err := decodeFrame(connID, msgBytes)
		if err != nil {
			m.logger.Debug("Dropping client frame", "connID", connID, "error", err)
			continue
		}
		if !m.dispatcher.Dispatch(in) {
			break
		}
	}
}
