package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types sent over WebSocket.
const (
	EventGameStarted       = "game_started"
	EventDiceRolled        = "dice_rolled"
	EventNoMoves           = "no_moves"
	EventPieceMoved        = "piece_moved"
	EventPieceCaptured     = "piece_captured"
	EventPowerUp           = "power_up"
	EventBombArmed         = "bomb_armed"
	EventBombDefused       = "bomb_defused"
	EventBombExploded      = "bomb_exploded"
	EventExtraTurn         = "extra_turn"
	EventTurnChanged       = "turn_changed"
	EventTurnTimeout       = "turn_timeout"
	EventPlayerFinished    = "player_finished"
	EventPlayerSurrendered = "player_surrendered"
	EventGameEnded         = "game_ended"
	EventRoomState         = "room_state"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	Data   any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	RoomID string `json:"room_id"`
}

// WSConn wraps a WebSocket connection with its user and subscriptions.
type WSConn struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub manages WebSocket connections and room-channel subscriptions.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	rooms       map[string]map[*WSConn]bool // roomID -> set of connections
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		rooms:       make(map[string]map[*WSConn]bool),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and all its subscriptions.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, c)
	for roomID, conns := range h.rooms {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
	close(c.send)
}

// Subscribe adds a connection to a room channel.
func (h *Hub) Subscribe(c *WSConn, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*WSConn]bool)
	}
	h.rooms[roomID][c] = true
}

// Unsubscribe removes a connection from a room channel.
func (h *Hub) Unsubscribe(c *WSConn, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[roomID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// BroadcastToRoom sends an event to all connections subscribed to a room.
func (h *Hub) BroadcastToRoom(roomID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("roomId", roomID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[roomID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("userId", c.userID).Str("roomId", roomID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// BroadcastToUser sends an event to a specific user across all their connections.
func (h *Hub) BroadcastToUser(userID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.connections {
		if c.userID == userID {
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// RoomSubscriberCount returns the number of connections subscribed to a room.
func (h *Hub) RoomSubscriberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
