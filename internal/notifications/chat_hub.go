package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"alphaboard/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// RoomKind distinguishes the two chat surfaces: DM conversations and
// community server rooms.
type RoomKind string

const (
	RoomConversation RoomKind = "conv"
	RoomServer       RoomKind = "server"
)

type roomKey struct {
	kind RoomKind
	id   uint
}

// ChatHub manages websocket connections for chat. Unlike Hub (which is
// user-centric), ChatHub is room-centric: each DM conversation and each
// community server is a room users join and leave as they navigate.
type ChatHub struct {
	mu sync.RWMutex

	// room -> set of userIDs currently viewing it
	rooms map[roomKey]map[uint]struct{}

	// userID -> set of rooms they are actively viewing
	userRooms map[uint]map[roomKey]struct{}

	// userID -> set of active clients (multi-device support)
	userConns map[uint]map[*Client]bool
}

// Name returns a human-readable identifier for this hub.
func (h *ChatHub) Name() string { return "chat hub" }

// ChatEvent is the frame broadcast to chat clients.
type ChatEvent struct {
	Type           string      `json:"type"` // "message", "typing", "read", "user_status", "connected_users"
	ConversationID uint        `json:"conversation_id,omitempty"`
	ServerID       uint        `json:"server_id,omitempty"`
	UserID         uint        `json:"user_id,omitempty"`
	Username       string      `json:"username,omitempty"`
	Payload        interface{} `json:"payload"`
}

// NewChatHub creates a ChatHub.
func NewChatHub() *ChatHub {
	return &ChatHub{
		rooms:     make(map[roomKey]map[uint]struct{}),
		userRooms: make(map[uint]map[roomKey]struct{}),
		userConns: make(map[uint]map[*Client]bool),
	}
}

// Register registers a user's websocket connection. Returns the Client or an
// error when the per-user limit is exceeded.
func (h *ChatHub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()

	if h.userConns[userID] == nil {
		h.userConns[userID] = make(map[*Client]bool)
	}
	if len(h.userConns[userID]) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, fmt.Errorf("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	h.userConns[userID][client] = true

	onlineIDs := make([]uint, 0, len(h.userConns))
	for id := range h.userConns {
		if id != userID {
			onlineIDs = append(onlineIDs, id)
		}
	}
	h.mu.Unlock()

	observability.ActiveWebSockets.Inc()

	// Initial snapshot so the client can render presence immediately.
	if len(onlineIDs) > 0 {
		snapshot := ChatEvent{
			Type:    "connected_users",
			Payload: map[string]interface{}{"user_ids": onlineIDs},
		}
		if jsonMsg, err := json.Marshal(snapshot); err == nil {
			client.TrySend(jsonMsg)
		}
	}

	h.BroadcastUserStatus(userID, "online")
	return client, nil
}

// UnregisterClient removes a connection. When it was the user's last one,
// all their room subscriptions are dropped and an offline status goes out.
func (h *ChatHub) UnregisterClient(client *Client) {
	h.mu.Lock()

	clients, ok := h.userConns[client.UserID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, exists := clients[client]; !exists {
		h.mu.Unlock()
		return
	}
	delete(clients, client)

	if len(clients) > 0 {
		h.mu.Unlock()
		observability.ActiveWebSockets.Dec()
		return
	}
	delete(h.userConns, client.UserID)

	if joined, ok := h.userRooms[client.UserID]; ok {
		for key := range joined {
			if users, ok := h.rooms[key]; ok {
				delete(users, client.UserID)
				if len(users) == 0 {
					delete(h.rooms, key)
				}
			}
		}
		delete(h.userRooms, client.UserID)
	}

	h.mu.Unlock()

	observability.ActiveWebSockets.Dec()
	h.BroadcastUserStatus(client.UserID, "offline")
}

// IsUserOnline reports whether the user has at least one active chat client.
func (h *ChatHub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.userConns[userID]
	return ok && len(clients) > 0
}

// JoinRoom subscribes a connected user to a room's events.
func (h *ChatHub) JoinRoom(userID uint, kind RoomKind, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.userConns[userID]; !ok {
		log.Printf("ChatHub: user %d not connected, cannot join %s %d", userID, kind, roomID)
		return
	}

	key := roomKey{kind: kind, id: roomID}
	if h.rooms[key] == nil {
		h.rooms[key] = make(map[uint]struct{})
	}
	h.rooms[key][userID] = struct{}{}

	if h.userRooms[userID] == nil {
		h.userRooms[userID] = make(map[roomKey]struct{})
	}
	h.userRooms[userID][key] = struct{}{}
}

// LeaveRoom unsubscribes a user from a room.
func (h *ChatHub) LeaveRoom(userID uint, kind RoomKind, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := roomKey{kind: kind, id: roomID}
	if users, ok := h.rooms[key]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(h.rooms, key)
		}
	}
	if joined, ok := h.userRooms[userID]; ok {
		delete(joined, key)
	}
}

// BroadcastToRoom sends an event to every client of every user in a room.
func (h *ChatHub) BroadcastToRoom(kind RoomKind, roomID uint, event ChatEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users, ok := h.rooms[roomKey{kind: kind, id: roomID}]
	if !ok {
		return
	}

	messageJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("ChatHub: failed to marshal event: %v", err)
		return
	}

	for userID := range users {
		if clients, ok := h.userConns[userID]; ok {
			for client := range clients {
				client.TrySend(messageJSON)
			}
		}
	}
}

// BroadcastToAllUsers sends an event to every connected chat client.
func (h *ChatHub) BroadcastToAllUsers(event ChatEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	messageJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("ChatHub: failed to marshal event: %v", err)
		return
	}

	for _, clients := range h.userConns {
		for client := range clients {
			client.TrySend(messageJSON)
		}
	}
}

// ActiveUsers returns the userIDs currently viewing a room.
func (h *ChatHub) ActiveUsers(kind RoomKind, roomID uint) []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users, ok := h.rooms[roomKey{kind: kind, id: roomID}]
	if !ok {
		return []uint{}
	}
	result := make([]uint, 0, len(users))
	for userID := range users {
		result = append(result, userID)
	}
	return result
}

// IsUserActive checks whether a user is currently viewing a room.
func (h *ChatHub) IsUserActive(userID uint, kind RoomKind, roomID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if joined, ok := h.userRooms[userID]; ok {
		_, active := joined[roomKey{kind: kind, id: roomID}]
		return active
	}
	return false
}

// StartWiring subscribes the hub to Redis chat channels and rebroadcasts
// each event into the matching room.
func (h *ChatHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartChatSubscriber(ctx, func(channel, payload string) {
		var roomID uint
		var kind RoomKind
		var msgType string

		if _, err := fmt.Sscanf(channel, "chat:conv:%d", &roomID); err == nil {
			kind, msgType = RoomConversation, "message"
		} else if _, err := fmt.Sscanf(channel, "chat:server:%d", &roomID); err == nil {
			kind, msgType = RoomServer, "message"
		} else if _, err := fmt.Sscanf(channel, "typing:conv:%d", &roomID); err == nil {
			kind, msgType = RoomConversation, "typing"
		} else {
			log.Printf("ChatHub: invalid channel format: %s", channel)
			return
		}

		var event ChatEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			log.Printf("ChatHub: failed to parse event from channel %s: %v", channel, err)
			return
		}

		if event.Type == "" {
			event.Type = msgType
		}
		if kind == RoomConversation {
			event.ConversationID = roomID
		} else {
			event.ServerID = roomID
		}

		h.BroadcastToRoom(kind, roomID, event)
	})
}

// BroadcastUserStatus sends a "user_status" event (online/offline) to every
// connected user except the one who triggered it.
func (h *ChatHub) BroadcastUserStatus(userID uint, status string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event := ChatEvent{
		Type:    "user_status",
		UserID:  userID,
		Payload: map[string]interface{}{"status": status, "user_id": userID},
	}
	jsonMsg, err := json.Marshal(event)
	if err != nil {
		log.Printf("ChatHub: failed to marshal status event: %v", err)
		return
	}

	for id, clients := range h.userConns {
		if id == userID {
			continue
		}
		for client := range clients {
			client.TrySend(jsonMsg)
		}
	}
}

// Shutdown gracefully closes all websocket connections.
func (h *ChatHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.userConns {
		for client := range clients {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage,
				[]byte(`{"type":"server_shutdown","message":"Server is shutting down"}`)); err != nil {
				log.Printf("failed to write shutdown message for user %d: %v", userID, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for user %d: %v", userID, err)
			}
		}
	}

	h.rooms = make(map[roomKey]map[uint]struct{})
	h.userRooms = make(map[uint]map[roomKey]struct{})
	h.userConns = make(map[uint]map[*Client]bool)

	return nil
}
