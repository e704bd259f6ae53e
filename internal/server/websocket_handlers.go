package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"alphaboard/internal/middleware"
	"alphaboard/internal/notifications"
	"alphaboard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler handles websocket connections for general notifications
// (likes, comments, announcements).
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket: failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		welcome := map[string]interface{}{
			"type":    "connected",
			"payload": map[string]interface{}{"user_id": userID},
		}
		if welcomeJSON, err := json.Marshal(welcome); err == nil {
			client.TrySend(welcomeJSON)
		}

		go client.WritePump()
		client.ReadPump()
	})
}

// WebSocketChatHandler handles websocket connections for real-time chat in
// community servers and direct conversations.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx := context.Background()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			log.Printf("WebSocket chat: failed to get user %d: %v", userID, err)
			_ = conn.Close()
			return
		}
		username := user.Username

		if s.chatHub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.chatHub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket chat: failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, raw []byte) {
			var frame struct {
				Type           string `json:"type"`
				ServerID       uint   `json:"server_id"`
				ConversationID uint   `json:"conversation_id"`
				Content        string `json:"content"`
				IsTyping       bool   `json:"is_typing"`
			}
			if err := json.Unmarshal(raw, &frame); err != nil {
				log.Printf("WebSocket chat: invalid frame from user %d", userID)
				return
			}

			kind, roomID, ok := frameRoom(frame.ServerID, frame.ConversationID)

			switch frame.Type {
			case "join":
				if !ok || !s.canAccessRoom(ctx, userID, kind, roomID) {
					return
				}
				s.chatHub.JoinRoom(userID, kind, roomID)
				s.sendRoomAck(c, "joined", kind, roomID)

			case "leave":
				if !ok {
					return
				}
				s.chatHub.LeaveRoom(userID, kind, roomID)

			case "typing":
				if frame.ConversationID == 0 || s.notifier == nil {
					return
				}
				if !s.canAccessRoom(ctx, userID, notifications.RoomConversation, frame.ConversationID) {
					return
				}
				// Cap typing indicators to stop spam.
				id := fmt.Sprintf("user:%d", userID)
				allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "typing", id, 10, 10*time.Second)
				if !allowed {
					return
				}
				if perr := s.notifier.PublishTypingIndicator(
					ctx, frame.ConversationID, userID, username, frame.IsTyping); perr != nil {
					log.Printf("publish typing indicator error: %v", perr)
				}

			case "message":
				if !ok || frame.Content == "" {
					return
				}
				s.handleChatFrameMessage(ctx, c, userID, kind, roomID, frame.Content)

			case "read":
				if frame.ConversationID == 0 {
					return
				}
				if !s.canAccessRoom(ctx, userID, notifications.RoomConversation, frame.ConversationID) {
					return
				}
				if uerr := s.chatRepo.UpdateLastRead(ctx, frame.ConversationID, userID); uerr != nil {
					log.Printf("update last read error: %v", uerr)
				}
				if s.notifier != nil {
					readJSON, _ := json.Marshal(notifications.ChatEvent{
						Type:           "read",
						ConversationID: frame.ConversationID,
						UserID:         userID,
						Username:       username,
						Payload: map[string]interface{}{
							"conversation_id": frame.ConversationID,
							"user_id":         userID,
						},
					})
					if perr := s.notifier.PublishConversationMessage(
						ctx, frame.ConversationID, string(readJSON)); perr != nil {
						log.Printf("publish read receipt error: %v", perr)
					}
				}
			}
		}

		welcome := notifications.ChatEvent{
			Type:    "connected",
			Payload: map[string]interface{}{"user_id": userID, "username": username},
		}
		if welcomeJSON, err := json.Marshal(welcome); err == nil {
			client.TrySend(welcomeJSON)
		}

		go client.WritePump()
		client.ReadPump()
	})
}

// frameRoom picks the room a chat frame addresses. Exactly one of serverID /
// conversationID should be set.
func frameRoom(serverID, conversationID uint) (notifications.RoomKind, uint, bool) {
	if serverID != 0 && conversationID == 0 {
		return notifications.RoomServer, serverID, true
	}
	if conversationID != 0 && serverID == 0 {
		return notifications.RoomConversation, conversationID, true
	}
	return "", 0, false
}

// canAccessRoom verifies room membership before any join/publish.
func (s *Server) canAccessRoom(ctx context.Context, userID uint, kind notifications.RoomKind, roomID uint) bool {
	switch kind {
	case notifications.RoomServer:
		member, err := s.serverRepo.GetMember(ctx, roomID, userID)
		return err == nil && member != nil
	case notifications.RoomConversation:
		ok, err := s.chatRepo.IsParticipant(ctx, roomID, userID)
		return err == nil && ok
	}
	return false
}

func (s *Server) sendRoomAck(c *notifications.Client, ackType string, kind notifications.RoomKind, roomID uint) {
	ack := notifications.ChatEvent{Type: ackType}
	if kind == notifications.RoomServer {
		ack.ServerID = roomID
		ack.Payload = map[string]interface{}{"server_id": roomID}
	} else {
		ack.ConversationID = roomID
		ack.Payload = map[string]interface{}{"conversation_id": roomID}
	}
	if ackJSON, err := json.Marshal(ack); err == nil {
		c.TrySend(ackJSON)
	}
}

// handleChatFrameMessage persists a message sent over the websocket and
// publishes it to the room channel. The same rate limits as the HTTP
// endpoints apply.
func (s *Server) handleChatFrameMessage(
	ctx context.Context, c *notifications.Client,
	userID uint, kind notifications.RoomKind, roomID uint, content string,
) {
	limitName, limitMax := "send_chat", 15
	if kind == notifications.RoomServer {
		limitName, limitMax = "server_chat", 30
	}
	id := fmt.Sprintf("user:%d", userID)
	allowed, _ := middleware.CheckRateLimit(ctx, s.redis, limitName, id, limitMax, time.Minute)
	if !allowed {
		if respJSON, err := json.Marshal(notifications.ChatEvent{
			Type:    "error",
			Payload: map[string]string{"message": "Rate limit exceeded. Please wait a moment."},
		}); err == nil {
			c.TrySend(respJSON)
		}
		return
	}

	switch kind {
	case notifications.RoomServer:
		message, err := s.serverService.SendMessage(ctx, service.SendServerMessageInput{
			UserID:   userID,
			ServerID: roomID,
			Content:  content,
		})
		if err != nil {
			log.Printf("WebSocket chat: failed to send server message: %v", err)
			return
		}
		s.publishServerChatEvent(ctx, roomID, userID, message)

	case notifications.RoomConversation:
		conv, err := s.chatService.GetConversationForUser(ctx, roomID, userID)
		if err != nil {
			log.Printf("WebSocket chat: conversation lookup failed: %v", err)
			return
		}
		var recipientID uint
		for _, p := range conv.Participants {
			if p.ID != userID {
				recipientID = p.ID
				break
			}
		}
		message, _, err := s.chatService.SendDirectMessage(ctx, service.SendDirectMessageInput{
			UserID:      userID,
			RecipientID: recipientID,
			Content:     content,
		})
		if err != nil {
			log.Printf("WebSocket chat: failed to send direct message: %v", err)
			return
		}
		s.publishConversationChatEvent(ctx, roomID, userID, message)
		s.publishUserEvent(recipientID, EventMessageReceived, map[string]interface{}{
			"conversation_id": roomID,
			"message_id":      message.ID,
			"sender_id":       userID,
		})
	}
}
