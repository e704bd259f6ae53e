package server

import (
	"context"
	"encoding/json"
	"log"

	"alphaboard/internal/models"
	"alphaboard/internal/notifications"
)

// Event type constants prevent typos in event names.
const (
	EventIdeaCreated     = "idea_created"
	EventLikeUpdated     = "like_updated"
	EventCommentCreated  = "comment_created"
	EventMessageReceived = "message_received"
	EventAnnouncement    = "announcement"
)

func (s *Server) publishUserEvent(userID uint, eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	if s.hub != nil {
		s.hub.Broadcast(userID, message)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishUser(context.Background(), userID, message); err != nil {
			log.Printf("failed to publish %s event to user %d: %v", eventType, userID, err)
		}
	}
}

func (s *Server) publishBroadcastEvent(eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	if s.hub != nil {
		s.hub.BroadcastAll(message)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishBroadcast(context.Background(), message); err != nil {
			log.Printf("failed to publish %s broadcast event: %v", eventType, err)
		}
	}
}

// publishServerChatEvent pushes a persisted community-server message to the
// room's channel so every instance rebroadcasts it.
func (s *Server) publishServerChatEvent(ctx context.Context, serverID, senderID uint, message *models.Message) {
	if s.notifier == nil {
		return
	}
	eventJSON, err := json.Marshal(notifications.ChatEvent{
		Type:     "message",
		ServerID: serverID,
		UserID:   senderID,
		Username: senderUsername(message),
		Payload:  message,
	})
	if err != nil {
		log.Printf("marshal server chat event error: %v", err)
		return
	}
	if err := s.notifier.PublishServerMessage(ctx, serverID, string(eventJSON)); err != nil {
		log.Printf("publish server chat event error: %v", err)
	}
}

// publishConversationChatEvent pushes a persisted direct message to the
// conversation's channel.
func (s *Server) publishConversationChatEvent(ctx context.Context, conversationID, senderID uint, message *models.Message) {
	if s.notifier == nil {
		return
	}
	eventJSON, err := json.Marshal(notifications.ChatEvent{
		Type:           "message",
		ConversationID: conversationID,
		UserID:         senderID,
		Username:       senderUsername(message),
		Payload:        message,
	})
	if err != nil {
		log.Printf("marshal conversation chat event error: %v", err)
		return
	}
	if err := s.notifier.PublishConversationMessage(ctx, conversationID, string(eventJSON)); err != nil {
		log.Printf("publish conversation chat event error: %v", err)
	}
}

func senderUsername(message *models.Message) string {
	if message == nil || message.Sender == nil {
		return ""
	}
	return message.Sender.Username
}
