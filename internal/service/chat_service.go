package service

import (
	"context"

	"alphaboard/internal/models"
	"alphaboard/internal/repository"
)

// ChatService handles direct messages between users.
type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

type SendDirectMessageInput struct {
	UserID      uint
	RecipientID uint
	Content     string
}

func NewChatService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

const maxMessageContentLen = 10000 // 10K characters

// EnsureDirectConversation returns the existing DM thread between the two
// users, creating it on first contact.
func (s *ChatService) EnsureDirectConversation(ctx context.Context, userID, otherUserID uint) (*models.Conversation, error) {
	if userID == otherUserID {
		return nil, models.NewValidationError("Cannot start a conversation with yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, otherUserID); err != nil {
		return nil, err
	}

	existing, err := s.chatRepo.FindDirectConversation(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.chatRepo.GetConversation(ctx, existing.ID)
	}

	conv := &models.Conversation{CreatedBy: userID}
	if err := s.chatRepo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	if err := s.chatRepo.AddParticipant(ctx, conv.ID, userID); err != nil {
		return nil, err
	}
	if err := s.chatRepo.AddParticipant(ctx, conv.ID, otherUserID); err != nil {
		return nil, err
	}

	return s.chatRepo.GetConversation(ctx, conv.ID)
}

// GetConversations returns conversations for the user.
func (s *ChatService) GetConversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	return s.chatRepo.GetUserConversations(ctx, userID)
}

// GetConversationForUser returns the conversation if the user is a participant.
func (s *ChatService) GetConversationForUser(ctx context.Context, convID, userID uint) (*models.Conversation, error) {
	member, err := s.chatRepo.IsParticipant(ctx, convID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, models.NewUnauthorizedError("You are not a participant in this conversation")
	}
	return s.chatRepo.GetConversation(ctx, convID)
}

// SendDirectMessage sends a message to another user, creating the DM thread
// on first contact.
func (s *ChatService) SendDirectMessage(ctx context.Context, in SendDirectMessageInput) (*models.Message, *models.Conversation, error) {
	if in.Content == "" {
		return nil, nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxMessageContentLen {
		return nil, nil, models.NewValidationError("Message too long (max 10000 characters)")
	}

	conv, err := s.EnsureDirectConversation(ctx, in.UserID, in.RecipientID)
	if err != nil {
		return nil, nil, err
	}

	convID := conv.ID
	msg := &models.Message{
		ConversationID: &convID,
		SenderID:       in.UserID,
		Content:        in.Content,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, nil, err
	}
	if err := s.chatRepo.UpdateLastRead(ctx, convID, in.UserID); err != nil {
		return nil, nil, err
	}

	return msg, conv, nil
}

// GetMessagesForUser returns messages in a conversation the user belongs to,
// oldest first.
func (s *ChatService) GetMessagesForUser(ctx context.Context, convID, userID uint, limit, offset int) ([]*models.Message, error) {
	member, err := s.chatRepo.IsParticipant(ctx, convID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, models.NewUnauthorizedError("You are not a participant in this conversation")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	messages, err := s.chatRepo.GetConversationMessages(ctx, convID, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.chatRepo.UpdateLastRead(ctx, convID, userID); err != nil {
		return nil, err
	}
	return messages, nil
}
