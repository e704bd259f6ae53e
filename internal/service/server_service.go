package service

import (
	"context"

	"alphaboard/internal/models"
	"alphaboard/internal/repository"
)

// ServerService handles community servers: shared chat rooms users create,
// join, and talk in.
type ServerService struct {
	serverRepo repository.ServerRepository
	chatRepo   repository.ChatRepository
	isAdmin    func(ctx context.Context, userID uint) (bool, error)
}

type CreateServerInput struct {
	UserID      uint
	Name        string
	Description string
	ImageURL    string
}

type SendServerMessageInput struct {
	UserID   uint
	ServerID uint
	Content  string
}

func NewServerService(
	serverRepo repository.ServerRepository,
	chatRepo repository.ChatRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *ServerService {
	return &ServerService{
		serverRepo: serverRepo,
		chatRepo:   chatRepo,
		isAdmin:    isAdmin,
	}
}

func (s *ServerService) CreateServer(ctx context.Context, in CreateServerInput) (*models.Server, error) {
	if in.Name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if len(in.Name) > 120 {
		return nil, models.NewValidationError("Name too long (max 120 characters)")
	}

	server := &models.Server{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		OwnerID:     in.UserID,
	}
	if err := s.serverRepo.Create(ctx, server); err != nil {
		return nil, err
	}
	return s.serverRepo.GetByID(ctx, server.ID)
}

func (s *ServerService) GetServer(ctx context.Context, id uint) (*models.Server, error) {
	return s.serverRepo.GetByID(ctx, id)
}

func (s *ServerService) ListServers(ctx context.Context, limit, offset int) ([]*models.Server, error) {
	return s.serverRepo.List(ctx, limit, offset)
}

func (s *ServerService) ListUserServers(ctx context.Context, userID uint) ([]*models.Server, error) {
	return s.serverRepo.ListForUser(ctx, userID)
}

func (s *ServerService) JoinServer(ctx context.Context, serverID, userID uint) error {
	if _, err := s.serverRepo.GetByID(ctx, serverID); err != nil {
		return err
	}
	return s.serverRepo.AddMember(ctx, serverID, userID, models.ServerRoleMember)
}

func (s *ServerService) LeaveServer(ctx context.Context, serverID, userID uint) error {
	member, err := s.serverRepo.GetMember(ctx, serverID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return models.NewValidationError("You are not a member of this server")
	}
	if member.Role == models.ServerRoleOwner {
		return models.NewValidationError("The owner cannot leave their own server")
	}
	return s.serverRepo.RemoveMember(ctx, serverID, userID)
}

func (s *ServerService) ListMembers(ctx context.Context, serverID uint) ([]*models.ServerMember, error) {
	if _, err := s.serverRepo.GetByID(ctx, serverID); err != nil {
		return nil, err
	}
	return s.serverRepo.ListMembers(ctx, serverID)
}

// DeleteServer removes a server. Only the owner or a platform admin may do it.
func (s *ServerService) DeleteServer(ctx context.Context, serverID, userID uint) error {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return err
	}
	if server.OwnerID != userID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("Only the owner can delete a server")
		}
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("Only the owner can delete a server")
		}
	}
	return s.serverRepo.Delete(ctx, serverID)
}

// SendMessage posts a chat message into a server room. Sender must be a member.
func (s *ServerService) SendMessage(ctx context.Context, in SendServerMessageInput) (*models.Message, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxMessageContentLen {
		return nil, models.NewValidationError("Message too long (max 10000 characters)")
	}

	member, err := s.serverRepo.GetMember(ctx, in.ServerID, in.UserID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, models.NewForbiddenError("Join the server before posting")
	}

	serverID := in.ServerID
	msg := &models.Message{
		ServerID: &serverID,
		SenderID: in.UserID,
		Content:  in.Content,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// GetMessages returns recent messages in a server room, oldest first.
func (s *ServerService) GetMessages(ctx context.Context, serverID, userID uint, limit, offset int) ([]*models.Message, error) {
	member, err := s.serverRepo.GetMember(ctx, serverID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, models.NewForbiddenError("Join the server to read its messages")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.chatRepo.GetServerMessages(ctx, serverID, limit, offset)
}
