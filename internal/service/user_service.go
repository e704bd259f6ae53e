package service

import (
	"context"

	"alphaboard/internal/models"
	"alphaboard/internal/repository"
)

// UserService exposes profile reads and admin checks. Credential flows are
// handled by the identity provider in front of this service.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetProfileWithIdeas(ctx context.Context, id uint, limit int) (*models.User, error) {
	return s.userRepo.GetByIDWithIdeas(ctx, id, limit)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, bio, avatar string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(bio) > 500 {
		return nil, models.NewValidationError("Bio too long (max 500 characters)")
	}
	user.Bio = bio
	user.Avatar = avatar
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// IsAdmin reports whether the user has admin privileges. Passed to services
// that gate admin overrides.
func (s *UserService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	return s.userRepo.IsAdmin(ctx, userID)
}
