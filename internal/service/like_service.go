package service

import (
	"context"
	"fmt"
	"sync"

	"alphaboard/internal/likes"
	"alphaboard/internal/models"
	"alphaboard/internal/observability"
	"alphaboard/internal/repository"
)

// LikeService fronts like/unlike with per-(user, idea) optimistic-update
// coordinators. Each coordinator applies the count change immediately,
// single-flights duplicate requests, and reconciles or rolls back when the
// database disagrees.
type LikeService struct {
	ideaRepo repository.IdeaRepository

	mu           sync.Mutex
	coordinators map[string]*likes.Coordinator
}

// LikeResult is the state reported back to the client after a like/unlike.
type LikeResult struct {
	IdeaID uint        `json:"idea_id"`
	Liked  bool        `json:"liked"`
	Count  int         `json:"likes_count"`
	State  likes.State `json:"state"`
}

func NewLikeService(ideaRepo repository.IdeaRepository) *LikeService {
	return &LikeService{
		ideaRepo:     ideaRepo,
		coordinators: make(map[string]*likes.Coordinator),
	}
}

// likeStore adapts IdeaRepository to the coordinator's store interface.
type likeStore struct {
	repo repository.IdeaRepository
}

func (s likeStore) Insert(ctx context.Context, userID, ideaID uint) error {
	return s.repo.Like(ctx, userID, ideaID)
}

func (s likeStore) Remove(ctx context.Context, userID, ideaID uint) error {
	return s.repo.Unlike(ctx, userID, ideaID)
}

func (s likeStore) Fetch(ctx context.Context, userID, ideaID uint) (bool, int, error) {
	return s.repo.LikeState(ctx, userID, ideaID)
}

// maxCoordinators bounds the coordinator cache. Entries carry no durable
// state (every hit re-seeds from the store), so the cache is simply reset
// when it fills.
const maxCoordinators = 4096

// coordinator returns the cached coordinator for (user, idea), re-seeded
// from the authoritative store so counts moved by other users since the
// last request are picked up before the toggle runs. Sync skips the
// overwrite while the coordinator has an update in flight.
func (s *LikeService) coordinator(ctx context.Context, userID, ideaID uint) (*likes.Coordinator, error) {
	key := fmt.Sprintf("%d:%d", userID, ideaID)

	s.mu.Lock()
	c, ok := s.coordinators[key]
	s.mu.Unlock()

	liked, count, err := s.ideaRepo.LikeState(ctx, userID, ideaID)
	if err != nil {
		return nil, err
	}
	if ok {
		c.Sync(liked, count)
		return c, nil
	}

	c = likes.NewCoordinator(likeStore{repo: s.ideaRepo}, userID, ideaID, liked, count)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.coordinators[key]; ok {
		// Lost the race to a concurrent request that seeded its own copy.
		return existing, nil
	}
	if len(s.coordinators) >= maxCoordinators {
		s.coordinators = make(map[string]*likes.Coordinator, maxCoordinators)
	}
	s.coordinators[key] = c
	return c, nil
}

func (s *LikeService) Like(ctx context.Context, userID, ideaID uint) (*LikeResult, error) {
	if _, err := s.ideaRepo.GetByID(ctx, ideaID, 0); err != nil {
		return nil, err
	}
	c, err := s.coordinator(ctx, userID, ideaID)
	if err != nil {
		return nil, err
	}
	if err := c.Like(ctx); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.result(ideaID, c), nil
}

func (s *LikeService) Unlike(ctx context.Context, userID, ideaID uint) (*LikeResult, error) {
	if _, err := s.ideaRepo.GetByID(ctx, ideaID, 0); err != nil {
		return nil, err
	}
	c, err := s.coordinator(ctx, userID, ideaID)
	if err != nil {
		return nil, err
	}
	if err := c.Unlike(ctx); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.result(ideaID, c), nil
}

func (s *LikeService) result(ideaID uint, c *likes.Coordinator) *LikeResult {
	liked, count, state := c.Snapshot()
	observability.LikeReconciliations.WithLabelValues(outcomeLabel(state)).Inc()
	return &LikeResult{
		IdeaID: ideaID,
		Liked:  liked,
		Count:  count,
		State:  state,
	}
}

func outcomeLabel(state likes.State) string {
	switch state {
	case likes.StateCommitted:
		return "committed"
	case likes.StateRolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}
