// Package likes coordinates optimistic like/unlike updates against the
// authoritative store: local tentative state is mutated immediately and
// committed or rolled back by the result of the store round-trip.
package likes

import (
	"context"
	"errors"
	"sync"

	"alphaboard/internal/models"
)

// State is the lifecycle of the most recent mutation on a coordinator.
type State int

const (
	// StateIdle means no mutation has run since the last sync.
	StateIdle State = iota
	// StatePending means a mutation is in flight; further toggles are
	// ignored and external syncs are deferred.
	StatePending
	// StateCommitted means the last mutation was confirmed by the store.
	StateCommitted
	// StateRolledBack means the last mutation failed and the optimistic
	// state was restored to its pre-call values.
	StateRolledBack
)

// Store is the authoritative like store surface the coordinator reconciles
// against. Insert returns models.ErrAlreadyLiked on a duplicate row.
type Store interface {
	Insert(ctx context.Context, userID, ideaID uint) error
	Remove(ctx context.Context, userID, ideaID uint) error
	Fetch(ctx context.Context, userID, ideaID uint) (liked bool, count int, err error)
}

// Coordinator tracks the optimistic liked/count pair for one (user, idea)
// and serializes its mutations: while an update is in flight, repeated
// toggles are single-flight no-ops, which covers the rapid double-click
// case. Cross-process races resolve through constraint-violation
// reconciliation rather than errors.
type Coordinator struct {
	mu     sync.Mutex
	store  Store
	userID uint
	ideaID uint

	liked bool
	count int
	state State
}

// NewCoordinator creates a coordinator seeded with the authoritative
// liked/count pair.
func NewCoordinator(store Store, userID, ideaID uint, liked bool, count int) *Coordinator {
	return &Coordinator{
		store:  store,
		userID: userID,
		ideaID: ideaID,
		liked:  liked,
		count:  count,
	}
}

// Snapshot returns the current optimistic state.
func (c *Coordinator) Snapshot() (liked bool, count int, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liked, c.count, c.state
}

// Sync overwrites the optimistic state with an authoritative signal. The
// overwrite is skipped while a local update is in flight: local optimism
// never outlives its own round-trip, but is not clobbered mid-flight.
func (c *Coordinator) Sync(liked bool, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StatePending {
		return
	}
	c.liked = liked
	c.count = count
	c.state = StateIdle
}

// Like optimistically marks the idea liked and inserts the like row.
// Re-entry while an update is in flight, or when already liked, is a no-op.
// A duplicate-row response is reconciled by re-reading authoritative state;
// any other store error rolls the optimistic values back and is returned.
func (c *Coordinator) Like(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StatePending || c.liked {
		c.mu.Unlock()
		return nil
	}
	prevLiked, prevCount := c.liked, c.count
	c.liked = true
	c.count++
	c.state = StatePending
	c.mu.Unlock()

	err := c.store.Insert(ctx, c.userID, c.ideaID)

	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case err == nil:
		c.state = StateCommitted
		return nil
	case errors.Is(err, models.ErrAlreadyLiked):
		return c.reconcileLocked(ctx)
	default:
		c.liked = prevLiked
		c.count = prevCount
		c.state = StateRolledBack
		return err
	}
}

// Unlike is the symmetric rollback-on-failure counterpart of Like.
func (c *Coordinator) Unlike(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StatePending || !c.liked {
		c.mu.Unlock()
		return nil
	}
	prevLiked, prevCount := c.liked, c.count
	c.liked = false
	c.count--
	c.state = StatePending
	c.mu.Unlock()

	err := c.store.Remove(ctx, c.userID, c.ideaID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.liked = prevLiked
		c.count = prevCount
		c.state = StateRolledBack
		return err
	}
	c.state = StateCommitted
	return nil
}

// reconcileLocked re-reads authoritative state after a duplicate-row
// response. The duplicate is not an error from the caller's point of view.
func (c *Coordinator) reconcileLocked(ctx context.Context) error {
	liked, count, err := c.store.Fetch(ctx, c.userID, c.ideaID)
	if err != nil {
		// Keep the optimistic values; the next sync will settle them.
		c.state = StateCommitted
		return nil
	}
	c.liked = liked
	c.count = count
	c.state = StateCommitted
	return nil
}
