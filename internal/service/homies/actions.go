package homies

import (
	"context"
	"errors"
	"fmt"

	"github.com/oggyb/homies/internal/domain"
	svcErr "github.com/oggyb/homies/internal/errors"
	"github.com/oggyb/homies/internal/events"
	"github.com/oggyb/homies/internal/logger"
	"github.com/oggyb/homies/internal/relationship"
)

// Action names, used as metric labels and log keys.
const (
	ActionAddFavorite    = "add_favorite"
	ActionRemoveFavorite = "remove_favorite"
	ActionBlock          = "block"
	ActionRemoveMatched  = "remove_matched"
)

// ActionResult is the state of a connection after an action, seen by the actor.
type ActionResult struct {
	ConnectionID uint64
	Relationship relationship.Type
	MyStatus     domain.Status
	TheirStatus  domain.Status
}

// Matched reports whether the action left the pair matched.
func (r ActionResult) Matched() bool {
	return r.Relationship == relationship.TypeMatched
}

type transition func(c *domain.Connection, actor uint64) (*domain.Connection, error)

// action describes one relationship mutation.
//   - apply runs on an existing connection.
//   - onCreate runs on a connection created for this action; nil means the
//     action needs an existing connection.
type action struct {
	name     string
	apply    transition
	onCreate transition
}

var (
	addFavorite    = action{name: ActionAddFavorite, apply: relationship.AddFavorite, onCreate: relationship.AddFavorite}
	removeFavorite = action{name: ActionRemoveFavorite, apply: relationship.RemoveFavorite, onCreate: relationship.Ignore}
	block          = action{name: ActionBlock, apply: relationship.Block, onCreate: relationship.Block}
	removeMatched  = action{name: ActionRemoveMatched, apply: relationship.RemoveMatched}
)

// AddFavorite marks targetID as a favorite of actorID. Mutual favorites
// become a match and emit connection.matched.
//
// Example:
//
//	res, err := svc.AddFavorite(ctx, 1, 2)
//	if res.Matched() { ... }
func (s *Service) AddFavorite(ctx context.Context, actorID, targetID uint64) (ActionResult, error) {
	before := relationship.TypeNone
	res, err := s.mutate(ctx, addFavorite, actorID, targetID, func(prev *domain.Connection) {
		before = relationship.Derive(prev)
	})
	if err == nil && before != relationship.TypeMatched && res.Matched() {
		s.publish(ctx, events.New(events.TypeMatched, res.ConnectionID, actorID, targetID, s.now()))
	}
	return res, err
}

// RemoveFavorite is the ignore action: it withdraws a pending favorite,
// declines an admirer or reaffirms a mutual ignore. With no connection yet
// it records a plain ignore.
func (s *Service) RemoveFavorite(ctx context.Context, actorID, targetID uint64) (ActionResult, error) {
	return s.mutate(ctx, removeFavorite, actorID, targetID, nil)
}

// Block blocks targetID for good. The pair disappears from every feed and
// list of both users.
func (s *Service) Block(ctx context.Context, actorID, targetID uint64) (ActionResult, error) {
	res, err := s.mutate(ctx, block, actorID, targetID, nil)
	if err == nil {
		s.publish(ctx, events.New(events.TypeBlocked, res.ConnectionID, actorID, targetID, s.now()))
	}
	return res, err
}

// RemoveMatched un-matches a matched pair.
func (s *Service) RemoveMatched(ctx context.Context, actorID, targetID uint64) (ActionResult, error) {
	return s.mutate(ctx, removeMatched, actorID, targetID, nil)
}

// mutate is the read-modify-write shared by every action.
//
// Behavior:
//  1. Rejects self-actions and unknown users.
//  2. Loads the pair's connection. A missing or none/none connection takes
//     the action's create-time transition, when it has one.
//  3. Writes the new statuses in one insert or one versioned save.
//  4. Invalidates both users' admirer counts.
//
// observe, when set, sees the connection before the transition (nil if absent).
func (s *Service) mutate(ctx context.Context, a action, actorID, targetID uint64, observe func(prev *domain.Connection)) (res ActionResult, err error) {
	log := logger.ForUser(s.log, actorID).With("action", a.name, "target", targetID)
	log.Debug("action called")
	defer func() { s.metrics.Action(a.name, err) }()

	if actorID == targetID {
		return ActionResult{}, svcErr.ErrInvalidPair
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.requireUsers(ctx, actorID, targetID); err != nil {
		return ActionResult{}, err
	}

	pair := domain.NewPair(actorID, targetID)
	c, err := s.findConnection(ctx, pair)
	if err != nil {
		log.Error("FindByPair failed", "err", err)
		return ActionResult{}, err
	}
	if observe != nil {
		observe(c.Clone())
	}

	var saved *domain.Connection
	if relationship.Derive(c) == relationship.TypeNone {
		saved, err = s.firstTransition(ctx, a, c, pair, actorID)
	} else {
		saved, err = s.applyAndSave(ctx, a.apply, c, actorID)
	}
	if err != nil {
		if !errors.Is(err, svcErr.ErrConflict) && !errors.Is(err, svcErr.ErrInvalidState) && !errors.Is(err, svcErr.ErrNotFound) {
			log.Error("store connection failed", "err", err)
		}
		return ActionResult{}, err
	}

	s.invalidate(ctx, actorID, targetID)

	res = resultFor(saved, actorID)
	log.Debug("action applied", "relationship", res.Relationship, "connection_id", res.ConnectionID)
	return res, nil
}

// requireUsers fails with ErrNotFound when any of ids is not a known user.
func (s *Service) requireUsers(ctx context.Context, ids ...uint64) error {
	for _, id := range ids {
		if _, err := s.profiles.GetUser(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func resultFor(c *domain.Connection, actorID uint64) ActionResult {
	return ActionResult{
		ConnectionID: c.ID,
		Relationship: relationship.Derive(c),
		MyStatus:     c.StatusOf(actorID),
		TheirStatus:  c.StatusOf(c.Counterpart(actorID)),
	}
}

// firstTransition runs a's create-time transition on a pair without a
// decision yet. A missing connection is inserted already carrying the new
// statuses; an existing none/none row is saved with a version check.
func (s *Service) firstTransition(ctx context.Context, a action, c *domain.Connection, pair domain.Pair, actorID uint64) (*domain.Connection, error) {
	if a.onCreate == nil {
		return nil, fmt.Errorf("%w: users %d and %d have no connection", svcErr.ErrInvalidState, pair.Low, pair.High)
	}
	if c != nil {
		return s.applyAndSave(ctx, a.onCreate, c, actorID)
	}
	next, err := a.onCreate(domain.NewConnection(pair, actorID), actorID)
	if err != nil {
		return nil, err
	}
	return s.connections.Create(ctx, next)
}

func (s *Service) applyAndSave(ctx context.Context, apply transition, c *domain.Connection, actorID uint64) (*domain.Connection, error) {
	next, err := apply(c, actorID)
	if err != nil {
		return nil, err
	}
	return s.connections.Save(ctx, next)
}
