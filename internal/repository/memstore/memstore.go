// Package memstore is an in-memory profile and connection store with the
// same semantics as the gorm repositories: one record per unordered pair and
// a version check on save. Used by service tests and local tooling.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/oggyb/homies/internal/domain"
	svcErr "github.com/oggyb/homies/internal/errors"
	"github.com/oggyb/homies/internal/relationship"
)

// Users is a profile store backed by a map.
type Users struct {
	mu    sync.RWMutex
	users map[uint64]domain.User
}

// NewUsers returns a store holding users.
func NewUsers(users ...domain.User) *Users {
	s := &Users{users: make(map[uint64]domain.User, len(users))}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

// Put inserts or replaces a user.
func (s *Users) Put(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Users) GetUser(ctx context.Context, id uint64) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, svcErr.Translate(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: user %d", svcErr.ErrNotFound, id)
	}
	return u, nil
}

func (s *Users) ListCandidates(ctx context.Context, excludeID uint64, search string) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, svcErr.Translate(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for id, u := range s.users {
		if id != excludeID && u.MatchesSearch(search) {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b domain.User) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// Connections is a connection store backed by a map keyed by canonical pair.
type Connections struct {
	mu     sync.Mutex
	nextID uint64
	byPair map[domain.Pair]*domain.Connection
}

// NewConnections returns an empty store.
func NewConnections() *Connections {
	return &Connections{byPair: make(map[domain.Pair]*domain.Connection)}
}

func (s *Connections) FindByPair(ctx context.Context, pair domain.Pair) (*domain.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, svcErr.Translate(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byPair[pair]
	if !ok {
		return nil, fmt.Errorf("%w: pair %s", svcErr.ErrNoConnection, pair)
	}
	return c.Clone(), nil
}

func (s *Connections) Create(ctx context.Context, c *domain.Connection) (*domain.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, svcErr.Translate(err)
	}
	pair := c.Pair()
	if pair.Low == pair.High {
		return nil, svcErr.ErrInvalidPair
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPair[pair]; ok {
		return nil, fmt.Errorf("%w: pair %s already exists", svcErr.ErrConflict, pair)
	}
	s.nextID++
	stored := c.Clone()
	stored.ID = s.nextID
	stored.Version = 1
	s.byPair[pair] = stored
	return stored.Clone(), nil
}

func (s *Connections) Save(ctx context.Context, c *domain.Connection) (*domain.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, svcErr.Translate(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byPair[c.Pair()]
	if !ok || current.ID != c.ID {
		return nil, fmt.Errorf("%w: pair %s", svcErr.ErrNoConnection, c.Pair())
	}
	if current.Version != c.Version {
		return nil, fmt.Errorf("%w: connection %d at version %d", svcErr.ErrConflict, c.ID, c.Version)
	}
	saved := c.Clone()
	saved.Version++
	s.byPair[c.Pair()] = saved
	return saved.Clone(), nil
}

func (s *Connections) ListByUser(ctx context.Context, userID uint64) ([]*domain.Connection, error) {
	return s.list(ctx, func(c *domain.Connection) bool { return c.Has(userID) })
}

func (s *Connections) ListByPredicate(ctx context.Context, userID uint64, t domain.LinkType) ([]*domain.Connection, error) {
	pred, err := relationship.PredicateFor(t)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, func(c *domain.Connection) bool { return pred(c, userID) })
}

func (s *Connections) list(ctx context.Context, keep func(*domain.Connection) bool) ([]*domain.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, svcErr.Translate(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Connection
	for _, c := range s.byPair {
		if keep(c) {
			cp := c.Clone()
			cp.Messages = nil
			out = append(out, cp)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Connection) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}
