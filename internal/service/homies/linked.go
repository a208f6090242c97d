package homies

import (
	"context"

	"github.com/oggyb/homies/internal/domain"
	"github.com/oggyb/homies/internal/logger"
	"github.com/oggyb/homies/internal/utils/pagination"
	"github.com/oggyb/homies/internal/visibility"
)

// LinkedPage is one page of a linked list. NextToken is empty on the last page.
type LinkedPage struct {
	Items     []visibility.View
	NextToken string
}

// ListLinked returns the counterparts that fall in linkType for userID,
// ordered by counterpart id.
//
// Behavior:
//   - search filters by first name, last name or email (substring, case-insensitive).
//   - Blocked pairs never show up.
//   - Nothing matching is an empty slice, not an error.
//
// Example:
//
//	views, err := svc.ListLinked(ctx, 1, domain.LinkMatched, "ann")
func (s *Service) ListLinked(ctx context.Context, userID uint64, linkType domain.LinkType, search string) ([]visibility.View, error) {
	log := logger.ForUser(s.log, userID)
	log.Debug("ListLinked called", "link_type", linkType, "search", search)

	if _, err := domain.ParseLinkType(string(linkType)); err != nil {
		return nil, err
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	me, err := s.profiles.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	conns, err := s.connections.ListByPredicate(ctx, userID, linkType)
	if err != nil {
		log.Error("ListByPredicate failed", "err", err)
		return nil, err
	}
	views := []visibility.View{}
	if len(conns) == 0 {
		return views, nil
	}

	byCounterpart := make(map[uint64]*domain.Connection, len(conns))
	for _, c := range conns {
		byCounterpart[c.Counterpart(userID)] = c
	}

	// ListCandidates applies search and returns users by id.
	users, err := s.profiles.ListCandidates(ctx, userID, search)
	if err != nil {
		log.Error("ListCandidates failed", "err", err)
		return nil, err
	}
	now := s.now()
	for _, u := range users {
		if c, ok := byCounterpart[u.ID]; ok {
			views = append(views, visibility.ExposedFields(me, u, c, now))
		}
	}

	log.Debug("ListLinked result", "link_type", linkType, "count", len(views))
	return views, nil
}

// MaxPageSize caps one ListLinkedPage page.
const MaxPageSize = 100

// ListLinkedPage is ListLinked with a cursor. pageSize <= 0 uses the
// configured default; larger values are capped at MaxPageSize.
func (s *Service) ListLinkedPage(ctx context.Context, userID uint64, linkType domain.LinkType, search, pageToken string, pageSize int) (LinkedPage, error) {
	cursor, err := pagination.Decode(pageToken)
	if err != nil {
		return LinkedPage{}, err
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	all, err := s.ListLinked(ctx, userID, linkType, search)
	if err != nil {
		return LinkedPage{}, err
	}

	start := 0
	for start < len(all) && all[start].ID <= cursor.AfterID {
		start++
	}
	end := min(start+pageSize, len(all))

	page := LinkedPage{Items: all[start:end]}
	if end < len(all) {
		token, err := pagination.Encode(pagination.Cursor{AfterID: all[end-1].ID})
		if err != nil {
			return LinkedPage{}, err
		}
		page.NextToken = token
	}
	return page, nil
}

// CountAdmirers returns how many users favorited userID without an answer.
// Cache-first strategy:
//  1. Attempts to read from Redis (admirers:count:userID), refreshing the TTL.
//  2. On a miss or cache failure, counts in the store.
//  3. Writes the fresh count back with a 1h TTL.
func (s *Service) CountAdmirers(ctx context.Context, userID uint64) (int64, error) {
	log := logger.ForUser(s.log, userID)
	log.Debug("CountAdmirers called")

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if s.cache != nil {
		n, ok, err := s.cache.GetAdmirerCount(ctx, userID)
		if err != nil {
			log.Warn("admirer count cache read failed", "err", err)
		} else if ok {
			return n, nil
		}
	}

	if _, err := s.profiles.GetUser(ctx, userID); err != nil {
		return 0, err
	}
	conns, err := s.connections.ListByPredicate(ctx, userID, domain.LinkAdmirers)
	if err != nil {
		log.Error("ListByPredicate failed", "err", err)
		return 0, err
	}
	count := int64(len(conns))

	if s.cache != nil {
		if err := s.cache.SetAdmirerCount(ctx, userID, count); err != nil {
			log.Warn("admirer count cache write failed", "err", err)
		}
	}
	return count, nil
}

// connectionsByCounterpart indexes userID's connections by the other user.
func (s *Service) connectionsByCounterpart(ctx context.Context, userID uint64) (map[uint64]*domain.Connection, error) {
	conns, err := s.connections.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]*domain.Connection, len(conns))
	for _, c := range conns {
		out[c.Counterpart(userID)] = c
	}
	return out, nil
}
