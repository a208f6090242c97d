package homies

import (
	"context"
	"fmt"

	svcErr "github.com/oggyb/homies/internal/errors"
	"github.com/oggyb/homies/internal/logger"
	"github.com/oggyb/homies/internal/metrics"
	"github.com/oggyb/homies/internal/relationship"
	"github.com/oggyb/homies/internal/scoring"
	"github.com/oggyb/homies/internal/visibility"
)

// FeedCard is the single candidate shown to a user.
type FeedCard struct {
	User  visibility.View
	Score int
}

// NextCandidate returns the best-scoring candidate for userID.
//
// Behavior:
//   - Skips userID, blocked pairs and anyone userID already acted on.
//   - Admirers that userID has not answered stay eligible.
//   - Ties on score go to the lowest user id.
//   - An empty feed is ErrNoCandidate, not a failure.
//
// Read-only.
func (s *Service) NextCandidate(ctx context.Context, userID uint64) (card FeedCard, err error) {
	log := logger.ForUser(s.log, userID)
	log.Debug("NextCandidate called")
	defer func() {
		switch {
		case err == nil:
			s.metrics.Feed(metrics.ResultOK)
		case svcErr.IsNoCandidate(err):
			s.metrics.Feed(metrics.ResultEmpty)
		default:
			s.metrics.Feed(metrics.ResultError)
		}
	}()

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	me, err := s.profiles.GetUser(ctx, userID)
	if err != nil {
		return FeedCard{}, err
	}
	users, err := s.profiles.ListCandidates(ctx, userID, "")
	if err != nil {
		log.Error("ListCandidates failed", "err", err)
		return FeedCard{}, err
	}
	conns, err := s.connectionsByCounterpart(ctx, userID)
	if err != nil {
		log.Error("ListByUser failed", "err", err)
		return FeedCard{}, err
	}

	now := s.now()
	candidates := make([]scoring.Candidate, 0, len(users))
	for _, u := range users {
		if u.ID == userID || !relationship.IsFeedEligible(conns[u.ID], userID) {
			continue
		}
		candidates = append(candidates, scoring.Candidate{User: u, Age: scoring.Age(u.DateOfBirth, now)})
	}
	if len(candidates) == 0 {
		return FeedCard{}, fmt.Errorf("%w for user %d", svcErr.ErrNoCandidate, userID)
	}

	top := scoring.Rank(me.Preferences, candidates)[0]
	log.Debug("NextCandidate result", "candidate", top.User.ID, "score", top.Score, "pool", len(candidates))

	return FeedCard{
		User:  visibility.ExposedFields(me, top.User, conns[top.User.ID], now),
		Score: top.Score,
	}, nil
}
