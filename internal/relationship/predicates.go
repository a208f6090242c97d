package relationship

import (
	"fmt"

	"github.com/oggyb/homies/internal/domain"
	svcErr "github.com/oggyb/homies/internal/errors"
)

// Predicate decides whether a connection belongs to a user's list.
type Predicate func(c *domain.Connection, userID uint64) bool

// IsMatched reports mutual favorites.
func IsMatched(c *domain.Connection, userID uint64) bool {
	return c.Has(userID) && Derive(c) == TypeMatched
}

// IsFavorite reports that userID favorited the counterpart who has not
// favorited back.
func IsFavorite(c *domain.Connection, userID uint64) bool {
	mine, theirs := c.Slot(userID)
	if mine == nil || Derive(c) == TypeBlocked {
		return false
	}
	return mine.Status == domain.StatusFavorite && theirs.Status != domain.StatusFavorite
}

// IsIgnored reports pairs that ignored each other and people userID declined.
func IsIgnored(c *domain.Connection, userID uint64) bool {
	mine, _ := c.Slot(userID)
	if mine == nil {
		return false
	}
	switch Derive(c) {
	case TypeMutuallyIgnored:
		return true
	case TypeBlocked:
		return false
	}
	return mine.Status.IsIgnore()
}

// IsAdmirer reports that the counterpart favorited userID and userID has
// not responded yet.
func IsAdmirer(c *domain.Connection, userID uint64) bool {
	mine, theirs := c.Slot(userID)
	if mine == nil {
		return false
	}
	return theirs.Status == domain.StatusFavorite && mine.Status == domain.StatusNone
}

// PredicateFor returns the predicate behind a link type.
func PredicateFor(t domain.LinkType) (Predicate, error) {
	switch t {
	case domain.LinkMatched:
		return IsMatched, nil
	case domain.LinkFavorites:
		return IsFavorite, nil
	case domain.LinkIgnored:
		return IsIgnored, nil
	case domain.LinkAdmirers:
		return IsAdmirer, nil
	}
	return nil, fmt.Errorf("%w: %q", svcErr.ErrInvalidRelationshipType, string(t))
}

// IsFeedEligible reports whether the counterpart of c may be shown in
// userID's feed: nobody blocked anybody, and the counterpart is an admirer
// waiting for userID. A nil or none/none connection is always eligible.
func IsFeedEligible(c *domain.Connection, userID uint64) bool {
	switch Derive(c) {
	case TypeNone:
		return true
	case TypeBlocked:
		return false
	}
	return IsAdmirer(c, userID)
}
