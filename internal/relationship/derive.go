// Package relationship holds the pure rules over a loaded connection:
// the derived relationship type, the status transitions, the link
// predicates and the messaging gate. Nothing here touches a store.
package relationship

import "github.com/oggyb/homies/internal/domain"

// Type is the relationship derived from the two slot statuses. It is never stored.
type Type int

const (
	TypeNone Type = iota
	TypePendingFavorite
	TypeMatched
	TypeMutuallyIgnored
	TypeDeclined
	TypeBlocked
)

func (t Type) String() string {
	switch t {
	case TypePendingFavorite:
		return "pending_favorite"
	case TypeMatched:
		return "matched"
	case TypeMutuallyIgnored:
		return "mutually_ignored"
	case TypeDeclined:
		return "declined"
	case TypeBlocked:
		return "blocked"
	default:
		return "none"
	}
}

// Derive computes the relationship type of c. A nil connection is TypeNone.
//
// Blocked wins over everything else, so a single block hides the pair in
// both directions.
func Derive(c *domain.Connection) Type {
	if c == nil {
		return TypeNone
	}
	return deriveStatuses(c.Users[0].Status, c.Users[1].Status)
}

func deriveStatuses(a, b domain.Status) Type {
	switch {
	case a == domain.StatusBlocked || b == domain.StatusBlocked:
		return TypeBlocked
	case a == domain.StatusFavorite && b == domain.StatusFavorite:
		return TypeMatched
	case a == domain.StatusFavorite && b == domain.StatusNone,
		a == domain.StatusNone && b == domain.StatusFavorite:
		return TypePendingFavorite
	case a.IsIgnore() && b.IsIgnore():
		return TypeMutuallyIgnored
	case a == domain.StatusNone && b == domain.StatusNone:
		return TypeNone
	default:
		return TypeDeclined
	}
}

// Favoriter returns the active party of a pending favorite, or 0 if the
// connection is not pending.
func Favoriter(c *domain.Connection) uint64 {
	if Derive(c) != TypePendingFavorite {
		return 0
	}
	if c.Users[0].Status == domain.StatusFavorite {
		return c.Users[0].UserID
	}
	return c.Users[1].UserID
}
