package relationship

import (
	"fmt"

	"github.com/oggyb/homies/internal/domain"
	svcErr "github.com/oggyb/homies/internal/errors"
)

// slots validates actor against c and returns both slots.
func slots(c *domain.Connection, actor uint64) (mine, theirs *domain.Slot, err error) {
	if c == nil {
		return nil, nil, svcErr.ErrNoConnection
	}
	if c.Users[0].UserID == c.Users[1].UserID {
		return nil, nil, svcErr.ErrInvalidPair
	}
	mine, theirs = c.Slot(actor)
	if mine == nil {
		return nil, nil, fmt.Errorf("%w: user %d is not part of connection %s", svcErr.ErrNotFound, actor, c.Pair())
	}
	return mine, theirs, nil
}

// AddFavorite sets actor's status to favorite. Applying it twice is a no-op.
// A blocked pair cannot be favorited.
func AddFavorite(c *domain.Connection, actor uint64) (*domain.Connection, error) {
	mine, _, err := slots(c, actor)
	if err != nil {
		return nil, err
	}
	if Derive(c) == TypeBlocked {
		return nil, fmt.Errorf("%w: pair %s is blocked", svcErr.ErrInvalidState, c.Pair())
	}
	mine.Status = domain.StatusFavorite
	return c, nil
}

// RemoveFavorite is the ignore action. Handled cases:
//
//   - counterpart ignored actor: actor reaffirms, status becomes both_ignored
//   - counterpart favorited actor: actor declines, status becomes ignored
//   - actor had a pending favorite: actor withdraws, status becomes ignored
//
// Any other combination is ErrInvalidState.
func RemoveFavorite(c *domain.Connection, actor uint64) (*domain.Connection, error) {
	mine, theirs, err := slots(c, actor)
	if err != nil {
		return nil, err
	}

	switch {
	case mine.Status == domain.StatusBlocked || theirs.Status == domain.StatusBlocked:
		// blocked never moves
	case theirs.Status == domain.StatusIgnored:
		mine.Status = domain.StatusBothIgnored
		return c, nil
	case theirs.Status == domain.StatusFavorite && mine.Status != domain.StatusFavorite:
		mine.Status = domain.StatusIgnored
		return c, nil
	case mine.Status == domain.StatusFavorite && theirs.Status == domain.StatusNone:
		mine.Status = domain.StatusIgnored
		return c, nil
	}

	return nil, fmt.Errorf("%w: cannot ignore with statuses %q/%q",
		svcErr.ErrInvalidState, mine.Status, theirs.Status)
}

// Ignore is the first ignore on a freshly created connection.
func Ignore(c *domain.Connection, actor uint64) (*domain.Connection, error) {
	mine, theirs, err := slots(c, actor)
	if err != nil {
		return nil, err
	}
	if mine.Status != domain.StatusNone || theirs.Status != domain.StatusNone {
		return RemoveFavorite(c, actor)
	}
	mine.Status = domain.StatusIgnored
	return c, nil
}

// Block sets actor's status to blocked, whatever it was. There is no way back.
func Block(c *domain.Connection, actor uint64) (*domain.Connection, error) {
	mine, _, err := slots(c, actor)
	if err != nil {
		return nil, err
	}
	mine.Status = domain.StatusBlocked
	return c, nil
}

// RemoveMatched un-matches a matched pair. The actor's side becomes ignored,
// so neither user gets the other back in the feed.
func RemoveMatched(c *domain.Connection, actor uint64) (*domain.Connection, error) {
	mine, _, err := slots(c, actor)
	if err != nil {
		return nil, err
	}
	if t := Derive(c); t != TypeMatched {
		return nil, fmt.Errorf("%w: pair %s is %s, not matched", svcErr.ErrInvalidState, c.Pair(), t)
	}
	mine.Status = domain.StatusIgnored
	return c, nil
}
