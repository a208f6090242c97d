package relationship

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oggyb/homies/internal/domain"
	svcErr "github.com/oggyb/homies/internal/errors"
)

// CanMessage decides whether sender may append a message to c.
//
// Matched pairs always may. In a pending favorite only the favoriter may
// write, to encourage the passive party to reciprocate. Everything else is
// forbidden.
func CanMessage(c *domain.Connection, sender uint64) error {
	if c == nil {
		return svcErr.ErrNoConnection
	}
	if !c.Has(sender) {
		return fmt.Errorf("%w: user %d is not part of connection %s", svcErr.ErrNoConnection, sender, c.Pair())
	}

	switch t := Derive(c); t {
	case TypeMatched:
		return nil
	case TypePendingFavorite:
		if Favoriter(c) == sender {
			return nil
		}
		return fmt.Errorf("%w: user %d has not answered the favorite yet", svcErr.ErrForbidden, sender)
	default:
		return fmt.Errorf("%w: cannot message a %s connection", svcErr.ErrForbidden, t)
	}
}

// AppendMessage runs the gate, then appends the message and flags it unread
// for the recipient.
func AppendMessage(c *domain.Connection, sender uint64, text string, now time.Time) (*domain.Connection, domain.Message, error) {
	if err := CanMessage(c, sender); err != nil {
		return nil, domain.Message{}, err
	}
	msg := domain.Message{
		ID:       uuid.New(),
		SenderID: sender,
		Text:     strings.TrimSpace(text),
		SentAt:   now.UTC(),
	}
	c.Messages = append(c.Messages, msg)
	c.HasUnreadMessages = true
	c.UnreadFor = c.Counterpart(sender)
	return c, msg, nil
}

// MarkRead clears the unread flag when reader is the one it was raised for.
// It returns false when nothing changed.
func MarkRead(c *domain.Connection, reader uint64) bool {
	if c == nil || !c.HasUnreadMessages || c.UnreadFor != reader {
		return false
	}
	c.HasUnreadMessages = false
	c.UnreadFor = 0
	return true
}
