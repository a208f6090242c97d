package homies

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/oggyb/homies/internal/domain"
	svcErr "github.com/oggyb/homies/internal/errors"
	"github.com/oggyb/homies/internal/events"
	"github.com/oggyb/homies/internal/logger"
	"github.com/oggyb/homies/internal/relationship"
)

// SendMessage appends a message from senderID to the pair's connection.
//
// Behavior:
//   - text is trimmed and must hold 1..max runes.
//   - The pair must have a connection the gate allows the sender to write to.
//   - The recipient gets the unread flag; message.sent is emitted.
func (s *Service) SendMessage(ctx context.Context, senderID, recipientID uint64, text string) (domain.Message, error) {
	log := logger.ForUser(s.log, senderID)
	log.Debug("SendMessage called", "recipient", recipientID)

	text = strings.TrimSpace(text)
	switch n := utf8.RuneCountInString(text); {
	case n == 0:
		return domain.Message{}, svcErr.InvalidArgumentf("message text is empty")
	case n > s.maxMessageLength:
		return domain.Message{}, svcErr.InvalidArgumentf("message text is %d characters, limit is %d", n, s.maxMessageLength)
	}
	if senderID == recipientID {
		return domain.Message{}, svcErr.ErrInvalidPair
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.requireUsers(ctx, senderID, recipientID); err != nil {
		return domain.Message{}, err
	}
	c, err := s.connections.FindByPair(ctx, domain.NewPair(senderID, recipientID))
	if err != nil {
		if !errors.Is(err, svcErr.ErrNoConnection) {
			log.Error("FindByPair failed", "err", err)
		}
		return domain.Message{}, err
	}

	next, msg, err := relationship.AppendMessage(c, senderID, text, s.now())
	if err != nil {
		return domain.Message{}, err
	}
	saved, err := s.connections.Save(ctx, next)
	if err != nil {
		if !errors.Is(err, svcErr.ErrConflict) {
			log.Error("Save connection failed", "err", err)
		}
		return domain.Message{}, err
	}

	s.metrics.MessageSent()
	s.publish(ctx, events.New(events.TypeMessageSent, saved.ID, senderID, recipientID, msg.SentAt))
	return msg, nil
}

// MarkRead clears the unread flag of the pair when userID is the one it was
// raised for. It reports whether anything changed.
func (s *Service) MarkRead(ctx context.Context, userID, counterpartID uint64) (bool, error) {
	logger.ForUser(s.log, userID).Debug("MarkRead called", "counterpart", counterpartID)

	if userID == counterpartID {
		return false, svcErr.ErrInvalidPair
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	c, err := s.connections.FindByPair(ctx, domain.NewPair(userID, counterpartID))
	if err != nil {
		return false, err
	}
	if !relationship.MarkRead(c, userID) {
		return false, nil
	}
	if _, err := s.connections.Save(ctx, c); err != nil {
		return false, err
	}
	return true, nil
}
