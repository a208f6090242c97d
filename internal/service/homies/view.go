package homies

import (
	"context"

	"github.com/oggyb/homies/internal/domain"
	svcErr "github.com/oggyb/homies/internal/errors"
	"github.com/oggyb/homies/internal/logger"
	"github.com/oggyb/homies/internal/visibility"
)

// Homie is one profile seen by a viewer, with the chat history of the pair.
type Homie struct {
	View              visibility.View
	Messages          []domain.Message
	HasUnreadMessages bool // unread by the viewer
}

// GetHomie returns homieID's profile as viewerID may see it.
func (s *Service) GetHomie(ctx context.Context, viewerID, homieID uint64) (Homie, error) {
	log := logger.ForUser(s.log, viewerID)
	log.Debug("GetHomie called", "homie", homieID)

	if viewerID == homieID {
		return Homie{}, svcErr.ErrInvalidPair
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	viewer, err := s.profiles.GetUser(ctx, viewerID)
	if err != nil {
		return Homie{}, err
	}
	homie, err := s.profiles.GetUser(ctx, homieID)
	if err != nil {
		return Homie{}, err
	}
	c, err := s.findConnection(ctx, domain.NewPair(viewerID, homieID))
	if err != nil {
		log.Error("FindByPair failed", "err", err)
		return Homie{}, err
	}

	h := Homie{View: visibility.ExposedFields(viewer, homie, c, s.now())}
	if c != nil {
		h.Messages = c.Messages
		h.HasUnreadMessages = c.HasUnreadMessages && c.UnreadFor == viewerID
	}
	return h, nil
}
