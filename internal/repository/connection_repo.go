package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oggyb/homies/internal/db"
	"github.com/oggyb/homies/internal/domain"
	svcErr "github.com/oggyb/homies/internal/errors"
	"github.com/oggyb/homies/internal/relationship"
)

// ConnectionRepository persists connections and their messages.
// It is the only writer of the connections table.
type ConnectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new repository bound to the given DB connection.
func NewConnectionRepository(database *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: database}
}

// FindByPair loads the connection of an unordered pair with its messages.
//
// Behavior:
//   - pair is canonical, so FindByPair(NewPair(a, b)) and FindByPair(NewPair(b, a)) hit the same row.
//   - Messages are ordered by sent_at ASC.
//   - Returns ErrNoConnection when the pair never interacted.
func (r *ConnectionRepository) FindByPair(ctx context.Context, pair domain.Pair) (*domain.Connection, error) {
	var row db.Connection
	err := r.db.WithContext(ctx).
		Preload("Messages", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sent_at ASC, id ASC")
		}).
		Where("user_low_id = ? AND user_high_id = ?", pair.Low, pair.High).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: pair %s", svcErr.ErrNoConnection, pair)
	}
	if err != nil {
		return nil, svcErr.Translate(err)
	}
	return toDomainConnection(row), nil
}

// Create inserts c as a new connection, statuses included, so that the
// first action on a pair is a single write.
//
// Behavior:
//   - A concurrent create of the same pair hits the unique index → ErrConflict.
//   - Returns the stored copy at version 1.
func (r *ConnectionRepository) Create(ctx context.Context, c *domain.Connection) (*domain.Connection, error) {
	pair := c.Pair()
	if pair.Low == pair.High {
		return nil, svcErr.ErrInvalidPair
	}
	row := db.Connection{
		UserLowID:         pair.Low,
		UserHighID:        pair.High,
		LowStatus:         string(c.StatusOf(pair.Low)),
		HighStatus:        string(c.StatusOf(pair.High)),
		InitiatedBy:       c.InitiatedBy,
		HasUnreadMessages: c.HasUnreadMessages,
		UnreadFor:         c.UnreadFor,
		Version:           1,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, svcErr.Translate(err)
	}
	return toDomainConnection(row), nil
}

// Save writes the statuses and unread flag of c and appends its new messages.
//
// Behavior:
//   - Compare-and-swap on version: if another writer saved first, nothing
//     is written and ErrConflict is returned.
//   - Messages are append-only; those beyond the persisted count are inserted.
//   - Returns the saved copy with the bumped version.
func (r *ConnectionRepository) Save(ctx context.Context, c *domain.Connection) (*domain.Connection, error) {
	saved := c.Clone()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.Connection{}).
			Where("id = ? AND version = ?", c.ID, c.Version).
			Updates(map[string]any{
				"low_status":          string(c.Users[0].Status),
				"high_status":         string(c.Users[1].Status),
				"has_unread_messages": c.HasUnreadMessages,
				"unread_for":          c.UnreadFor,
				"version":             gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: connection %d at version %d", svcErr.ErrConflict, c.ID, c.Version)
		}

		var persisted int64
		if err := tx.Model(&db.Message{}).Where("connection_id = ?", c.ID).Count(&persisted).Error; err != nil {
			return err
		}
		if int(persisted) < len(c.Messages) {
			fresh := make([]db.Message, 0, len(c.Messages)-int(persisted))
			for _, m := range c.Messages[persisted:] {
				fresh = append(fresh, toDBMessage(c.ID, m))
			}
			if err := tx.Create(&fresh).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, svcErr.Translate(err)
	}
	saved.Version++
	return saved, nil
}

// ListByUser returns every connection userID is part of, without messages.
// Ordered by id ASC.
func (r *ConnectionRepository) ListByUser(ctx context.Context, userID uint64) ([]*domain.Connection, error) {
	var rows []db.Connection
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, svcErr.Translate(err)
	}
	return toDomainConnections(rows), nil
}

// ListByPredicate returns the connections that put the counterpart in one
// of userID's lists.
//
// Behavior:
//   - The status filter is pushed down to SQL from either side of the pair.
//   - Rows are re-checked with the relationship predicate, which stays the
//     single source of truth.
//   - Messages are not loaded.
func (r *ConnectionRepository) ListByPredicate(ctx context.Context, userID uint64, t domain.LinkType) ([]*domain.Connection, error) {
	pred, err := relationship.PredicateFor(t)
	if err != nil {
		return nil, err
	}
	mine, args := sideFilter(t)

	query := fmt.Sprintf("(user_low_id = ? AND %s) OR (user_high_id = ? AND %s)",
		fmt.Sprintf(mine, "low_status", "high_status"),
		fmt.Sprintf(mine, "high_status", "low_status"),
	)
	params := append(append([]any{userID}, args...), append([]any{userID}, args...)...)

	var rows []db.Connection
	if err := r.db.WithContext(ctx).Where(query, params...).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, svcErr.Translate(err)
	}

	out := make([]*domain.Connection, 0, len(rows))
	for _, c := range toDomainConnections(rows) {
		if pred(c, userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

// sideFilter returns a condition with two %s verbs (my status column, their
// status column) and its bind parameters.
func sideFilter(t domain.LinkType) (string, []any) {
	fav, none, blocked := string(domain.StatusFavorite), string(domain.StatusNone), string(domain.StatusBlocked)
	ignores := []string{string(domain.StatusIgnored), string(domain.StatusBothIgnored)}

	switch t {
	case domain.LinkMatched:
		return "%s = ? AND %s = ?", []any{fav, fav}
	case domain.LinkFavorites:
		return "%s = ? AND %s NOT IN ?", []any{fav, []string{fav, blocked}}
	case domain.LinkIgnored:
		return "%s IN ? AND %s <> ?", []any{ignores, blocked}
	default: // domain.LinkAdmirers
		return "%s = ? AND %s = ?", []any{none, fav}
	}
}

func toDomainConnections(rows []db.Connection) []*domain.Connection {
	out := make([]*domain.Connection, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainConnection(row))
	}
	return out
}
