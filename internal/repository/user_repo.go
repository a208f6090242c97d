package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/oggyb/homies/internal/db"
	"github.com/oggyb/homies/internal/domain"
	svcErr "github.com/oggyb/homies/internal/errors"
)

// UserRepository is the read side of the profile store.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// GetUser loads one profile. Returns ErrNotFound for an unknown id.
func (r *UserRepository) GetUser(ctx context.Context, id uint64) (domain.User, error) {
	var row db.User
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, fmt.Errorf("%w: user %d", svcErr.ErrNotFound, id)
	}
	if err != nil {
		return domain.User{}, svcErr.Translate(err)
	}
	return toDomainUser(row), nil
}

// ListCandidates returns every user except excludeID, ordered by id ASC.
//
// Behavior:
//   - search, when not blank, keeps users whose first name, last name or
//     email contains it, case-insensitively.
//   - LIKE wildcards in search are matched literally.
func (r *UserRepository) ListCandidates(ctx context.Context, excludeID uint64, search string) ([]domain.User, error) {
	query := r.db.WithContext(ctx).Where("id <> ?", excludeID)

	if s := strings.TrimSpace(search); s != "" {
		like := "%" + escapeLike(strings.ToLower(s)) + "%"
		query = query.Where(
			`LOWER(first_name) LIKE ? ESCAPE '!' OR LOWER(last_name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!'`,
			like, like, like,
		)
	}

	var rows []db.User
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, svcErr.Translate(err)
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, toDomainUser(row))
	}
	return users, nil
}

// escapeLike uses ! as the escape character; backslash means different
// things to MySQL and SQLite string literals.
func escapeLike(s string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
}
