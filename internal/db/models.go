package db

import (
	"time"
)

// User table. Read-only from the matching core; written by account
// management and the seeder.
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	FirstName    string    `gorm:"size:64;not null;index"`
	LastName     string    `gorm:"size:64;not null;index"`
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	Phone        string    `gorm:"uniqueIndex;size:32;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	DateOfBirth  time.Time `gorm:"not null"`
	Gender       string    `gorm:"size:16;not null"`
	City         string    `gorm:"size:64"`
	State        string    `gorm:"size:64"`
	Bio          string    `gorm:"type:text"`
	ShowUserData bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`

	Preferences Preferences `gorm:"embedded;embeddedPrefix:pref_"`
}

// Preferences are embedded in the users table with a pref_ prefix.
// NULL means "no preference".
type Preferences struct {
	Smoking   *bool
	Drinking  *bool
	Pets      *bool
	RentExact *float64
	RentMin   *float64
	RentMax   *float64
	AgeMin    *int
	AgeMax    *int
	Genders   []string `gorm:"serializer:json"`
}

// Connection is the relationship between two users.
//
// Unique index: (user_low_id, user_high_id)
//   - user_low_id < user_high_id always, so an unordered pair maps to one row.
//
// Indexes:
//   - idx_connection_low_status(user_low_id, low_status, high_status)
//   - idx_connection_high_status(user_high_id, high_status, low_status)
//     Serve the per-user list queries from either side of the pair.
//
// Fields:
//   - LowStatus / HighStatus: what each side decided about the other ("" = none).
//   - InitiatedBy: the user whose action created the row.
//   - Version: bumped on every save; updates are compare-and-swap on it.
type Connection struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement"`
	UserLowID         uint64    `gorm:"not null;uniqueIndex:idx_connection_pair,priority:1;index:idx_connection_low_status,priority:1"`
	UserHighID        uint64    `gorm:"not null;uniqueIndex:idx_connection_pair,priority:2;index:idx_connection_high_status,priority:1"`
	LowStatus         string    `gorm:"size:16;not null;default:'';index:idx_connection_low_status,priority:2;index:idx_connection_high_status,priority:3"`
	HighStatus        string    `gorm:"size:16;not null;default:'';index:idx_connection_high_status,priority:2;index:idx_connection_low_status,priority:3"`
	InitiatedBy       uint64    `gorm:"not null"`
	HasUnreadMessages bool      `gorm:"not null;default:false"`
	UnreadFor         uint64    `gorm:"not null;default:0"`
	Version           uint64    `gorm:"not null;default:1"`
	Messages          []Message `gorm:"foreignKey:ConnectionID"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

// Message is append-only chat history of a connection.
type Message struct {
	ID           string    `gorm:"primaryKey;size:36"`
	ConnectionID uint64    `gorm:"not null;index:idx_message_connection_sent,priority:1"`
	SenderID     uint64    `gorm:"not null"`
	Text         string    `gorm:"type:text;not null"`
	SentAt       time.Time `gorm:"not null;index:idx_message_connection_sent,priority:2"`
}

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{&User{}, &Connection{}, &Message{}}
}
