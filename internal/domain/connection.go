package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is what one user of a connection has decided about the other.
type Status string

const (
	StatusNone        Status = ""
	StatusFavorite    Status = "favorite"
	StatusIgnored     Status = "ignored"
	StatusBlocked     Status = "blocked"
	StatusBothIgnored Status = "both_ignored"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNone, StatusFavorite, StatusIgnored, StatusBlocked, StatusBothIgnored:
		return true
	}
	return false
}

// IsIgnore reports whether s is one of the two ignore states.
func (s Status) IsIgnore() bool {
	return s == StatusIgnored || s == StatusBothIgnored
}

// Pair is an unordered pair of user ids stored in canonical order (Low < High).
type Pair struct {
	Low  uint64
	High uint64
}

// NewPair canonicalizes a and b so that NewPair(a, b) == NewPair(b, a).
func NewPair(a, b uint64) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{Low: a, High: b}
}

// Contains reports whether id is one side of the pair.
func (p Pair) Contains(id uint64) bool {
	return p.Low == id || p.High == id
}

// Other returns the side of the pair that is not id.
func (p Pair) Other(id uint64) uint64 {
	if p.Low == id {
		return p.High
	}
	return p.Low
}

func (p Pair) String() string {
	return fmt.Sprintf("%d:%d", p.Low, p.High)
}

// Slot holds one user's status inside a connection.
type Slot struct {
	UserID uint64
	Status Status
}

// Message is a single chat message embedded in a connection.
type Message struct {
	ID       uuid.UUID
	SenderID uint64
	Text     string
	SentAt   time.Time
}

// Connection is the persisted relationship between exactly two users.
// Users is always in canonical order: Users[0].UserID < Users[1].UserID.
type Connection struct {
	ID                uint64
	Users             [2]Slot
	InitiatedBy       uint64
	Messages          []Message
	HasUnreadMessages bool
	UnreadFor         uint64
	Version           uint64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewConnection returns an empty connection for pair, initiated by initiator.
func NewConnection(pair Pair, initiator uint64) *Connection {
	return &Connection{
		Users: [2]Slot{
			{UserID: pair.Low},
			{UserID: pair.High},
		},
		InitiatedBy: initiator,
	}
}

// Pair returns the canonical pair of the connection.
func (c *Connection) Pair() Pair {
	return NewPair(c.Users[0].UserID, c.Users[1].UserID)
}

// Has reports whether userID is one of the two users.
func (c *Connection) Has(userID uint64) bool {
	return c.Users[0].UserID == userID || c.Users[1].UserID == userID
}

// Slot returns a pointer to userID's slot and to the counterpart's slot.
// Both are nil when userID is not part of the connection.
func (c *Connection) Slot(userID uint64) (mine, theirs *Slot) {
	switch userID {
	case c.Users[0].UserID:
		return &c.Users[0], &c.Users[1]
	case c.Users[1].UserID:
		return &c.Users[1], &c.Users[0]
	}
	return nil, nil
}

// StatusOf returns userID's status, or StatusNone when absent.
func (c *Connection) StatusOf(userID uint64) Status {
	mine, _ := c.Slot(userID)
	if mine == nil {
		return StatusNone
	}
	return mine.Status
}

// Counterpart returns the id of the user that is not userID.
func (c *Connection) Counterpart(userID uint64) uint64 {
	return c.Pair().Other(userID)
}

// Clone returns a deep copy so that mutations never leak into a store.
func (c *Connection) Clone() *Connection {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Messages = append([]Message(nil), c.Messages...)
	return &cp
}
