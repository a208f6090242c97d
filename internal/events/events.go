// Package events publishes relationship changes for downstream consumers
// (notifications, analytics). Publishing is best effort: callers log and
// move on when it fails.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeMatched     Type = "connection.matched"
	TypeMessageSent Type = "message.sent"
	TypeBlocked     Type = "connection.blocked"
)

// Event is the JSON payload written to the topic.
type Event struct {
	ID            uuid.UUID `json:"id"`
	Type          Type      `json:"type"`
	ConnectionID  uint64    `json:"connection_id"`
	ActorID       uint64    `json:"actor_id"`
	CounterpartID uint64    `json:"counterpart_id"`
	At            time.Time `json:"at"`
}

// New stamps an event with a fresh id.
func New(t Type, connectionID, actorID, counterpartID uint64, at time.Time) Event {
	return Event{
		ID:            uuid.New(),
		Type:          t,
		ConnectionID:  connectionID,
		ActorID:       actorID,
		CounterpartID: counterpartID,
		At:            at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() {}

// Recorder keeps published events in memory. Err, when set, is returned
// from every Publish instead of recording.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() {}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events of type t.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
