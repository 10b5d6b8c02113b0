package workflow

import (
	"time"
)

// Kind identifies which workflow definition governs an entity (e.g. "request",
// "activity", "record", "discipline"). Kinds are registered once at startup
// via a Registry and are immutable thereafter.
type Kind string

// Status is the named position of an entity within its kind's workflow. The
// set of valid statuses for a kind is closed by its Definition; the engine
// rejects any status outside that set.
type Status string

// Transition is an immutable record of one status change. Entities carry
// their transitions as an append-only history; entries are never edited or
// removed once appended.
type Transition struct {
	From      Status    `json:"fromStatus"`
	To        Status    `json:"toStatus"`
	ActorID   string    `json:"actorId"`
	Timestamp time.Time `json:"timestamp"`
	// Reason is free text carried with the transition. It is required for
	// moves the Definition marks as reason-bearing (typically cancellation)
	// and optional everywhere else.
	Reason string `json:"reason,omitempty"`
}

// Entity is any business object that moves through a lifecycle. Entities are
// value types: the engine never mutates the value it is given and instead
// returns an updated copy, pushing single-writer discipline to the store.
type Entity struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`
	OwnerID  string   `json:"ownerId"`

	// Version supports the store's optimistic concurrency check. It starts at
	// 1 on creation and increments by one per recorded transition; a Save with
	// a version that no longer matches the stored row fails with
	// ErrConcurrentModification.
	Version int `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	History []Transition `json:"history"`
}

// IsTerminal reports whether the entity has reached a state its definition
// treats as terminal and can no longer be transitioned.
func (e Entity) IsTerminal(d Definition) bool {
	return d.IsTerminal(e.Status)
}

// LastTransition returns the most recent history entry, or false when the
// entity is still in its initial state.
func (e Entity) LastTransition() (Transition, bool) {
	if len(e.History) == 0 {
		return Transition{}, false
	}

	return e.History[len(e.History)-1], true
}
