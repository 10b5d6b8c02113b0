package workflow

import "context"

// EntityStore implementations persist entities and their transition history.
// The engine itself is a pure computation over entity values; stores own all
// I/O and all cross-writer coordination.
//
// Save must be atomic with respect to a single entity: the status row update
// and the history append land together or not at all. Save must also enforce
// an optimistic concurrency check on Entity.Version - when the stored version
// no longer matches the version the caller read, Save fails with
// ErrConcurrentModification and leaves the stored entity untouched. Callers
// are expected to reload and retry at most once before surfacing the
// conflict.
type EntityStore interface {
	// Save creates the entity when its version is 1 and no row exists, and
	// otherwise updates the existing row subject to the version check.
	Save(ctx context.Context, e *Entity) error

	// Lookup returns the entity with the given id, including its full
	// history, or fails with ErrEntityNotFound.
	Lookup(ctx context.Context, id string) (*Entity, error)

	// List provides a slice of Entity of at most limit items for the given
	// kind, ordered by creation time according to order, after applying the
	// provided filters. A zero limit applies the store's default.
	List(ctx context.Context, kind Kind, offset int64, limit int, order OrderType, filters ...EntityFilter) ([]Entity, error)
}
