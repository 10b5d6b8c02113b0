package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	workflow "github.com/lucasmqar/vercflow-sub003"
)

const defaultListLimit = 25

// New constructs an in-memory EntityStore. It is intended for tests and local
// development; the sqlstore adapter is the durable implementation.
func New() *Store {
	return &Store{
		entities: make(map[string]workflow.Entity),
	}
}

// Store keeps entities in a mutex-guarded map and applies the same
// optimistic version check the SQL store does, so the runner's
// conflict-retry path behaves identically against either.
type Store struct {
	mu       sync.Mutex
	entities map[string]workflow.Entity
	order    []string
}

var _ workflow.EntityStore = (*Store)(nil)

func (s *Store) Save(ctx context.Context, e *workflow.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entities[e.ID]
	if !ok {
		if e.Version != 1 {
			// An update aimed at an id that was never created; the SQL store
			// reports this as a missing row, not a version conflict.
			return errors.Wrap(workflow.ErrEntityNotFound, "", j.MKV{"entity_id": e.ID})
		}

		s.entities[e.ID] = clone(*e)
		s.order = append(s.order, e.ID)
		return nil
	}

	if existing.Version != e.Version-1 {
		return errors.Wrap(workflow.ErrConcurrentModification, "",
			j.MKV{"entity_id": e.ID},
		)
	}

	s.entities[e.ID] = clone(*e)
	return nil
}

func (s *Store) Lookup(ctx context.Context, id string) (*workflow.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return nil, errors.Wrap(workflow.ErrEntityNotFound, "", j.KV("entity_id", id))
	}

	e = clone(e)
	return &e, nil
}

func (s *Store) List(
	ctx context.Context,
	kind workflow.Kind,
	offset int64,
	limit int,
	order workflow.OrderType,
	filters ...workflow.EntityFilter,
) ([]workflow.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter := workflow.MakeFilter(filters...)

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []workflow.Entity
	for _, id := range s.order {
		e := s.entities[id]

		if kind != "" && e.Kind != kind {
			continue
		}

		if filter.ByOwnerID().Enabled && e.OwnerID != filter.ByOwnerID().Value {
			continue
		}

		if filter.ByStatus().Enabled && string(e.Status) != filter.ByStatus().Value {
			continue
		}

		if filter.ByCreatedBefore().Enabled && !e.CreatedAt.Before(filter.ByCreatedBefore().Value) {
			continue
		}

		matched = append(matched, clone(e))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if order == workflow.OrderTypeDescending {
			return matched[j].CreatedAt.Before(matched[i].CreatedAt)
		}

		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if limit == 0 {
		limit = defaultListLimit
	}

	if offset >= int64(len(matched)) {
		return nil, nil
	}

	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

// clone deep-copies the history slice so callers can never alias the stored
// value.
func clone(e workflow.Entity) workflow.Entity {
	e.History = slices.Clone(e.History)
	return e
}
