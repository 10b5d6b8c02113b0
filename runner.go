package workflow

import (
	"context"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/lucasmqar/vercflow-sub003/internal/metrics"
)

// Runner composes the pure engine with an EntityStore and an optional
// Notifier into the load -> transition -> save sequence the API and the
// escalation sweep both need. The engine stays a pure computation; the runner
// owns the I/O ordering around it.
type Runner struct {
	engine   *Engine
	store    EntityStore
	notifier Notifier
	logger   Logger
}

func NewRunner(engine *Engine, store EntityStore, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine:   engine,
		store:    store,
		notifier: noopNotifier{},
		logger:   noopLogger{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

type RunnerOption func(r *Runner)

func WithNotifier(n Notifier) RunnerOption {
	return func(r *Runner) {
		r.notifier = n
	}
}

func WithLogger(l Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// Engine exposes the underlying engine for pure checks such as
// AvailableTransitions.
func (r *Runner) Engine() *Engine {
	return r.engine
}

// Create mints a new entity and persists it.
func (r *Runner) Create(ctx context.Context, kind Kind, ownerID string, opts ...CreateOption) (Entity, error) {
	entity, err := r.engine.Create(kind, ownerID, opts...)
	if err != nil {
		return Entity{}, err
	}

	if err := r.store.Save(ctx, &entity); err != nil {
		return Entity{}, errors.Wrap(err, "save created entity", j.KV("entity_id", entity.ID))
	}

	metrics.EntitiesCreated.WithLabelValues(string(kind)).Inc()
	r.logger.Debug(ctx, "entity created", MKV{
		"entity_id": entity.ID,
		"kind":      string(kind),
		"status":    string(entity.Status),
	})

	return entity, nil
}

// Lookup loads an entity and re-validates its recorded history against its
// kind's definition before handing it to the caller, so a row corrupted
// outside the engine's write path never flows into the engine or the API.
func (r *Runner) Lookup(ctx context.Context, id string) (Entity, error) {
	current, err := r.store.Lookup(ctx, id)
	if err != nil {
		return Entity{}, err
	}

	if err := r.engine.ValidateHistory(*current); err != nil {
		return Entity{}, err
	}

	return *current, nil
}

// Transition loads the authoritative entity, applies the move and persists
// the result. A concurrent modification detected by the store triggers
// exactly one automatic reload-and-retry; a second conflict is returned to
// the caller to surface.
func (r *Runner) Transition(ctx context.Context, id string, toStatus Status, actorID, reason string) (Entity, error) {
	updated, err := r.transitionOnce(ctx, id, toStatus, actorID, reason)
	if errors.Is(err, ErrConcurrentModification) {
		updated, err = r.transitionOnce(ctx, id, toStatus, actorID, reason)
	}
	if err != nil {
		return Entity{}, err
	}

	last, ok := updated.LastTransition()
	if ok {
		if err := r.notifier.Notify(ctx, updated, last); err != nil {
			// The transition is already committed; a notification failure
			// must not roll it back or surface to the actor.
			r.logger.Error(ctx, errors.Wrap(err, "notify transition", j.KV("entity_id", updated.ID)))
		}
	}

	return updated, nil
}

func (r *Runner) transitionOnce(ctx context.Context, id string, toStatus Status, actorID, reason string) (Entity, error) {
	current, err := r.Lookup(ctx, id)
	if err != nil {
		return Entity{}, err
	}

	updated, err := r.engine.Transition(current, toStatus, actorID, reason)
	if err != nil {
		return Entity{}, err
	}

	if err := r.store.Save(ctx, &updated); err != nil {
		return Entity{}, err
	}

	r.logger.Debug(ctx, "entity transitioned", MKV{
		"entity_id":   updated.ID,
		"kind":        string(updated.Kind),
		"from_status": string(current.Status),
		"to_status":   string(updated.Status),
		"actor_id":    actorID,
	})

	return updated, nil
}
