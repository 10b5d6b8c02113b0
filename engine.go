package workflow

import (
	"slices"

	"github.com/google/uuid"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"k8s.io/utils/clock"

	"github.com/lucasmqar/vercflow-sub003/internal/metrics"
)

// Engine is the only component authorised to set an entity's status or append
// to its history. It holds no entity state itself: every operation takes an
// entity value and returns a new value, leaving the input untouched on every
// failure path. Persisting the result, and serialising concurrent transitions
// on the same entity, is the caller's concern (see Runner and EntityStore).
type Engine struct {
	registry *Registry
	clock    clock.PassiveClock
}

func NewEngine(registry *Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: registry,
		clock:    clock.RealClock{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

type EngineOption func(e *Engine)

// WithEngineClock overrides the engine's clock. Used in tests to pin
// timestamps.
func WithEngineClock(c clock.PassiveClock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// Create mints a new entity of the given kind in the kind's initial state with
// an empty history. It fails with ErrUnknownKind when the kind is not
// registered.
func (e *Engine) Create(kind Kind, ownerID string, opts ...CreateOption) (Entity, error) {
	d, err := e.registry.Get(kind)
	if err != nil {
		return Entity{}, err
	}

	co := createOptions{priority: PriorityMedium}
	for _, opt := range opts {
		opt(&co)
	}

	now := e.clock.Now()
	entity := Entity{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    d.InitialState,
		Priority:  co.priority,
		OwnerID:   ownerID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return entity, nil
}

type createOptions struct {
	priority Priority
}

type CreateOption func(o *createOptions)

func WithPriority(p Priority) CreateOption {
	return func(o *createOptions) {
		o.priority = p
	}
}

// Transition validates and applies a status change, returning the updated
// entity. The input entity is never modified, also not on success: the
// returned value carries a fresh history slice so the caller's copy stays
// byte-identical.
//
// Failure taxonomy: ErrUnknownKind for unregistered kinds, ErrTerminalState
// when the entity can no longer move, ErrIllegalTransition when the
// definition has no edge from the current status to toStatus, and
// ErrMissingReason when the edge is reason-bearing and reason is empty. These
// are routine rejections of an invalid request, not system faults; callers
// should surface them as "action not available".
func (e *Engine) Transition(entity Entity, toStatus Status, actorID string, reason string) (Entity, error) {
	d, err := e.registry.Get(entity.Kind)
	if err != nil {
		return Entity{}, err
	}

	if d.IsTerminal(entity.Status) {
		metrics.TransitionsRejected.WithLabelValues(string(entity.Kind), "terminal_state").Inc()
		return Entity{}, errors.Wrap(ErrTerminalState, "",
			j.MKV{"entity_id": entity.ID, "status": entity.Status},
		)
	}

	if !d.CanTransition(entity.Status, toStatus) {
		metrics.TransitionsRejected.WithLabelValues(string(entity.Kind), "illegal_transition").Inc()
		return Entity{}, errors.Wrap(ErrIllegalTransition, "",
			j.MKV{
				"entity_id":   entity.ID,
				"from_status": entity.Status,
				"to_status":   toStatus,
			},
		)
	}

	if reason == "" && d.ReasonRequired(entity.Status, toStatus) {
		metrics.TransitionsRejected.WithLabelValues(string(entity.Kind), "missing_reason").Inc()
		return Entity{}, errors.Wrap(ErrMissingReason, "",
			j.MKV{
				"entity_id":   entity.ID,
				"from_status": entity.Status,
				"to_status":   toStatus,
			},
		)
	}

	now := e.clock.Now()
	t := Transition{
		From:      entity.Status,
		To:        toStatus,
		ActorID:   actorID,
		Timestamp: now,
		Reason:    reason,
	}

	updated := entity
	updated.History = append(slices.Clone(entity.History), t)
	updated.Status = toStatus
	updated.UpdatedAt = now
	updated.Version = entity.Version + 1

	metrics.TransitionsTotal.WithLabelValues(string(entity.Kind), string(t.From), string(t.To)).Inc()
	return updated, nil
}

// CanTransition is the side-effect free legality check behind per-status
// action buttons. It mirrors the terminal and edge checks of Transition but
// ignores reason rules; the presentation layer decides reason prompting via
// the definition's ReasonRequired.
func (e *Engine) CanTransition(entity Entity, toStatus Status) bool {
	d, err := e.registry.Get(entity.Kind)
	if err != nil {
		return false
	}

	if d.IsTerminal(entity.Status) {
		return false
	}

	return d.CanTransition(entity.Status, toStatus)
}

// ValidateHistory re-checks a stored entity's recorded history against its
// kind's definition. The engine is the only writer of history, so a failure
// here means the row was modified outside it.
func (e *Engine) ValidateHistory(entity Entity) error {
	d, err := e.registry.Get(entity.Kind)
	if err != nil {
		return err
	}

	return d.ValidateHistory(entity)
}

// AvailableTransitions returns the statuses the entity may legally move to
// from its current status. An entity in a terminal state has none.
func (e *Engine) AvailableTransitions(entity Entity) []Status {
	d, err := e.registry.Get(entity.Kind)
	if err != nil {
		return nil
	}

	if d.IsTerminal(entity.Status) {
		return nil
	}

	return d.AllowedFrom(entity.Status)
}
