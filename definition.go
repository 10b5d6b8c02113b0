package workflow

import (
	"slices"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/lucasmqar/vercflow-sub003/internal/graph"
)

// ReasonAnyFrom is the wildcard origin for reason rules. A rule with
// From == ReasonAnyFrom makes every transition into its To status
// reason-bearing, regardless of where the move started.
const ReasonAnyFrom Status = "*"

// ReasonRule marks a (from, to) pair whose transition must carry a non-empty
// reason. The from side may be ReasonAnyFrom.
type ReasonRule struct {
	From Status
	To   Status
}

// Definition is the per-kind workflow configuration. Definitions are built
// once at startup, validated on registration and never mutated afterwards, so
// they are safe for concurrent reads without locking.
type Definition struct {
	// States is the closed set of valid statuses for the kind.
	States []Status

	// InitialState is the status assigned on creation. It must be a member of
	// States.
	InitialState Status

	// TerminalStates are the statuses from which no further transition is
	// legal. When empty they are inferred from Transitions as the statuses
	// with no outgoing edges.
	TerminalStates []Status

	// Transitions maps each origin status to the set of statuses it may move
	// to. A status absent from the map has no legal outgoing moves.
	Transitions map[Status][]Status

	// RequiresReason lists the moves that must carry a non-empty reason.
	RequiresReason []ReasonRule

	g *graph.Graph
}

// Validate checks the definition for internal consistency and finalises the
// transition graph. It is called by Registry.Register; all failures wrap
// ErrInvalidDefinition.
func (d *Definition) Validate(kind Kind) error {
	if len(d.States) == 0 {
		return errors.Wrap(ErrInvalidDefinition, "definition has no states", j.KV("kind", kind))
	}

	if !slices.Contains(d.States, d.InitialState) {
		return errors.Wrap(ErrInvalidDefinition, "initial state is not a member of the state set",
			j.MKV{"kind": kind, "initial_state": d.InitialState},
		)
	}

	g := graph.New()
	for from, tos := range d.Transitions {
		if !slices.Contains(d.States, from) {
			return errors.Wrap(ErrInvalidDefinition, "transition origin is not a member of the state set",
				j.MKV{"kind": kind, "state": from},
			)
		}

		for _, to := range tos {
			if !slices.Contains(d.States, to) {
				return errors.Wrap(ErrInvalidDefinition, "transition destination is not a member of the state set",
					j.MKV{"kind": kind, "state": to},
				)
			}

			g.AddTransition(string(from), string(to))
		}
	}

	for _, ts := range d.TerminalStates {
		if !slices.Contains(d.States, ts) {
			return errors.Wrap(ErrInvalidDefinition, "terminal state is not a member of the state set",
				j.MKV{"kind": kind, "state": ts},
			)
		}

		if len(d.Transitions[ts]) != 0 {
			return errors.Wrap(ErrInvalidDefinition, "terminal state has outgoing transitions",
				j.MKV{"kind": kind, "state": ts},
			)
		}
	}

	for _, rule := range d.RequiresReason {
		if rule.From != ReasonAnyFrom && !slices.Contains(d.States, rule.From) {
			return errors.Wrap(ErrInvalidDefinition, "reason rule origin is not a member of the state set",
				j.MKV{"kind": kind, "state": rule.From},
			)
		}

		if !slices.Contains(d.States, rule.To) {
			return errors.Wrap(ErrInvalidDefinition, "reason rule destination is not a member of the state set",
				j.MKV{"kind": kind, "state": rule.To},
			)
		}
	}

	d.g = g
	return nil
}

// IsValidState reports whether s is a member of the definition's state set.
func (d Definition) IsValidState(s Status) bool {
	return slices.Contains(d.States, s)
}

// IsTerminal reports whether no further transition is legal from s. Explicit
// terminal states take precedence; otherwise terminality is inferred from the
// transition graph (no outgoing edges).
func (d Definition) IsTerminal(s Status) bool {
	if len(d.TerminalStates) > 0 {
		return slices.Contains(d.TerminalStates, s)
	}

	if d.g != nil {
		return d.g.IsTerminal(string(s))
	}

	return len(d.Transitions[s]) == 0
}

// AllowedFrom returns the legal destination statuses from s, in declaration
// order. The returned slice is a copy and safe for the caller to modify.
func (d Definition) AllowedFrom(s Status) []Status {
	return slices.Clone(d.Transitions[s])
}

// CanTransition reports whether the definition permits the from -> to move.
func (d Definition) CanTransition(from, to Status) bool {
	return slices.Contains(d.Transitions[from], to)
}

// ReasonRequired reports whether the from -> to move must carry a non-empty
// reason.
func (d Definition) ReasonRequired(from, to Status) bool {
	for _, rule := range d.RequiresReason {
		if rule.To != to {
			continue
		}

		if rule.From == ReasonAnyFrom || rule.From == from {
			return true
		}
	}

	return false
}

// ValidateHistory checks a loaded entity's recorded history against the
// definition. The chain must start at the initial state, each entry must
// continue from the previous one, every recorded move must be a declared edge
// carrying a reason where the edge requires one, and the entity's current
// status must match the end of the chain. All failures wrap ErrCorruptHistory;
// stores only ever persist what the engine produced, so a failure means the
// row was altered outside the engine's write path.
func (d Definition) ValidateHistory(e Entity) error {
	at := d.InitialState
	for i, t := range e.History {
		if t.From != at {
			return errors.Wrap(ErrCorruptHistory, "history chain is not contiguous",
				j.MKV{"entity_id": e.ID, "index": i, "expected_from": at, "from_status": t.From},
			)
		}

		if !d.CanTransition(t.From, t.To) {
			return errors.Wrap(ErrCorruptHistory, "recorded transition is not a declared edge",
				j.MKV{"entity_id": e.ID, "index": i, "from_status": t.From, "to_status": t.To},
			)
		}

		if t.Reason == "" && d.ReasonRequired(t.From, t.To) {
			return errors.Wrap(ErrCorruptHistory, "recorded transition is missing its required reason",
				j.MKV{"entity_id": e.ID, "index": i, "from_status": t.From, "to_status": t.To},
			)
		}

		at = t.To
	}

	if e.Status != at {
		return errors.Wrap(ErrCorruptHistory, "current status does not match the end of the history chain",
			j.MKV{"entity_id": e.ID, "status": e.Status, "history_end": at},
		)
	}

	return nil
}

// Info describes the definition's transition graph: starting nodes, terminal
// nodes and the declared edges. It is intended for visualisation and for the
// API's definition endpoint.
func (d Definition) Info() graph.Info {
	if d.g == nil {
		return graph.Info{}
	}

	return d.g.Info()
}
