package workflow

import (
	"context"
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"k8s.io/utils/clock"

	"github.com/lucasmqar/vercflow-sub003/internal/metrics"
)

// EscalatorConfig describes one stale-entity sweep: entities of Kind sitting
// in From for longer than MaxAge are transitioned to To by ActorID. The
// request dashboards rely on this to surface overdue open requests as urgent.
type EscalatorConfig struct {
	Kind    Kind
	From    Status
	To      Status
	MaxAge  time.Duration
	ActorID string
	Reason  string
}

// Escalator periodically promotes stale entities through the normal
// transition path, so escalations carry history entries and notifications
// like any actor-driven move. Scheduling is the caller's concern (cmd wires
// Sweep onto a cron entry).
type Escalator struct {
	runner *Runner
	store  EntityStore
	cfg    EscalatorConfig
	clock  clock.PassiveClock
	logger Logger
}

func NewEscalator(runner *Runner, store EntityStore, cfg EscalatorConfig, opts ...EscalatorOption) *Escalator {
	e := &Escalator{
		runner: runner,
		store:  store,
		cfg:    cfg,
		clock:  clock.RealClock{},
		logger: noopLogger{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

type EscalatorOption func(e *Escalator)

func WithEscalatorClock(c clock.PassiveClock) EscalatorOption {
	return func(e *Escalator) {
		e.clock = c
	}
}

func WithEscalatorLogger(l Logger) EscalatorOption {
	return func(e *Escalator) {
		e.logger = l
	}
}

// Sweep escalates every matching stale entity once and returns how many were
// promoted. Individual failures are logged and skipped so one contended
// entity cannot stall the rest of the sweep.
func (e *Escalator) Sweep(ctx context.Context) (int, error) {
	cutoff := e.clock.Now().Add(-e.cfg.MaxAge)

	var (
		escalated int
		offset    int64
	)
	for {
		batch, err := e.store.List(ctx, e.cfg.Kind, offset, 0, OrderTypeAscending,
			FilterByStatus(e.cfg.From),
			FilterByCreatedBefore(cutoff),
		)
		if err != nil {
			return escalated, errors.Wrap(err, "list stale entities", j.KV("kind", e.cfg.Kind))
		}

		if len(batch) == 0 {
			return escalated, ctx.Err()
		}

		var skipped int64
		for _, entity := range batch {
			_, err := e.runner.Transition(ctx, entity.ID, e.cfg.To, e.cfg.ActorID, e.cfg.Reason)
			if err != nil {
				// A still-contended or already-moved entity is picked up by
				// the next sweep.
				e.logger.Error(ctx, errors.Wrap(err, "escalate entity", j.KV("entity_id", entity.ID)))
				skipped++
				continue
			}

			metrics.EscalationsTotal.WithLabelValues(string(e.cfg.Kind)).Inc()
			escalated++
		}

		// Escalated entities leave the filtered set, so the next page starts
		// past only the ones that failed to move.
		offset += skipped
		if ctx.Err() != nil {
			return escalated, ctx.Err()
		}
	}
}
