package workflow

import "context"

// Notifier receives every transition after it has been persisted. It exists
// so dashboards and downstream consumers can observe status moves without the
// engine knowing about transports. Notify failures are logged by the caller
// and never fail the transition itself; the store remains the source of
// truth.
type Notifier interface {
	Notify(ctx context.Context, e Entity, t Transition) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, e Entity, t Transition) error {
	return nil
}
