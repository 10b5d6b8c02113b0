package workflow

// The built-in kinds mirror the four pipelines observed across the VERCFLOW
// dashboards. Deployments that need different lifecycles register their own
// definitions instead of (or on top of) these.
const (
	KindRequest    Kind = "request"
	KindActivity   Kind = "activity"
	KindRecord     Kind = "record"
	KindDiscipline Kind = "discipline"
)

// Request statuses.
const (
	StatusOpen       Status = "open"
	StatusUrgent     Status = "urgent"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Activity and discipline statuses share the pending pipeline.
const (
	StatusPending Status = "pending"
	StatusOnHold  Status = "on_hold"
)

// Record statuses.
const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// RequestDefinition is the lifecycle of a department request: open requests
// can be flagged urgent or picked up, and any move into cancelled must say
// why.
func RequestDefinition() Definition {
	return Definition{
		States:         []Status{StatusOpen, StatusUrgent, StatusInProgress, StatusCompleted, StatusCancelled},
		InitialState:   StatusOpen,
		TerminalStates: []Status{StatusCompleted, StatusCancelled},
		Transitions: map[Status][]Status{
			StatusOpen:       {StatusUrgent, StatusInProgress, StatusCancelled},
			StatusUrgent:     {StatusInProgress, StatusCancelled},
			StatusInProgress: {StatusCompleted, StatusCancelled},
		},
		RequiresReason: []ReasonRule{
			{From: ReasonAnyFrom, To: StatusCancelled},
		},
	}
}

// ActivityDefinition is the lifecycle of a field activity.
func ActivityDefinition() Definition {
	return Definition{
		States:         []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled},
		InitialState:   StatusPending,
		TerminalStates: []Status{StatusCompleted, StatusCancelled},
		Transitions: map[Status][]Status{
			StatusPending:    {StatusInProgress, StatusCancelled},
			StatusInProgress: {StatusCompleted, StatusCancelled},
		},
		RequiresReason: []ReasonRule{
			{From: ReasonAnyFrom, To: StatusCancelled},
		},
	}
}

// RecordDefinition is the lifecycle of an engineering record: drafted,
// submitted for review, then approved or sent back with a reason. A rejected
// record can be redrafted and resubmitted.
func RecordDefinition() Definition {
	return Definition{
		States:         []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected},
		InitialState:   StatusDraft,
		TerminalStates: []Status{StatusApproved},
		Transitions: map[Status][]Status{
			StatusDraft:     {StatusSubmitted},
			StatusSubmitted: {StatusApproved, StatusRejected},
			StatusRejected:  {StatusSubmitted},
		},
		RequiresReason: []ReasonRule{
			{From: StatusSubmitted, To: StatusRejected},
		},
	}
}

// DisciplineDefinition is the lifecycle of an engineering discipline within a
// project. Disciplines can be parked on hold and resumed.
func DisciplineDefinition() Definition {
	return Definition{
		States:         []Status{StatusPending, StatusInProgress, StatusOnHold, StatusCompleted},
		InitialState:   StatusPending,
		TerminalStates: []Status{StatusCompleted},
		Transitions: map[Status][]Status{
			StatusPending:    {StatusInProgress},
			StatusInProgress: {StatusOnHold, StatusCompleted},
			StatusOnHold:     {StatusInProgress},
		},
	}
}

// DefaultRegistry returns a registry preloaded with the built-in kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(KindRequest, RequestDefinition())
	r.MustRegister(KindActivity, ActivityDefinition())
	r.MustRegister(KindRecord, RecordDefinition())
	r.MustRegister(KindDiscipline, DisciplineDefinition())
	return r
}
