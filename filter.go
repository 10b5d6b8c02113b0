package workflow

import "time"

// MakeFilter collapses a set of EntityFilter options into a single queryable
// value for store implementations.
func MakeFilter(filters ...EntityFilter) *entityFilters {
	var ef entityFilters
	for _, f := range filters {
		f(&ef)
	}

	return &ef
}

type entityFilters struct {
	byOwnerID       FilterValue
	byStatus        FilterValue
	byCreatedBefore TimeFilterValue
}

func (f entityFilters) ByOwnerID() FilterValue {
	return f.byOwnerID
}

func (f entityFilters) ByStatus() FilterValue {
	return f.byStatus
}

func (f entityFilters) ByCreatedBefore() TimeFilterValue {
	return f.byCreatedBefore
}

type FilterValue struct {
	Enabled bool
	Value   string
}

type TimeFilterValue struct {
	Enabled bool
	Value   time.Time
}

type EntityFilter func(filters *entityFilters)

func FilterByOwnerID(ownerID string) EntityFilter {
	return func(filters *entityFilters) {
		filters.byOwnerID = FilterValue{Enabled: true, Value: ownerID}
	}
}

func FilterByStatus(s Status) EntityFilter {
	return func(filters *entityFilters) {
		filters.byStatus = FilterValue{Enabled: true, Value: string(s)}
	}
}

// FilterByCreatedBefore matches entities created strictly before t. The
// escalation sweep uses it to find stale entries.
func FilterByCreatedBefore(t time.Time) EntityFilter {
	return func(filters *entityFilters) {
		filters.byCreatedBefore = TimeFilterValue{Enabled: true, Value: t}
	}
}
