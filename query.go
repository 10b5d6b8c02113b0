package workflow

import "sort"

// The query layer is purely derived: every call recomputes from the slice it
// is given. Entity volumes in this domain are small enough that no
// materialised view is warranted.

// Comparator orders entities within a status group. It reports whether a
// should sort before b.
type Comparator func(a, b Entity) bool

// ByCreatedAt is the default group ordering: oldest first.
func ByCreatedAt(a, b Entity) bool {
	return a.CreatedAt.Before(b.CreatedAt)
}

// ByPriorityFirst orders highest priority first, breaking ties oldest first.
// The urgent and critical dashboard views use it.
func ByPriorityFirst(a, b Entity) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}

	return a.CreatedAt.Before(b.CreatedAt)
}

type queryOptions struct {
	comparator Comparator
}

type QueryOption func(o *queryOptions)

// WithComparator overrides the default createdAt-ascending ordering of
// GroupByStatus groups.
func WithComparator(c Comparator) QueryOption {
	return func(o *queryOptions) {
		o.comparator = c
	}
}

// GroupByStatus buckets entities by their current status. Each group is
// ordered by createdAt ascending unless a comparator option is supplied.
// Entities with equal sort keys keep their original relative order.
func GroupByStatus(entities []Entity, opts ...QueryOption) map[Status][]Entity {
	o := queryOptions{comparator: ByCreatedAt}
	for _, opt := range opts {
		opt(&o)
	}

	groups := make(map[Status][]Entity)
	for _, e := range entities {
		groups[e.Status] = append(groups[e.Status], e)
	}

	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return o.comparator(group[i], group[j])
		})
	}

	return groups
}

// CountByStatus tallies entities per current status.
func CountByStatus(entities []Entity) map[Status]int {
	counts := make(map[Status]int)
	for _, e := range entities {
		counts[e.Status]++
	}

	return counts
}

// ForOwner filters to the entities owned by ownerID, preserving the original
// relative order.
func ForOwner(entities []Entity, ownerID string) []Entity {
	var owned []Entity
	for _, e := range entities {
		if e.OwnerID == ownerID {
			owned = append(owned, e)
		}
	}

	return owned
}
