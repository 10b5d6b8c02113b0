package workflow

import (
	"encoding/json"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

// Priority is the ordinal severity of an entity. It is informational only and
// never affects transition legality; the query layer uses it for the
// urgent-first dashboard orderings.
type Priority int

const (
	PriorityUnknown  Priority = 0
	PriorityLow      Priority = 1
	PriorityMedium   Priority = 2
	PriorityHigh     Priority = 3
	PriorityUrgent   Priority = 4
	PriorityCritical Priority = 5
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParsePriority maps the wire representation back to a Priority. The empty
// string parses to PriorityMedium, the creation default.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "urgent":
		return PriorityUrgent, nil
	case "critical":
		return PriorityCritical, nil
	default:
		return PriorityUnknown, errors.New("unknown priority", j.KV("priority", s))
	}
}

func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}

	*p = parsed
	return nil
}
