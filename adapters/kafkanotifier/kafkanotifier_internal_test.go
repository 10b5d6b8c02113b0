package kafkanotifier

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	workflow "github.com/lucasmqar/vercflow-sub003"
)

func TestNewWriterPartitionsByKey(t *testing.T) {
	n := New([]string{"localhost:9092"}, "workflow.transitions")

	// Messages are keyed by entity ID; the balancer must route by that key or
	// transitions of one entity can interleave across partitions.
	require.IsType(t, &kafka.Hash{}, n.writer.Balancer)
}

func TestMakeEvent(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	e := workflow.Entity{
		ID:       "abc",
		Kind:     workflow.KindRequest,
		Status:   workflow.StatusCancelled,
		Priority: workflow.PriorityHigh,
		OwnerID:  "user1",
	}
	tr := workflow.Transition{
		From:      workflow.StatusOpen,
		To:        workflow.StatusCancelled,
		ActorID:   "user2",
		Reason:    "duplicate request",
		Timestamp: now,
	}

	event := makeEvent(e, tr)
	require.Equal(t, Event{
		EntityID:   "abc",
		Kind:       workflow.KindRequest,
		FromStatus: workflow.StatusOpen,
		ToStatus:   workflow.StatusCancelled,
		ActorID:    "user2",
		Reason:     "duplicate request",
		OwnerID:    "user1",
		Priority:   workflow.PriorityHigh,
		Timestamp:  now,
	}, event)

	b, err := json.Marshal(event)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"entityId": "abc",
		"kind": "request",
		"fromStatus": "open",
		"toStatus": "cancelled",
		"actorId": "user2",
		"reason": "duplicate request",
		"ownerId": "user1",
		"priority": "high",
		"timestamp": "2025-03-01T09:00:00Z"
	}`, string(b))
}
