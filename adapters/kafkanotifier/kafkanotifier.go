// Package kafkanotifier publishes recorded transitions to a Kafka topic so
// dashboards and downstream systems can observe status moves without polling
// the store.
package kafkanotifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	workflow "github.com/lucasmqar/vercflow-sub003"
)

// Event is the published message payload. Messages are keyed by entity ID so
// per-entity ordering is preserved within a partition.
type Event struct {
	EntityID   string            `json:"entityId"`
	Kind       workflow.Kind     `json:"kind"`
	FromStatus workflow.Status   `json:"fromStatus"`
	ToStatus   workflow.Status   `json:"toStatus"`
	ActorID    string            `json:"actorId"`
	Reason     string            `json:"reason,omitempty"`
	OwnerID    string            `json:"ownerId"`
	Priority   workflow.Priority `json:"priority"`
	Timestamp  time.Time         `json:"timestamp"`
}

func makeEvent(e workflow.Entity, t workflow.Transition) Event {
	return Event{
		EntityID:   e.ID,
		Kind:       e.Kind,
		FromStatus: t.From,
		ToStatus:   t.To,
		ActorID:    t.ActorID,
		Reason:     t.Reason,
		OwnerID:    e.OwnerID,
		Priority:   e.Priority,
		Timestamp:  t.Timestamp,
	}
}

func New(brokers []string, topic string) *Notifier {
	return &Notifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 10 * time.Second,
		},
	}
}

type Notifier struct {
	writer *kafka.Writer
}

var _ workflow.Notifier = (*Notifier)(nil)

func (n *Notifier) Notify(ctx context.Context, e workflow.Entity, t workflow.Transition) error {
	b, err := json.Marshal(makeEvent(e, t))
	if err != nil {
		return err
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.ID),
		Value: b,
	})
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}
