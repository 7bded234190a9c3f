// Package kafka publishes audit events to a Kafka topic so downstream
// systems (case management, the decision projector) can follow decisions.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "onboard/pkg/platform/audit"
)

// Header keys set on every record.
const (
	HeaderCategory = "category"
	HeaderAction   = "action"
)

// Producer is the part of *kgo.Client the publisher uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher is an audit.Store that writes JSON events keyed by client, so
// every event for one client lands on the same partition in order.
type Publisher struct {
	producer Producer
	topic    string
}

func New(producer Producer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// Append produces the event and waits for the broker acknowledgement.
func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(partitionKey(event)),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: HeaderCategory, Value: []byte(event.Category)},
			{Key: HeaderAction, Value: []byte(event.Action)},
		},
	}
	if !event.Timestamp.IsZero() {
		rec.Timestamp = event.Timestamp
	}
	if err := p.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func partitionKey(e audit.Event) string {
	switch {
	case e.ClientID != "":
		return e.ClientID
	case e.EvaluationID != "":
		return e.EvaluationID
	default:
		return e.Action
	}
}
