package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeProducer struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeProducer) WriteMessage(ctx context.Context, msg kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func TestPublishSetsTopicKeyValue(t *testing.T) {
	fp := &fakeProducer{}
	p := NewPublisher(fp)
	if err := p.Publish(context.Background(), "inventory-events", "O1", []byte(`{"eventType":"INVENTORY_RESERVED"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fp.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fp.msgs))
	}
	msg := fp.msgs[0]
	if msg.Topic != "inventory-events" || string(msg.Key) != "O1" {
		t.Fatalf("unexpected routing: topic=%q key=%q", msg.Topic, msg.Key)
	}
	if string(msg.Value) != `{"eventType":"INVENTORY_RESERVED"}` {
		t.Fatalf("unexpected value: %s", msg.Value)
	}
}

func TestPublishWrapsWriteError(t *testing.T) {
	boom := errors.New("leader not available")
	p := NewPublisher(&fakeProducer{err: boom})
	err := p.Publish(context.Background(), "inventory-events", "O1", []byte(`{}`))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}
