package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"
)

type blockingConsumer struct {
	started chan struct{}
}

func (b *blockingConsumer) Start(ctx context.Context) error {
	close(b.started)
	<-ctx.Done()
	return nil
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	consumer := &blockingConsumer{started: make(chan struct{})}
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, consumer, server, zap.NewNop()) }()

	<-consumer.started
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

func TestServeStopsConsumerWhenHTTPFails(t *testing.T) {
	consumer := &blockingConsumer{started: make(chan struct{})}
	server := &http.Server{Addr: "not-an-address", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- serve(context.Background(), consumer, server, zap.NewNop()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected listen error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after HTTP failure")
	}
}
