package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"trailmate/internal/models"
)

type fakeDrainer struct {
	mu     sync.Mutex
	events []models.QueueEvent
	drains int
}

func (f *fakeDrainer) DrainPendingEvents(ctx context.Context, limit int, fn func(models.QueueEvent) error) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.drains++

	processed := 0
	for _, e := range f.events {
		if processed >= limit {
			break
		}
		if err := fn(e); err == nil {
			processed++
		}
	}
	f.events = nil

	return processed, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published [][]byte
	err       error
	notify    chan struct{}
}

func (f *fakePublisher) Publish(ctx context.Context, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.published = append(f.published, body)
	select {
	case f.notify <- struct{}{}:
	default:
	}

	return nil
}

func TestConsumerForwardsEvents(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	drainer := &fakeDrainer{
		events: []models.QueueEvent{
			{ID: 1, Status: "pending", MaxTries: 5, Payload: []byte(`{"to":"a@example.com"}`)},
		},
	}
	pub := &fakePublisher{notify: make(chan struct{}, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		New(log, drainer, pub, time.Millisecond, 100).Run(ctx)
		close(done)
	}()

	select {
	case <-pub.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("event was never published")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop on cancel")
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.published) == 0 || string(pub.published[0]) != `{"to":"a@example.com"}` {
		t.Errorf("unexpected published payloads %q", pub.published)
	}
}

func TestConsumerSurvivesPublishErrors(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	drainer := &fakeDrainer{
		events: []models.QueueEvent{
			{ID: 1, Status: "pending", MaxTries: 5, Payload: []byte(`{}`)},
		},
	}
	pub := &fakePublisher{err: errors.New("broker down"), notify: make(chan struct{}, 1)}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	New(log, drainer, pub, time.Millisecond, 100).Run(ctx)

	drainer.mu.Lock()
	defer drainer.mu.Unlock()
	if drainer.drains == 0 {
		t.Error("consumer should keep polling after publish failures")
	}
}
