package notification

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/esf/gestao-esf/internal/platform/toast"
	"github.com/esf/gestao-esf/internal/platform/websocket"
)

var fixedNow = time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

type recordingEvents struct {
	mu     sync.Mutex
	events []websocket.Event
}

func (r *recordingEvents) Publish(_ context.Context, ev websocket.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingEvents) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func newTestPublisher(store DocumentStore, logs io.Writer, opts ...PublisherOption) *Publisher {
	base := []PublisherOption{
		WithNow(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "doc-1" }),
	}
	return NewPublisher(store, "esf-equipe-10", zerolog.New(logs), append(base, opts...)...)
}

func TestPublish_WritesDocument(t *testing.T) {
	store := NewMemoryStore()
	events := &recordingEvents{}
	p := newTestPublisher(store, io.Discard, WithEvents(events))

	res := p.Publish(context.Background(), "Reunião", "Equipe às 14h", CategoryMural)
	if !res.Delivered || res.ID != "doc-1" {
		t.Fatalf("unexpected result %+v", res)
	}

	docs := store.Documents(CollectionPath("esf-equipe-10"))
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	doc := docs[0].Notification
	if doc.Title != "Reunião" || doc.Type != CategoryMural {
		t.Errorf("unexpected document %+v", doc)
	}
	if doc.CreatedAt != "2026-02-07T12:00:00.000Z" {
		t.Errorf("unexpected createdAt %q", doc.CreatedAt)
	}
	if doc.ReadBy == nil || len(doc.ReadBy) != 0 {
		t.Errorf("expected empty readBy, got %#v", doc.ReadBy)
	}

	if events.count() != 1 {
		t.Fatalf("expected 1 broadcast, got %d", events.count())
	}
	if ev := events.events[0]; ev.Topic != websocket.TopicNotifications || ev.ID != "doc-1" {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestPublish_DefaultsToInfo(t *testing.T) {
	store := NewMemoryStore()
	p := newTestPublisher(store, io.Discard)

	p.Publish(context.Background(), "t", "m", "")
	if got := store.Documents(p.Collection())[0].Notification.Type; got != CategoryInfo {
		t.Errorf("expected info, got %q", got)
	}
}

func TestPublish_UnknownCategoryStoredAsInfo(t *testing.T) {
	store := NewMemoryStore()
	var logs bytes.Buffer
	p := newTestPublisher(store, &logs)

	res := p.Publish(context.Background(), "t", "m", Category("urgent"))
	if !res.Delivered {
		t.Fatal("expected delivery")
	}
	if got := store.Documents(p.Collection())[0].Notification.Type; got != CategoryInfo {
		t.Errorf("expected info, got %q", got)
	}
	if !strings.Contains(logs.String(), "unknown notification type") {
		t.Errorf("expected a warning, logs: %s", logs.String())
	}
}

// A failing store must not reach the caller, must be tried exactly once and
// must not touch the toast queues.
func TestPublish_StoreFailureIsIsolated(t *testing.T) {
	store := NewMemoryStore()
	store.SetFailure(errors.New("permission denied"))
	events := &recordingEvents{}
	var logs bytes.Buffer
	p := newTestPublisher(store, &logs, WithEvents(events))
	toasts := toast.NewRegistry(toast.WithClock(toast.NewManualClock()))

	res := p.Publish(context.Background(), "Reminder", "Check schedule", CategoryMural)

	if res.Delivered {
		t.Error("expected Delivered=false")
	}
	if store.Attempts() != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", store.Attempts())
	}
	if len(store.Documents(p.Collection())) != 0 {
		t.Error("expected nothing stored")
	}
	if events.count() != 0 {
		t.Error("failed writes must not be broadcast")
	}
	if len(toasts.Sessions()) != 0 {
		t.Error("publishing must not create toasts")
	}
	if !strings.Contains(logs.String(), "permission denied") {
		t.Errorf("expected failure to be logged, logs: %s", logs.String())
	}
}

func TestGo_DetachedFromCancellation(t *testing.T) {
	store := NewMemoryStore()
	var n int
	var mu sync.Mutex
	p := newTestPublisher(store, io.Discard, WithIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return strings.Repeat("x", n)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 10; i++ {
		p.Go(ctx, "t", "m", CategoryAgenda)
	}
	cancel()
	p.Wait()

	if store.Attempts() != 10 {
		t.Errorf("expected 10 attempts, got %d", store.Attempts())
	}
	if len(store.Documents(p.Collection())) != 10 {
		t.Errorf("expected 10 documents, got %d", len(store.Documents(p.Collection())))
	}
}

func TestGo_FailureDoesNotPanic(t *testing.T) {
	store := NewMemoryStore()
	store.SetFailure(errors.New("offline"))
	p := newTestPublisher(store, io.Discard)

	p.Go(context.Background(), "t", "m", CategoryAlert)
	p.Wait()

	if store.Attempts() != 1 {
		t.Errorf("expected 1 attempt, got %d", store.Attempts())
	}
}
