package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/esf/gestao-esf/internal/platform/websocket"
)

// Result reports what happened to one publish attempt.
type Result struct {
	ID        string `json:"id"`
	Delivered bool   `json:"delivered"`
}

type PublisherOption func(*Publisher)

// WithNow overrides the timestamp source.
func WithNow(now func() time.Time) PublisherOption {
	return func(p *Publisher) { p.now = now }
}

// WithEvents announces every delivered notice on the notifications topic.
func WithEvents(ep websocket.EventPublisher) PublisherOption {
	return func(p *Publisher) { p.events = ep }
}

func WithIDGenerator(fn func() string) PublisherOption {
	return func(p *Publisher) { p.newID = fn }
}

// Publisher writes notices to a DocumentStore. Failures are logged and
// swallowed; there are no retries.
type Publisher struct {
	store      DocumentStore
	collection string
	events     websocket.EventPublisher
	logger     zerolog.Logger
	now        func() time.Time
	newID      func() string
	wg         sync.WaitGroup
}

func NewPublisher(store DocumentStore, appID string, logger zerolog.Logger, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:      store,
		collection: CollectionPath(appID),
		logger:     logger.With().Str("component", "notification").Logger(),
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Collection() string {
	return p.collection
}

// Publish makes exactly one write attempt and returns once it completes.
// An empty category is stored as info; an unknown one is logged and stored
// as info too.
func (p *Publisher) Publish(ctx context.Context, title, message string, category Category) Result {
	if category == "" {
		category = CategoryInfo
	} else if !category.Valid() {
		p.logger.Warn().Str("type", string(category)).Str("title", title).Msg("unknown notification type, storing as info")
		category = CategoryInfo
	}

	id := p.newID()
	doc := NewNotification(title, message, category, p.now())

	if err := p.store.Add(ctx, p.collection, id, doc); err != nil {
		p.logger.Error().Err(err).
			Str("title", title).
			Str("type", string(category)).
			Str("collection", p.collection).
			Msg("failed to persist notification")
		return Result{ID: id}
	}

	p.logger.Debug().Str("id", id).Str("type", string(category)).Msg("notification persisted")
	p.announce(ctx, id, doc)
	return Result{ID: id, Delivered: true}
}

func (p *Publisher) announce(ctx context.Context, id string, doc *Notification) {
	if p.events == nil {
		return
	}
	ev, err := websocket.NewEvent(websocket.EventNotificationCreated, websocket.TopicNotifications, id, doc)
	if err != nil {
		p.logger.Warn().Err(err).Str("id", id).Msg("failed to encode notification event")
		return
	}
	if err := p.events.Publish(ctx, ev); err != nil {
		p.logger.Warn().Err(err).Str("id", id).Msg("failed to broadcast notification")
	}
}

// Go publishes on a new goroutine. The write is detached from ctx
// cancellation so it outlives the request that triggered it.
func (p *Publisher) Go(ctx context.Context, title, message string, category Category) {
	ctx = context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.Publish(ctx, title, message, category)
	}()
}

// Wait blocks until every write started with Go has finished.
func (p *Publisher) Wait() {
	p.wg.Wait()
}
