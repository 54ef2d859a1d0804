// Package toast keeps the short-lived notices shown in a user's session.
// Each toast disappears on its own after a fixed delay unless it is
// dismissed first.
package toast

import (
	"sync"
	"sync/atomic"
	"time"
)

// Type is the severity of a toast, used for styling only.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 3000 * time.Millisecond

// Toast is a transient UI notice.
type Toast struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
	Type    Type   `json:"type"`
}

// Sequence hands out toast identifiers. Values start at 1 and are never
// reused, however many toasts have expired.
type Sequence struct {
	n atomic.Int64
}

func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}

// Option configures a Notifier.
type Option func(*Notifier)

func WithClock(c Clock) Option {
	return func(n *Notifier) { n.clock = c }
}

func WithTTL(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.ttl = d
		}
	}
}

// WithSequence shares an identifier sequence between notifiers.
func WithSequence(s *Sequence) Option {
	return func(n *Notifier) { n.seq = s }
}

// Notifier owns one ordered queue of active toasts.
type Notifier struct {
	mu sync.Mutex
	// deliver serializes listener calls so they observe changes in order.
	deliver      sync.Mutex
	retired      bool
	clock        Clock
	ttl          time.Duration
	seq          *Sequence
	toasts       []Toast
	timers       map[int64]Timer
	listeners    map[int]func([]Toast)
	nextListener int
}

func New(opts ...Option) *Notifier {
	n := &Notifier{
		clock:     RealClock,
		ttl:       DefaultTTL,
		timers:    make(map[int64]Timer),
		listeners: make(map[int]func([]Toast)),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.seq == nil {
		n.seq = &Sequence{}
	}
	return n
}

// Show appends a toast and schedules its removal. An empty type means info.
// Messages and types are not validated.
func (n *Notifier) Show(message string, typ Type) Toast {
	t, _ := n.show(message, typ, false)
	return t
}

// show refuses to add to a retired notifier when checkRetired is set.
func (n *Notifier) show(message string, typ Type, checkRetired bool) (Toast, bool) {
	if typ == "" {
		typ = TypeInfo
	}

	n.mu.Lock()
	if checkRetired && n.retired {
		n.mu.Unlock()
		return Toast{}, false
	}
	t := Toast{ID: n.seq.Next(), Message: message, Type: typ}
	n.toasts = append(n.toasts, t)
	id := t.ID
	n.timers[id] = n.clock.AfterFunc(n.ttl, func() { n.remove(id, false) })
	n.mu.Unlock()

	n.publish()
	return t, true
}

// Dismiss removes the toast with the given id and cancels its timer.
// It reports whether a toast was removed.
func (n *Notifier) Dismiss(id int64) bool {
	return n.remove(id, true)
}

func (n *Notifier) remove(id int64, stopTimer bool) bool {
	n.mu.Lock()
	idx := -1
	for i, t := range n.toasts {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		n.mu.Unlock()
		return false
	}
	n.toasts = append(n.toasts[:idx], n.toasts[idx+1:]...)
	if timer, ok := n.timers[id]; ok {
		if stopTimer {
			timer.Stop()
		}
		delete(n.timers, id)
	}
	n.mu.Unlock()

	n.publish()
	return true
}

// Active returns the visible toasts in insertion order.
func (n *Notifier) Active() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Toast{}, n.toasts...)
}

func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.toasts)
}

// Subscribe registers fn to receive the active list after every change.
// fn runs on the goroutine that made the change, must not block and must
// not call back into the notifier.
func (n *Notifier) Subscribe(fn func([]Toast)) (cancel func()) {
	n.mu.Lock()
	key := n.nextListener
	n.nextListener++
	n.listeners[key] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.listeners, key)
		n.mu.Unlock()
	}
}

// Close stops every pending timer and empties the queue without notifying
// listeners.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, timer := range n.timers {
		timer.Stop()
		delete(n.timers, id)
	}
	n.toasts = nil
}

func (n *Notifier) stateLocked() ([]Toast, []func([]Toast)) {
	snap := append([]Toast{}, n.toasts...)
	ls := make([]func([]Toast), 0, len(n.listeners))
	for _, fn := range n.listeners {
		ls = append(ls, fn)
	}
	return snap, ls
}

// publish hands listeners the state as of delivery, one delivery at a time,
// so the last call a listener sees always reflects the latest change.
// Listeners must not call back into the notifier.
func (n *Notifier) publish() {
	n.deliver.Lock()
	defer n.deliver.Unlock()

	n.mu.Lock()
	snap, ls := n.stateLocked()
	n.mu.Unlock()

	for _, fn := range ls {
		fn(snap)
	}
}

// retireIfIdle marks an empty notifier with no pending timers as retired.
// Callers hold the registry lock.
func (n *Notifier) retireIfIdle() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.toasts) > 0 || len(n.timers) > 0 {
		return false
	}
	n.retired = true
	return true
}
