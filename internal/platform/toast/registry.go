package toast

import (
	"sort"
	"sync"
)

// Registry keeps one Notifier per session. All notifiers draw ids from the
// same Sequence, so an id is unique across the whole process. A session is
// dropped once its queue empties with no timers pending.
type Registry struct {
	mu        sync.Mutex
	seq       *Sequence
	opts      []Option
	sessions  map[string]*Notifier
	listeners []func(session string, toasts []Toast)
}

func NewRegistry(opts ...Option) *Registry {
	seq := &Sequence{}
	return &Registry{
		seq:      seq,
		opts:     append(append([]Option{}, opts...), WithSequence(seq)),
		sessions: make(map[string]*Notifier),
	}
}

// Session returns the notifier for key, creating it on first use.
func (r *Registry) Session(key string) *Notifier {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n, ok := r.sessions[key]; ok {
		return n
	}
	n := New(r.opts...)
	n.Subscribe(func(toasts []Toast) { r.forward(key, n, toasts) })
	r.sessions[key] = n
	return n
}

// OnChange registers fn for changes in any session, including sessions
// created before the call.
func (r *Registry) OnChange(fn func(session string, toasts []Toast)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Sessions lists the known session keys in sorted order.
func (r *Registry) Sessions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.sessions))
	for k := range r.sessions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close stops the timers of every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]*Notifier, 0, len(r.sessions))
	for _, n := range r.sessions {
		sessions = append(sessions, n)
	}
	r.mu.Unlock()

	for _, n := range sessions {
		n.Close()
	}
}

func (r *Registry) forward(session string, n *Notifier, toasts []Toast) {
	r.mu.Lock()
	ls := append([]func(string, []Toast){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range ls {
		fn(session, toasts)
	}

	if len(toasts) == 0 {
		r.evict(session, n)
	}
}

func (r *Registry) evict(session string, n *Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[session]; ok && cur == n && n.retireIfIdle() {
		delete(r.sessions, session)
	}
}

// Show adds a toast to the session's queue, creating the session if needed.
func (r *Registry) Show(session, message string, typ Type) Toast {
	for {
		if t, ok := r.Session(session).show(message, typ, true); ok {
			return t
		}
	}
}

// Dismiss removes a toast from the session's queue. Unknown sessions and ids
// report false.
func (r *Registry) Dismiss(session string, id int64) bool {
	n := r.lookup(session)
	return n != nil && n.Dismiss(id)
}

// Active lists the session's toasts without creating the session.
func (r *Registry) Active(session string) []Toast {
	if n := r.lookup(session); n != nil {
		return n.Active()
	}
	return []Toast{}
}

func (r *Registry) lookup(session string) *Notifier {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[session]
}
