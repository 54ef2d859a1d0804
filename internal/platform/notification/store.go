package notification

import (
	"context"
	"sync"
)

// DocumentStore persists one notification document under collection/id.
type DocumentStore interface {
	Add(ctx context.Context, collection, id string, n *Notification) error
	Close() error
}

// Record is a document as held by MemoryStore.
type Record struct {
	Collection   string
	ID           string
	Notification Notification
}

// MemoryStore keeps documents in process. SetFailure makes every later Add
// fail, which is how tests and local runs simulate an unreachable store.
type MemoryStore struct {
	mu       sync.Mutex
	fail     error
	attempts int
	records  []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(_ context.Context, collection, id string, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.fail != nil {
		return s.fail
	}
	doc := *n
	doc.ReadBy = append([]string{}, n.ReadBy...)
	s.records = append(s.records, Record{Collection: collection, ID: id, Notification: doc})
	return nil
}

func (s *MemoryStore) SetFailure(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

// Attempts counts every Add call, failed or not.
func (s *MemoryStore) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Documents returns the stored records of collection in write order.
func (s *MemoryStore) Documents(collection string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if r.Collection == collection {
			out = append(out, r)
		}
	}
	return out
}

func (s *MemoryStore) Close() error { return nil }
