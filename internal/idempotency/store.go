package idempotency

import (
	"sync"
	"time"
)

// Store keeps idempotency records for the local mock server. It is an
// in-memory stand-in for the durable table the real backend uses, guarded by a
// mutex so concurrent handlers observe at-most-once semantics.
type Store struct {
	mu        sync.Mutex
	records   map[string]*Record
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewStore returns a configured Store.
// ttlWindow: how long records are retained before being pruned (e.g., 48h).
func NewStore(ttlWindow time.Duration) *Store {
	return &Store{
		records:   map[string]*Record{},
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// CreateIfNotExists creates a record with status IN_PROGRESS if the key does
// not exist. Returns created=true on success, created=false if the key is
// already present (caller should Get to inspect the prior outcome).
func (s *Store) CreateIfNotExists(key, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	if _, ok := s.records[key]; ok {
		return false, nil
	}

	now := s.nowFunc()
	s.records[key] = &Record{
		Key:       key,
		Status:    StatusInProgress,
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttlWindow).Unix(),
	}
	return true, nil
}

// Get retrieves a record by key. If not found, returns (nil, nil).
func (s *Store) Get(key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	rec, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// MarkDone sets status to DONE and stores the response body and status so
// duplicate submissions can be answered without re-running the operation.
func (s *Store) MarkDone(key, responseBody string, responseStatus int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil
	}
	rec.Status = StatusDone
	rec.ResponseBody = responseBody
	rec.ResponseStatus = responseStatus
	rec.UpdatedAt = s.nowFunc()
	return nil
}

// MarkFailed marks the record as FAILED with an optional note; the client may
// retry with the same key.
func (s *Store) MarkFailed(key, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil
	}
	rec.Status = StatusFailed
	rec.Note = note
	rec.UpdatedAt = s.nowFunc()
	return nil
}

// pruneLocked drops expired records. Caller must hold mu.
func (s *Store) pruneLocked() {
	if s.ttlWindow <= 0 {
		return
	}
	cutoff := s.nowFunc().Unix()
	for k, rec := range s.records {
		if rec.ExpiresAt > 0 && rec.ExpiresAt < cutoff {
			delete(s.records, k)
		}
	}
}
