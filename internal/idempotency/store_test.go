package idempotency

import (
	"testing"
	"time"
)

func TestCreateIfNotExists_Get_MarkDone_MarkFailed(t *testing.T) {
	s := NewStore(48 * time.Hour)

	key := "test-key-1"
	sessionID := "sess-123"

	created, err := s.CreateIfNotExists(key, sessionID)
	if err != nil {
		t.Fatalf("CreateIfNotExists error: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true")
	}

	// second create should return created=false (exists)
	created2, err := s.CreateIfNotExists(key, sessionID)
	if err != nil {
		t.Fatalf("second CreateIfNotExists error: %v", err)
	}
	if created2 {
		t.Fatalf("expected created=false on duplicate create")
	}

	rec, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec == nil {
		t.Fatalf("expected record, got nil")
	}
	if rec.Status != StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", rec.Status)
	}
	if rec.SessionID != sessionID {
		t.Fatalf("session id mismatch")
	}

	if err := s.MarkDone(key, `{"ok":true}`, 201); err != nil {
		t.Fatalf("MarkDone error: %v", err)
	}
	rec, err = s.Get(key)
	if err != nil {
		t.Fatalf("Get after MarkDone error: %v", err)
	}
	if rec.Status != StatusDone {
		t.Fatalf("status not updated to DONE, got %s", rec.Status)
	}
	if rec.ResponseBody != `{"ok":true}` || rec.ResponseStatus != 201 {
		t.Fatalf("stored response not set correctly: %+v", rec)
	}

	if err := s.MarkFailed(key, "failed-reason"); err != nil {
		t.Fatalf("MarkFailed error: %v", err)
	}
	rec, err = s.Get(key)
	if err != nil {
		t.Fatalf("Get after MarkFailed error: %v", err)
	}
	if rec.Status != StatusFailed {
		t.Fatalf("status not updated to FAILED, got %s", rec.Status)
	}
	if rec.Note != "failed-reason" {
		t.Fatalf("note not set, got %q", rec.Note)
	}
}

func TestStore_PrunesExpiredRecords(t *testing.T) {
	s := NewStore(time.Hour)

	now := time.Now()
	s.nowFunc = func() time.Time { return now }

	if _, err := s.CreateIfNotExists("k1", "sess-1"); err != nil {
		t.Fatalf("CreateIfNotExists error: %v", err)
	}

	// jump past the TTL window
	s.nowFunc = func() time.Time { return now.Add(2 * time.Hour) }

	rec, err := s.Get("k1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected expired record to be pruned, got %+v", rec)
	}

	// key is reusable after expiry
	created, err := s.CreateIfNotExists("k1", "sess-2")
	if err != nil {
		t.Fatalf("re-create error: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true after prune")
	}
}
