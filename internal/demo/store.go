package demo

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/boglepay/go-checkout-flow/internal/checkout"
)

// DefaultStorePath is the namespaced document the demo state lives under.
const DefaultStorePath = "bogle_demo_store_v1.json"

// Document is the single JSON document holding all demo state. Sessions and
// payments are keyed by id; transactions are newest-first history.
type Document struct {
	Sessions     map[string]*checkout.Session       `json:"sessions"`
	Payments     map[string]*checkout.PaymentRecord `json:"payments"`
	Transactions []checkout.Transaction             `json:"transactions"`
}

func emptyDocument() *Document {
	return &Document{
		Sessions: map[string]*checkout.Session{},
		Payments: map[string]*checkout.PaymentRecord{},
	}
}

// Store persists the demo document to a local file, standing in for browser
// storage. A corrupt or missing file fails open to an empty store.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a Store backed by the given file path.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultStorePath
	}
	return &Store{path: path}
}

// Load reads the document. It never fails: unreadable or malformed state
// yields an empty document.
func (s *Store) Load() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() *Document {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return emptyDocument()
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return emptyDocument()
	}
	if doc.Sessions == nil {
		doc.Sessions = map[string]*checkout.Session{}
	}
	if doc.Payments == nil {
		doc.Payments = map[string]*checkout.PaymentRecord{}
	}
	return &doc
}

// Update applies fn to the current document and persists the result as one
// atomic read-modify-write.
func (s *Store) Update(fn func(*Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadLocked()
	fn(doc)

	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}

// Reset wipes the demo state.
func (s *Store) Reset() error {
	return s.Update(func(doc *Document) {
		*doc = *emptyDocument()
	})
}
