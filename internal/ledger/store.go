package ledger

import (
	"context"
	"encoding/json"
	"sync"
)

// snapshot is the wire form of a Session for persistence.
type snapshot struct {
	ID      string               `json:"id"`
	Focused *LineSource          `json:"focused,omitempty"`
	Items   map[string]*LineItem `json:"items"`
	Errors  map[string]string    `json:"errors"`
	Totals  SaleTotals           `json:"totals"`
	Seq     int                  `json:"seq"`
}

// MarshalSnapshot serializes the session state for the snapshot store.
func (s *Session) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(snapshot{
		ID:      s.id,
		Focused: s.focused,
		Items:   s.items,
		Errors:  s.errs,
		Totals:  s.totals,
		Seq:     s.seq,
	})
}

// UnmarshalSnapshot restores a session from its serialized form.
func UnmarshalSnapshot(data []byte) (*Session, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	s := NewSession(snap.ID)
	s.focused = snap.Focused
	if snap.Items != nil {
		s.items = snap.Items
	}
	if snap.Errors != nil {
		s.errs = snap.Errors
	}
	s.totals = snap.Totals
	s.seq = snap.Seq
	return s, nil
}

// SnapshotStore persists session snapshots between requests. The Redis
// implementation is the production one; tests use the in-memory store.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, data []byte) error
	Load(ctx context.Context, sessionID string) ([]byte, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore is a map-backed SnapshotStore for tests and single-process
// development runs.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[sessionID] = cp
	return nil
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[sessionID]
	return data, ok, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}
