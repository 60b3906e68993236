package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/rcabrera/tillpoint-backend/pkg/logger"
)

// Manager owns the live sessions and serializes access to each one. A
// session is loaded from the snapshot store on first touch, mutated under
// its per-session lock, and persisted back after every settled mutation.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*managed
	store    SnapshotStore
	logg     *logger.Logger
}

type managed struct {
	mu      sync.Mutex
	session *Session
}

func NewManager(store SnapshotStore, logg *logger.Logger) (*Manager, error) {
	if store == nil {
		return nil, errors.New("snapshot store is required")
	}
	return &Manager{
		sessions: map[string]*managed{},
		store:    store,
		logg:     logg,
	}, nil
}

// Mutate runs fn against the session under its lock and persists the
// resulting snapshot. Reads go through the same path; persisting after a
// pure read is harmless and keeps the TTL fresh.
func (m *Manager) Mutate(ctx context.Context, sessionID string, fn func(s *Session) error) error {
	entry, err := m.entry(ctx, sessionID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := fn(entry.session); err != nil {
		return err
	}

	data, err := entry.session.MarshalSnapshot()
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, sessionID, data); err != nil {
		// The in-memory session is still authoritative; losing a snapshot
		// only costs restart durability.
		if m.logg != nil {
			m.logg.Error(ctx, "failed to persist ledger snapshot", err)
		}
	}
	return nil
}

// View runs fn against the session under its lock without persisting.
func (m *Manager) View(ctx context.Context, sessionID string, fn func(s *Session) error) error {
	entry, err := m.entry(ctx, sessionID)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

// Discard resets the session and removes its snapshot.
func (m *Manager) Discard(ctx context.Context, sessionID string) error {
	entry, err := m.entry(ctx, sessionID)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.session.Reset()
	return m.store.Delete(ctx, sessionID)
}

func (m *Manager) entry(ctx context.Context, sessionID string) (*managed, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}

	m.mu.Lock()
	entry, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if ok {
		return entry, nil
	}

	// Load outside the map lock so one slow snapshot fetch cannot stall
	// first-touch of every other register.
	session := NewSession(sessionID)
	data, found, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if found {
		restored, err := UnmarshalSnapshot(data)
		if err != nil {
			// A corrupt snapshot should not brick the register.
			if m.logg != nil {
				m.logg.Error(ctx, "discarding unreadable ledger snapshot", err)
			}
		} else {
			session = restored
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[sessionID]; ok {
		// Lost the first-touch race; the inserted entry wins and this
		// load is dropped.
		return existing, nil
	}
	entry = &managed{session: session}
	m.sessions[sessionID] = entry
	return entry, nil
}
