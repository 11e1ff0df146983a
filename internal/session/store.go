package session

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Store persists the session. Implementations hold no policy: absence is
// reported as (Session{}, false, nil), Write and Clear affect both halves at
// once, and a completed Write or Clear is visible to the next Read.
type Store interface {
	Read() (Session, bool, error)
	Write(s Session) error
	Clear() error
}

// MemoryStore keeps the session in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	session Session
	present bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Read() (Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.present {
		return Session{}, false, nil
	}
	return m.session.normalize(), true, nil
}

func (m *MemoryStore) Write(s Session) error {
	if err := checkWritable(s); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = s.normalize()
	m.present = true
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = Session{}
	m.present = false
	return nil
}

// checkWritable rejects a session that Read would report as malformed, so
// every backend refuses it at the same point.
func checkWritable(s Session) error {
	if s.Credential == "" {
		return fmt.Errorf("%w: missing credential", ErrIncompleteSession)
	}
	return nil
}

// encodeSession and decodeSession define the persisted layout shared by the
// file and keyring stores: one JSON document holding both halves.
func encodeSession(s Session) ([]byte, error) {
	if err := checkWritable(s); err != nil {
		return nil, err
	}
	data, err := json.Marshal(s.normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

func decodeSession(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	if s.Credential == "" {
		return Session{}, fmt.Errorf("%w: missing credential", ErrMalformedSession)
	}
	return s.normalize(), nil
}
