package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"popup-checkout/internal/domain"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory returns a process-local store. Sessions are kept serialized so
// callers never share a cart instance.
func NewMemory(ttl time.Duration) Store {
	return &memoryStore{entries: make(map[uuid.UUID]memoryEntry), ttl: ttl, now: time.Now}
}

func (m *memoryStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	var s Session
	if err := json.Unmarshal(e.data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memoryStore) Save(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[s.ID] = memoryEntry{data: data, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

type memoryIdempotency struct {
	mu     sync.Mutex
	locks  map[string]time.Time
	values map[string]string
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryIdempotency(ttl time.Duration) IdempotencyStore {
	return &memoryIdempotency{
		locks:  make(map[string]time.Time),
		values: make(map[string]string),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *memoryIdempotency) TryLock(_ context.Context, scope, key string) (bool, error) {
	k := scope + ":" + key
	m.mu.Lock()
	defer m.mu.Unlock()
	if exp, ok := m.locks[k]; ok && m.now().Before(exp) {
		return false, nil
	}
	m.locks[k] = m.now().Add(m.ttl)
	return true, nil
}

func (m *memoryIdempotency) Unlock(_ context.Context, scope, key string) error {
	m.mu.Lock()
	delete(m.locks, scope+":"+key)
	m.mu.Unlock()
	return nil
}

func (m *memoryIdempotency) Remember(_ context.Context, scope, key, value string) error {
	m.mu.Lock()
	m.values[scope+":"+key] = value
	m.mu.Unlock()
	return nil
}

func (m *memoryIdempotency) Recall(_ context.Context, scope, key string) (string, bool, error) {
	m.mu.Lock()
	v, ok := m.values[scope+":"+key]
	m.mu.Unlock()
	return v, ok, nil
}
