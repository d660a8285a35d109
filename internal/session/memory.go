package session

import (
	"context"
	"sync"
	"time"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
)

type memEntry struct {
	state   *domain.FormSessionState
	expires time.Time
}

// Memory is an in-process Store. Entries expire TTL after their last write;
// expired entries are invisible to reads and removed by Sweep.
type Memory struct {
	TTL time.Duration
	Now func() time.Time

	mu      sync.Mutex
	entries map[string]memEntry
}

// NewMemory returns an empty in-memory store. A non-positive ttl disables
// expiry.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{TTL: ttl, Now: time.Now, entries: map[string]memEntry{}}
}

func (m *Memory) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// caller holds m.mu
func (m *Memory) load(sid string) *domain.FormSessionState {
	e, ok := m.entries[sid]
	if !ok {
		return nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, sid)
		return nil
	}
	return e.state
}

// caller holds m.mu
func (m *Memory) store(sid string, st *domain.FormSessionState) {
	if st.Empty() {
		delete(m.entries, sid)
		return
	}
	e := memEntry{state: clone(st)}
	if m.TTL > 0 {
		e.expires = m.now().Add(m.TTL)
	}
	if m.entries == nil {
		m.entries = map[string]memEntry{}
	}
	m.entries[sid] = e
}

func (m *Memory) Get(_ context.Context, sid string) (*domain.FormSessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.load(sid)), nil
}

func (m *Memory) Set(_ context.Context, sid string, st *domain.FormSessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(sid, st)
	return nil
}

func (m *Memory) Update(_ context.Context, sid string, fn func(*domain.FormSessionState) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := clone(m.load(sid))
	if st == nil {
		st = &domain.FormSessionState{}
	}
	if err := fn(st); err != nil {
		return err
	}
	st.UpdatedAt = m.now()
	m.store(sid, st)
	return nil
}

func (m *Memory) Drop(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sid)
	return nil
}

func (m *Memory) Sweep(ctx context.Context, prune func(*domain.FormSessionState) bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for sid := range m.entries {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		st := m.load(sid)
		if st == nil {
			n++
			continue
		}
		if !prune(st) {
			continue
		}
		n++
		if st.Empty() {
			delete(m.entries, sid)
			continue
		}
		// Pruning does not extend the entry's lifetime.
		e := m.entries[sid]
		e.state = st
		m.entries[sid] = e
	}
	return n, nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for sid := range m.entries {
		if m.load(sid) != nil {
			n++
		}
	}
	return n
}
