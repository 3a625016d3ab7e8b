// Package denylist keeps revoked access token ids until their expiry.
package denylist

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local denylist. Entries disappear on restart, which is
// acceptable for single-instance deployments.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *Memory) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !until.After(now) {
		return nil
	}
	m.entries[tokenID] = until
	m.sweep(now)
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.entries[tokenID]
	if !ok {
		return false, nil
	}
	if !until.After(m.now()) {
		delete(m.entries, tokenID)
		return false, nil
	}
	return true, nil
}

// sweep drops expired entries. Caller holds mu.
func (m *Memory) sweep(now time.Time) {
	for id, until := range m.entries {
		if !until.After(now) {
			delete(m.entries, id)
		}
	}
}
