package persistence

import (
	"context"
	"sync"
)

// MemoryStore keeps encoded slots in process memory. Payloads are stored in
// their encoded form so callers never share slices with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

// Load implements SlotStore.
func (m *MemoryStore) Load(ctx context.Context, slot string) ([]Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	payload, ok := m.slots[slot]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return DecodeSlot(payload)
}

// Save implements SlotStore.
func (m *MemoryStore) Save(ctx context.Context, slot string, records []Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := EncodeSlot(records)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.slots[slot] = payload
	m.mu.Unlock()
	return nil
}

// LoadVersion implements SlotStore.
func (m *MemoryStore) LoadVersion(ctx context.Context, slot string) ([]Reservation, Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	m.mu.RLock()
	payload, ok := m.slots[slot]
	m.mu.RUnlock()
	if !ok {
		return nil, "", ErrNotFound
	}
	records, err := DecodeSlot(payload)
	if err != nil {
		return nil, "", err
	}
	return records, VersionOf(payload), nil
}

// SaveIf implements SlotStore.
func (m *MemoryStore) SaveIf(ctx context.Context, slot string, records []Reservation, expected Version) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := EncodeSlot(records)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.slots[slot]
	switch {
	case !ok && expected != "":
		return ErrConflict
	case ok && VersionOf(current) != expected:
		return ErrConflict
	}
	m.slots[slot] = payload
	return nil
}

// Clear implements SlotStore.
func (m *MemoryStore) Clear(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.slots, slot)
	m.mu.Unlock()
	return nil
}
