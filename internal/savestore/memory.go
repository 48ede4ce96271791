package savestore

import (
	"context"
	"sync"

	"github.com/park285/cheese-board/internal/engine"
)

// MemoryStore keeps raw snapshot values in process. Used when no Redis is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	vals map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vals: make(map[string][]byte)}
}

func (m *MemoryStore) Load(ctx context.Context) (*engine.Snapshot, error) {
	m.mu.RLock()
	pieces, ok1 := m.vals[keyPieces]
	captures, ok2 := m.vals[keyCaptures]
	active, ok3 := m.vals[keyActiveColor]
	m.mu.RUnlock()
	if !ok1 || !ok2 || !ok3 {
		return nil, nil
	}
	return decode(pieces, captures, active)
}

func (m *MemoryStore) Save(ctx context.Context, snap engine.Snapshot) error {
	enc, err := snap.Encode()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.vals[keyPieces] = enc.Pieces
	m.vals[keyCaptures] = enc.Captures
	m.vals[keyActiveColor] = enc.ActiveColor
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	delete(m.vals, keyPieces)
	delete(m.vals, keyCaptures)
	delete(m.vals, keyActiveColor)
	m.mu.Unlock()
	return nil
}

// Put stores a raw value under name; it lets callers seed a store with
// hand-written data.
func (m *MemoryStore) Put(name string, raw []byte) {
	m.mu.Lock()
	m.vals[name] = append([]byte(nil), raw...)
	m.mu.Unlock()
}
