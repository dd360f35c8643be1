package memory

import (
	"encoding/json"
	"sync"

	"pet-studio/internal/domain/store"
)

// mirror guarda key → JSON en un map. Para dev y tests.
type mirror struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

func NewMirror() store.Mirror {
	return &mirror{
		data: make(map[string]json.RawMessage),
	}
}

func (m *mirror) Put(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = b
	return nil
}

func (m *mirror) Get(key string, out any) (bool, error) {
	m.mu.RLock()
	b, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *mirror) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
