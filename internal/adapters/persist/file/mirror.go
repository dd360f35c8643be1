package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pet-studio/internal/domain/store"
)

// mirror es el stand-in de localStorage: un archivo <key>.json por clave
// dentro de un directorio de estado. Escritura vía temp + rename para no dejar
// archivos a medias si el proceso muere en medio de un write.
type mirror struct {
	mu  sync.Mutex
	dir string
}

func NewMirror(dir string) (store.Mirror, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("file mirror: empty dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file mirror: mkdir %s: %w", dir, err)
	}
	return &mirror{dir: dir}, nil
}

func (m *mirror) path(key string) string {
	return filepath.Join(m.dir, key+".json")
}

func (m *mirror) Put(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tmp := m.path(key) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path(key))
}

func (m *mirror) Get(key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := os.ReadFile(m.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		// Contenido corrupto cuenta como falla de storage, no como ausencia.
		return false, fmt.Errorf("file mirror: corrupt %s: %w", key, err)
	}
	return true, nil
}

func (m *mirror) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := os.Remove(m.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
