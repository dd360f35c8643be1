package file

import (
	"os"
	"path/filepath"
	"testing"

	"pet-studio/internal/domain/store"
)

func newTestMirror(t *testing.T) store.Mirror {
	t.Helper()
	m, err := NewMirror(t.TempDir())
	if err != nil {
		t.Fatalf("new mirror: %v", err)
	}
	return m
}

func TestMirror_RoundTrip(t *testing.T) {
	m := newTestMirror(t)

	in := map[string]any{"name": "멍이", "age": float64(2)}
	if err := m.Put(store.KeyPets, in); err != nil {
		t.Fatalf("put: %v", err)
	}

	var out map[string]any
	ok, err := m.Get(store.KeyPets, &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out["name"] != "멍이" || out["age"] != float64(2) {
		t.Fatalf("unexpected value: %+v", out)
	}

	if err := m.Delete(store.KeyPets); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, err = m.Get(store.KeyPets, &out)
	if err != nil || ok {
		t.Fatalf("expected absent after delete, ok=%v err=%v", ok, err)
	}
}

func TestMirror_AbsentKey(t *testing.T) {
	m := newTestMirror(t)

	var out string
	ok, err := m.Get("nope", &out)
	if err != nil {
		t.Fatalf("absent key must not error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for absent key")
	}
}

func TestMirror_DeleteAbsentIsNoop(t *testing.T) {
	m := newTestMirror(t)
	if err := m.Delete("nope"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}

func TestMirror_CorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	m, err := NewMirror(dir)
	if err != nil {
		t.Fatalf("new mirror: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{oops"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	var out map[string]any
	if _, err := m.Get("broken", &out); err == nil {
		t.Fatalf("expected corrupt content to surface as an error")
	}
}

func TestMirror_OverwriteReplacesValue(t *testing.T) {
	m := newTestMirror(t)

	if err := m.Put(store.KeyLanguage, "ko"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := m.Put(store.KeyLanguage, "ja"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	var out string
	if ok, err := m.Get(store.KeyLanguage, &out); err != nil || !ok || out != "ja" {
		t.Fatalf("expected ja, got %q (ok=%v err=%v)", out, ok, err)
	}
}

func TestMirror_EmptyDirRejected(t *testing.T) {
	if _, err := NewMirror("  "); err == nil {
		t.Fatalf("expected empty dir to be rejected")
	}
}
