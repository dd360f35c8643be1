package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-studio/internal/ports/remote"
)

func TestClient_Login(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Fatalf("expected api key header, got %q", got)
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["email"] != "luna@example.com" {
			t.Fatalf("unexpected body: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user":    map[string]any{"id": "1", "name": "Luna Kim"},
		})
	}))
	defer ts.Close()

	c, err := NewClient(Config{BaseURL: ts.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	u, err := c.Login(context.Background(), "luna@example.com", "kakao")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != "1" || u.Name != "Luna Kim" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestClient_SuccessFalseIsRemoteError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "upstream down"})
	}))
	defer ts.Close()

	c, err := NewClient(Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = c.CreatePet(context.Background(), remote.CreatePetInput{Name: "Milo"})
	if !errors.Is(err, remote.ErrRemote) {
		t.Fatalf("expected remote error class, got %v", err)
	}
}

func TestClient_HTTPErrorIsRemoteError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c, err := NewClient(Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = c.ListProfiles(context.Background(), "1")
	if !errors.Is(err, remote.ErrRemote) {
		t.Fatalf("expected remote error class, got %v", err)
	}
}

func TestClient_NotConfigured(t *testing.T) {
	c, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.IsConfigured() {
		t.Fatalf("empty base url must not count as configured")
	}
	if _, err := c.Login(context.Background(), "a@b.c", "kakao"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
