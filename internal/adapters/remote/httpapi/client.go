package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pet-studio/internal/domain/store"
	"pet-studio/internal/platform/httpclient"
	"pet-studio/internal/ports/remote"
)

var (
	ErrNotConfigured = errors.New("remote api client not configured")
)

// Config del cliente HTTP del backend.
// BaseURL normalmente viene de env vars en quien lo instancie.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: nombre del header donde se manda la API key.
	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

// Client implementa remote.Client contra el contrato HTTP real
// (los mismos paths que el backend mock: /api/auth/*, /api/pet, /api/profile).
type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}

	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		h := strings.TrimSpace(cfg.APIKeyHeader)
		if h == "" {
			h = "X-Api-Key"
		}
		hc.Headers = map[string]string{h: key}
	}

	return &Client{http: hc}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != ""
}

// envelope agrega los payloads del backend al sobre genérico.
type envelope struct {
	httpclient.Envelope

	User     *store.User           `json:"user"`
	Pet      *store.Pet            `json:"pet"`
	Pets     []store.Pet           `json:"pets"`
	Profile  *store.ProfileResult  `json:"profile"`
	Profiles []store.ProfileResult `json:"profiles"`
}

// call normaliza transporte y {success:false} al mismo error de clase remota.
func (c *Client) call(ctx context.Context, method, path string, in any) (envelope, error) {
	if !c.IsConfigured() {
		return envelope{}, ErrNotConfigured
	}

	var out envelope
	if err := c.http.DoEnveloped(ctx, method, path, in, &out); err != nil {
		return envelope{}, fmt.Errorf("%w: %v", remote.ErrRemote, err)
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, email, provider string) (store.User, error) {
	out, err := c.call(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"provider": provider,
	})
	if err != nil {
		return store.User{}, err
	}
	if out.User == nil {
		return store.User{}, fmt.Errorf("%w: response missing user", remote.ErrRemote)
	}
	return *out.User, nil
}

func (c *Client) Signup(ctx context.Context, email, name, provider string) (store.User, error) {
	out, err := c.call(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    email,
		"name":     name,
		"provider": provider,
	})
	if err != nil {
		return store.User{}, err
	}
	if out.User == nil {
		return store.User{}, fmt.Errorf("%w: response missing user", remote.ErrRemote)
	}
	return *out.User, nil
}

func (c *Client) ListPets(ctx context.Context, userID string) ([]store.Pet, error) {
	out, err := c.call(ctx, http.MethodGet, "/api/pet?userId="+url.QueryEscape(userID), nil)
	if err != nil {
		return nil, err
	}
	return out.Pets, nil
}

func (c *Client) CreatePet(ctx context.Context, in remote.CreatePetInput) (store.Pet, error) {
	out, err := c.call(ctx, http.MethodPost, "/api/pet", in)
	if err != nil {
		return store.Pet{}, err
	}
	if out.Pet == nil {
		return store.Pet{}, fmt.Errorf("%w: response missing pet", remote.ErrRemote)
	}
	return *out.Pet, nil
}

func (c *Client) ListProfiles(ctx context.Context, userID string) ([]store.ProfileResult, error) {
	out, err := c.call(ctx, http.MethodGet, "/api/profile?userId="+url.QueryEscape(userID), nil)
	if err != nil {
		return nil, err
	}
	return out.Profiles, nil
}

func (c *Client) CreateProfile(ctx context.Context, in remote.CreateProfileInput) (store.ProfileResult, error) {
	out, err := c.call(ctx, http.MethodPost, "/api/profile", in)
	if err != nil {
		return store.ProfileResult{}, err
	}
	if out.Profile == nil {
		return store.ProfileResult{}, fmt.Errorf("%w: response missing profile", remote.ErrRemote)
	}
	return *out.Profile, nil
}
