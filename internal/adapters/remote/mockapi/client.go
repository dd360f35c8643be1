package mockapi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"pet-studio/internal/domain/store"
	"pet-studio/internal/ports/remote"
)

// Client es el stand-in in-process del backend: devuelve datos fabricados con
// la misma forma que el contrato HTTP real. Los ids son opacos y monótonos
// (epoch millis, con desempate si dos llamadas caen en el mismo ms).
type Client struct {
	mu     sync.Mutex
	now    func() time.Time
	lastID int64

	failNext bool
}

func NewClient() *Client {
	return &Client{now: time.Now}
}

// ArmFailure fuerza la próxima llamada a fallar (para tests y para ensayar el
// camino de reintento de la UI).
func (c *Client) ArmFailure() {
	c.mu.Lock()
	c.failNext = true
	c.mu.Unlock()
}

func (c *Client) failIfArmed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failNext {
		c.failNext = false
		return fmt.Errorf("%w: simulated backend failure", remote.ErrRemote)
	}
	return nil
}

func (c *Client) nextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}

func (c *Client) Login(ctx context.Context, email, provider string) (store.User, error) {
	if err := c.failIfArmed(); err != nil {
		return store.User{}, err
	}
	if strings.TrimSpace(email) == "" {
		email = "luna@example.com"
	}
	return store.User{
		ID:           "1",
		Name:         "Luna Kim",
		Email:        email,
		ProfileImage: nil,
		JoinDate:     "2025년 4월",
	}, nil
}

func (c *Client) Signup(ctx context.Context, email, name, provider string) (store.User, error) {
	u, err := c.Login(ctx, email, provider)
	if err != nil {
		return store.User{}, err
	}
	if strings.TrimSpace(name) != "" {
		u.Name = strings.TrimSpace(name)
	}
	return u, nil
}

func (c *Client) ListPets(ctx context.Context, userID string) ([]store.Pet, error) {
	if err := c.failIfArmed(); err != nil {
		return nil, err
	}
	return []store.Pet{
		{
			ID:           1,
			Name:         "멍이",
			Type:         "강아지",
			Breed:        "포메라니안",
			Age:          2,
			Gender:       "남아",
			Description:  "활발하고 장난기 많은 포메라니안입니다. 노란색 털이 매력적이에요.",
			ProfileImage: "/pet-profiles/gomsooni.png",
			Style:        "꽃단장 프로필",
			CreatedAt:    "2025년 4월 10일",
		},
	}, nil
}

func (c *Client) CreatePet(ctx context.Context, in remote.CreatePetInput) (store.Pet, error) {
	if err := c.failIfArmed(); err != nil {
		return store.Pet{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "멍이"
	}
	return store.Pet{
		ID:           c.nextID(),
		Name:         name,
		Type:         in.Type,
		Breed:        in.Breed,
		Age:          in.Age,
		Gender:       in.Gender,
		Description:  in.Description,
		ProfileImage: "/placeholder.svg",
		Style:        "",
		CreatedAt:    c.now().Format(time.RFC3339),
	}, nil
}

func (c *Client) ListProfiles(ctx context.Context, userID string) ([]store.ProfileResult, error) {
	if err := c.failIfArmed(); err != nil {
		return nil, err
	}
	return []store.ProfileResult{
		{
			ID:      1,
			PetID:   1,
			PetName: "멍이",
			Style:   "꽃단장 프로필",
			Date:    "2025.04.15",
			Image:   "/pet-profiles/gomsooni.png",
			Likes:   12,
		},
	}, nil
}

func (c *Client) CreateProfile(ctx context.Context, in remote.CreateProfileInput) (store.ProfileResult, error) {
	if err := c.failIfArmed(); err != nil {
		return store.ProfileResult{}, err
	}
	return store.ProfileResult{
		ID:      c.nextID(),
		PetID:   in.PetID,
		PetName: "멍이",
		Style:   in.Style,
		Date:    c.now().Format("2006.01.02"),
		Image:   "/pet-profiles/gomsooni.png",
		Likes:   0,
	}, nil
}
