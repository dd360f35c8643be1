package session

import (
	"context"
	"errors"
	"fmt"

	"pet-studio/internal/domain/quota"
	"pet-studio/internal/domain/store"
	"pet-studio/internal/ports/remote"
)

// ErrNotLoggedIn: la operación requiere sesión iniciada.
var ErrNotLoggedIn = errors.New("session: not logged in")

// Manager es el dueño del flag de sesión y del User actual. Toda la mutación
// durable pasa por el Store; acá solo vive el ciclo login/logout.
type Manager struct {
	store     *store.Store
	remote    remote.Client
	freeLimit int
}

func NewManager(st *store.Store, rc remote.Client, freeLimit int) *Manager {
	return &Manager{
		store:     st,
		remote:    rc,
		freeLimit: freeLimit,
	}
}

func (m *Manager) IsLoggedIn() bool {
	return m.store.IsLoggedIn()
}

func (m *Manager) CurrentUser() (store.User, bool) {
	return m.store.User()
}

func (m *Manager) Quota() quota.Counter {
	return m.store.Quota()
}

// Login autentica contra el servicio remoto y establece la sesión local.
// Si el remoto falla, el estado no cambia.
func (m *Manager) Login(ctx context.Context, email, provider string) (store.User, error) {
	u, err := m.remote.Login(ctx, email, provider)
	if err != nil {
		return store.User{}, fmt.Errorf("session: login: %w", err)
	}
	return u, m.establish(u)
}

// Signup registra y deja la sesión iniciada: completar el alta loguea.
func (m *Manager) Signup(ctx context.Context, email, name, provider string) (store.User, error) {
	u, err := m.remote.Signup(ctx, email, name, provider)
	if err != nil {
		return store.User{}, fmt.Errorf("session: signup: %w", err)
	}
	return u, m.establish(u)
}

func (m *Manager) establish(u store.User) error {
	if err := m.store.SetLoggedIn(true); err != nil {
		return err
	}
	if err := m.store.SetUser(u); err != nil {
		return err
	}
	// Contador inicial solo si no había uno (un usuario que ya gastó usos no
	// recupera cupo por volver a loguearse dentro de la misma sesión local).
	if !m.store.QuotaInitialized() {
		return m.store.SetQuota(quota.NewCounter(m.freeLimit))
	}
	return nil
}

// Refresh rehidrata pets y resultados desde el servicio remoto, pisando las
// colecciones locales con la vista del backend.
func (m *Manager) Refresh(ctx context.Context) error {
	u, ok := m.store.User()
	if !ok {
		return ErrNotLoggedIn
	}

	pets, err := m.remote.ListPets(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("session: refresh: %w", err)
	}
	profiles, err := m.remote.ListProfiles(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("session: refresh: %w", err)
	}
	return m.store.ReplaceCollections(pets, profiles)
}

// Logout apaga la sesión y borra TODO el estado local scoped al usuario
// (user, pets, resultados, cuota), memoria y espejo. Evita que datos viejos se
// filtren a la vista deslogueada, a costa de que re-loguearse en el mismo
// device arranque de cero.
func (m *Manager) Logout() error {
	if err := m.store.SetLoggedIn(false); err != nil {
		return err
	}
	return m.store.ResetUserData()
}
