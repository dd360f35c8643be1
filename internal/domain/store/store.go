package store

import (
	"errors"
	"sync"

	"pet-studio/internal/domain/quota"
)

var (
	ErrNotFound = errors.New("not found")
)

type Options struct {
	// QuotaLimit es el límite de generaciones gratuitas para contadores nuevos.
	QuotaLimit int
	// DefaultLanguage se usa cuando el espejo no tiene la key language.
	DefaultLanguage string
}

// Store es el único escritor del estado durable: User, Pet[], ProfileResult[],
// flag de sesión, idioma y contador de cuota. Toda mutación actualiza primero
// la memoria y después serializa sincrónicamente al Mirror, en ese orden.
//
// Política de fallas: si el espejo falla, la memoria NO se revierte (la memoria
// es la fuente de verdad de la sesión); se devuelve *WriteError para que el
// caller avise.
type Store struct {
	mu     sync.RWMutex
	mirror Mirror
	opts   Options

	loggedIn bool
	user     *User
	pets     []Pet
	results  []ProfileResult
	language string
	counter  quota.Counter

	// quotaSet indica si el contador vino del espejo o fue seteado explícito
	// (vs. el default fabricado en Load). SessionManager lo usa para saber si
	// debe establecer el contador inicial.
	quotaSet bool
}

func New(m Mirror, opts Options) *Store {
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "ko"
	}
	return &Store{
		mirror:   m,
		opts:     opts,
		pets:     make([]Pet, 0),
		results:  make([]ProfileResult, 0),
		language: opts.DefaultLanguage,
		counter:  quota.NewCounter(opts.QuotaLimit),
	}
}

// Load hidrata el estado desde el espejo. Keys ausentes ⇒ defaults:
// isLoggedIn=false, user=null, colecciones vacías, idioma configurado,
// contador en cero con el límite configurado.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.mirror.Get(KeyIsLoggedIn, &s.loggedIn); err != nil {
		return err
	}

	var u User
	okUser, err := s.mirror.Get(KeyUser, &u)
	if err != nil {
		return err
	}
	if okUser {
		s.user = &u
	}

	var pets []Pet
	okPets, err := s.mirror.Get(KeyPets, &pets)
	if err != nil {
		return err
	}
	if okPets && pets != nil {
		s.pets = pets
	}

	var results []ProfileResult
	okResults, err := s.mirror.Get(KeyProfileResults, &results)
	if err != nil {
		return err
	}
	if okResults && results != nil {
		s.results = results
	}

	var lang string
	okLang, err := s.mirror.Get(KeyLanguage, &lang)
	if err != nil {
		return err
	}
	if okLang && lang != "" {
		s.language = lang
	}

	var c quota.Counter
	okQuota, err := s.mirror.Get(KeyQuota, &c)
	if err != nil {
		return err
	}
	if okQuota {
		s.counter = c
		s.quotaSet = true
	}

	return nil
}

// ---- lecturas ----

func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Store) Pets() []Pet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Pet, len(s.pets))
	copy(out, s.pets)
	return out
}

func (s *Store) PetByID(id int64) (Pet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.pets {
		if p.ID == id {
			return p, true
		}
	}
	return Pet{}, false
}

func (s *Store) ProfileResults() []ProfileResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ProfileResult, len(s.results))
	copy(out, s.results)
	return out
}

func (s *Store) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

func (s *Store) Quota() quota.Counter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counter
}

func (s *Store) QuotaInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quotaSet
}

// ---- mutaciones ----

func (s *Store) SetLoggedIn(v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = v
	return s.put(KeyIsLoggedIn, s.loggedIn)
}

func (s *Store) SetUser(u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	return s.put(KeyUser, s.user)
}

func (s *Store) ClearUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	if err := s.mirror.Delete(KeyUser); err != nil {
		return &WriteError{Key: KeyUser, Err: err}
	}
	return nil
}

func (s *Store) SetLanguage(lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
	return s.put(KeyLanguage, s.language)
}

func (s *Store) SetQuota(c quota.Counter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter = c
	s.quotaSet = true
	return s.put(KeyQuota, s.counter)
}

func (s *Store) AddPet(p Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.pets {
		if existing.ID == p.ID {
			return errors.New("store: pet id already exists")
		}
	}
	s.pets = append(s.pets, p)
	return s.put(KeyPets, s.pets)
}

// UpdatePet aplica un patch parcial. Un id desconocido es no-op, no error
// (mutaciones disparadas por UI: "actualizar lo que quizás ya no está").
func (s *Store) UpdatePet(id int64, patch PetPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pets {
		if p.ID == id {
			s.pets[i] = patch.apply(p)
			return s.put(KeyPets, s.pets)
		}
	}
	return nil
}

// DeletePet borra por id; desconocido es no-op. Los ProfileResult que
// referencian la mascota se conservan (historial append-only).
func (s *Store) DeletePet(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pets {
		if p.ID == id {
			s.pets = append(s.pets[:i], s.pets[i+1:]...)
			return s.put(KeyPets, s.pets)
		}
	}
	return nil
}

func (s *Store) AddProfileResult(r ProfileResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return s.put(KeyProfileResults, s.results)
}

func (s *Store) DeleteProfileResult(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.results {
		if r.ID == id {
			s.results = append(s.results[:i], s.results[i+1:]...)
			return s.put(KeyProfileResults, s.results)
		}
	}
	return nil
}

func (s *Store) LikeProfileResult(id int64) (ProfileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.results {
		if r.ID == id {
			s.results[i].Likes++
			return s.results[i], s.put(KeyProfileResults, s.results)
		}
	}
	return ProfileResult{}, ErrNotFound
}

// ReplaceCollections pisa pets y resultados con la vista del backend.
// Lo usa el refresh de sesión; nil se normaliza a colección vacía.
func (s *Store) ReplaceCollections(pets []Pet, results []ProfileResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pets == nil {
		pets = make([]Pet, 0)
	}
	if results == nil {
		results = make([]ProfileResult, 0)
	}
	s.pets = pets
	s.results = results

	return errors.Join(
		s.put(KeyPets, s.pets),
		s.put(KeyProfileResults, s.results),
	)
}

// CommitGeneration es la transacción de fin de generación: registra la mascota
// (si es nueva), agrega el resultado y recién ahí incrementa la cuota. El
// incremento va atado al mismo commit que el ProfileResult para que un corte a
// mitad de flujo nunca cobre dos veces.
func (s *Store) CommitGeneration(p Pet, r ProfileResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := quota.RecordUsage(s.counter)
	if err != nil {
		return err
	}

	known := false
	for _, existing := range s.pets {
		if existing.ID == p.ID {
			known = true
			break
		}
	}
	if !known {
		s.pets = append(s.pets, p)
	}
	s.results = append(s.results, r)
	s.counter = updated
	s.quotaSet = true

	return errors.Join(
		s.put(KeyPets, s.pets),
		s.put(KeyProfileResults, s.results),
		s.put(KeyQuota, s.counter),
	)
}

// ResetUserData limpia todo lo scoped al usuario, en memoria y en el espejo.
// Lo usa el logout: un sign-out completo borra estado local a propósito (el
// usuario que vuelve a entrar en el mismo device arranca de cero).
func (s *Store) ResetUserData() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.pets = make([]Pet, 0)
	s.results = make([]ProfileResult, 0)
	s.counter = quota.NewCounter(s.opts.QuotaLimit)
	s.quotaSet = false

	var errs []error
	for _, key := range []string{KeyUser, KeyPets, KeyProfileResults, KeyQuota} {
		if err := s.mirror.Delete(key); err != nil {
			errs = append(errs, &WriteError{Key: key, Err: err})
		}
	}
	return errors.Join(errs...)
}

// put serializa una key ya bajo lock.
func (s *Store) put(key string, v any) error {
	if err := s.mirror.Put(key, v); err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}
