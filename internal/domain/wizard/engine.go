package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pet-studio/internal/domain/catalog"
	"pet-studio/internal/domain/quota"
	"pet-studio/internal/domain/session"
	"pet-studio/internal/domain/store"
	"pet-studio/internal/platform/logger"
	"pet-studio/internal/ports/remote"
)

// PetInfo es lo que el usuario carga (opcional) antes de generar.
type PetInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Breed       string `json:"breed"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Description string `json:"description"`
}

// Pending es el sub-estado explícito de suspensión: un advance quedó diferido
// esperando un evento externo (auth o resolución de cuota).
type Pending struct {
	Reason Signal `json:"reason"`
	Resume Step   `json:"resume"`
}

// State es el estado transitorio de una instancia del wizard. Vive solo
// mientras el wizard está abierto; nunca se espeja al storage durable.
type State struct {
	ID      string   `json:"wizardId"`
	Step    Step     `json:"step"`
	Photos  []int    `json:"photos"`
	StyleID *int     `json:"styleId"`
	PetInfo *PetInfo `json:"petInfo"`
	Pending *Pending `json:"pending"`
	Active  bool     `json:"active"`
}

func (s State) clone() State {
	out := s
	out.Photos = append([]int(nil), s.Photos...)
	if s.StyleID != nil {
		v := *s.StyleID
		out.StyleID = &v
	}
	if s.PetInfo != nil {
		v := *s.PetInfo
		out.PetInfo = &v
	}
	if s.Pending != nil {
		v := *s.Pending
		out.Pending = &v
	}
	return out
}

// Payload de Advance; cada paso usa lo suyo y el resto se ignora.
type Payload struct {
	Photos  []int    `json:"photos"`
	StyleID int      `json:"styleId"`
	PetInfo *PetInfo `json:"petInfo"`
}

type Config struct {
	Flow          Flow
	UploadDelay   time.Duration
	GenerateDelay time.Duration
	// CloseDelay difiere el reset de Close para dejar correr la animación de
	// salida de la UI.
	CloseDelay time.Duration
}

// Engine es la máquina de estados del wizard. Una sola instancia activa por
// app: Start resetea, Close descarta. Las transiciones se procesan en orden de
// llegada bajo un mutex; los timers de uploading/generating se invalidan por
// comparación de generation id (gen), nunca limpiando variables, para que un
// completion viejo no pueda mutar una instancia nueva.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	session *session.Manager
	store   *store.Store
	remote  remote.Client
	catalog *catalog.Catalog
	log     logger.Logger

	gen    uint64
	state  State
	timer  *time.Timer
	notify func(Outcome)
}

func NewEngine(cfg Config, sess *session.Manager, st *store.Store, rc remote.Client, cat *catalog.Catalog, log logger.Logger) *Engine {
	if log == nil {
		log = logger.New(logger.Options{Level: logger.Error})
	}
	if cfg.Flow.MaxPhotos < 1 {
		cfg.Flow.MaxPhotos = 1
	}
	return &Engine{
		cfg:     cfg,
		session: sess,
		store:   st,
		remote:  rc,
		catalog: cat,
		log:     log,
		state: State{
			Step:   cfg.Flow.first(),
			Photos: make([]int, 0),
		},
	}
}

// SetNotify registra el hook de outcomes asíncronos (auto-avances y señales).
// El hook se invoca fuera del lock del engine; puede llamar de vuelta.
func (e *Engine) SetNotify(fn func(Outcome)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notify = fn
}

func (e *Engine) emit(o Outcome) {
	e.mu.Lock()
	fn := e.notify
	e.mu.Unlock()
	if fn != nil {
		fn(o)
	}
}

// Snapshot devuelve una copia del estado actual.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Start abre (o reabre) el wizard en el primer paso del flow configurado.
// Idempotente antes de cualquier transición: solo resetea selecciones.
func (e *Engine) Start() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelTimerLocked()
	e.gen++
	e.state = State{
		ID:     uuid.NewString(),
		Step:   e.cfg.Flow.first(),
		Photos: make([]int, 0),
		Active: true,
	}
	return e.state.clone()
}

// Advance valida el payload contra el contrato del paso actual, lo aplica y
// computa el siguiente paso. Las suspensiones (auth, cuota) salen como Signal,
// no como error.
func (e *Engine) Advance(ctx context.Context, p Payload) (State, Signal, error) {
	e.mu.Lock()

	if !e.state.Active || e.state.Pending != nil {
		return e.failInvalidLocked("advance")
	}

	switch e.state.Step {
	case StepGuidelines:
		next, ok := e.cfg.Flow.next(StepGuidelines)
		if !ok {
			return e.failInvalidLocked("advance")
		}
		e.state.Step = next

	case StepGallery:
		photos := p.Photos
		if photos == nil {
			// Sin payload explícito vale la selección acumulada por TogglePhoto.
			photos = e.state.Photos
		}
		if len(photos) < 1 || len(photos) > e.cfg.Flow.MaxPhotos {
			st := e.state.clone()
			e.mu.Unlock()
			return st, SignalNone, &ValidationError{Reason: ReasonEmptySelection}
		}
		for _, id := range photos {
			if !e.catalog.PhotoExists(id) {
				st := e.state.clone()
				e.mu.Unlock()
				return st, SignalNone, &ValidationError{Reason: ReasonUnknownPhoto}
			}
		}
		e.state.Photos = append([]int(nil), photos...)

		next, ok := e.cfg.Flow.next(StepGallery)
		if !ok {
			return e.failInvalidLocked("advance")
		}
		if !e.session.IsLoggedIn() {
			// Avance suspendido: no pasamos a StyleSelection todavía. El
			// coordinator abre el signup y llama ResumeAfterAuth al terminar.
			e.state.Pending = &Pending{Reason: SignalRequireAuth, Resume: next}
			out := Outcome{State: e.state.clone(), Signal: SignalRequireAuth}
			e.mu.Unlock()
			e.emit(out)
			return out.State, SignalRequireAuth, nil
		}
		e.state.Step = next

	case StepStyleSelection:
		if !e.catalog.StyleAvailable(p.StyleID) {
			st := e.state.clone()
			e.mu.Unlock()
			return st, SignalNone, &ValidationError{Reason: ReasonUnavailableStyle}
		}
		id := p.StyleID
		e.state.StyleID = &id
		if p.PetInfo != nil {
			info := *p.PetInfo
			e.state.PetInfo = &info
		}
		next, ok := e.cfg.Flow.next(StepStyleSelection)
		if !ok {
			return e.failInvalidLocked("advance")
		}
		e.state.Step = next
		if e.state.Step == StepUploading {
			e.armUploadLocked()
		}

	default:
		// uploading/generating avanzan solos; result es terminal.
		return e.failInvalidLocked("advance")
	}

	st := e.state.clone()
	e.mu.Unlock()
	return st, SignalNone, nil
}

// TogglePhoto aplica la semántica de toggle sobre la selección actual.
// Solo válido en el paso gallery; no resetea el wizard si se llama mal.
func (e *Engine) TogglePhoto(id int) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Active || e.state.Step != StepGallery || e.state.Pending != nil {
		return e.state.clone(), ErrInvalidTransition
	}
	if !e.catalog.PhotoExists(id) {
		return e.state.clone(), &ValidationError{Reason: ReasonUnknownPhoto}
	}
	e.state.Photos = toggleSelection(e.state.Photos, id, e.cfg.Flow.MaxPhotos)
	return e.state.clone(), nil
}

// ResumeAfterAuth completa el advance diferido por RequireAuth, conservando la
// selección de fotos (no se vuelve a pedir nada).
func (e *Engine) ResumeAfterAuth(ctx context.Context) (State, error) {
	e.mu.Lock()

	if !e.state.Active || e.state.Pending == nil || e.state.Pending.Reason != SignalRequireAuth {
		st, _, err := e.failInvalidLocked("resumeAfterAuth")
		return st, err
	}
	if !e.session.IsLoggedIn() {
		// El login todavía no ocurrió; el estado queda intacto para reintentar.
		st := e.state.clone()
		e.mu.Unlock()
		return st, errors.New("wizard: resume requires an authenticated session")
	}

	resume := e.state.Pending.Resume
	e.state.Pending = nil
	e.state.Step = resume
	if e.state.Step == StepUploading {
		e.armUploadLocked()
	}

	st := e.state.clone()
	e.mu.Unlock()
	return st, nil
}

// Back vuelve al paso anterior del flow conservando lo ya ingresado. Si había
// un completion asíncrono en vuelo, queda invalidado acá mismo. En result no
// hay vuelta atrás: el único egreso es Close.
func (e *Engine) Back() (State, error) {
	e.mu.Lock()

	if !e.state.Active || e.state.Step == StepResult {
		st, _, err := e.failInvalidLocked("back")
		return st, err
	}

	prev, ok := e.cfg.Flow.prev(e.state.Step)
	if !ok {
		st, _, err := e.failInvalidLocked("back")
		return st, err
	}

	e.cancelTimerLocked()
	e.gen++
	e.state.Pending = nil
	e.state.Step = prev
	if e.state.Step == StepUploading {
		e.armUploadLocked()
	}

	st := e.state.clone()
	e.mu.Unlock()
	return st, nil
}

// Close descarta el wizard: invalida timers ya, marca inactivo, y difiere el
// reset del estado el CloseDelay configurado (animación de salida). El reset
// diferido chequea gen por si un Start nuevo llegó dentro de la ventana.
func (e *Engine) Close() State {
	e.mu.Lock()
	e.cancelTimerLocked()
	e.gen++
	g := e.gen
	e.state.Active = false
	e.state.Pending = nil
	st := e.state.clone()
	delay := e.cfg.CloseDelay
	e.mu.Unlock()

	time.AfterFunc(delay, func() {
		e.mu.Lock()
		if e.gen == g {
			e.state = State{
				Step:   e.cfg.Flow.first(),
				Photos: make([]int, 0),
			}
		}
		e.mu.Unlock()
	})

	return st
}

// Retry rearma el paso asíncrono actual después de una falla remota. El estado
// no cambió con la falla, así que reintentar es volver a disparar el timer.
func (e *Engine) Retry(ctx context.Context) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Active || e.state.Pending != nil {
		return e.state.clone(), ErrInvalidTransition
	}

	switch e.state.Step {
	case StepUploading:
		e.gen++
		e.armUploadLocked()
	case StepGenerating:
		e.gen++
		e.armGenerateLocked()
	default:
		return e.state.clone(), ErrInvalidTransition
	}
	return e.state.clone(), nil
}

// ---- internals ----

// failInvalidLocked loguea la transición ilegal y resetea a un estado inicial
// seguro en vez de dejar el wizard corrupto. Devuelve con el lock liberado.
func (e *Engine) failInvalidLocked(op string) (State, Signal, error) {
	e.log.Warn("invalid wizard transition", map[string]any{
		"op":   op,
		"step": string(e.state.Step),
	})
	if e.state.Active {
		e.cancelTimerLocked()
		e.gen++
		e.state = State{
			ID:     e.state.ID,
			Step:   e.cfg.Flow.first(),
			Photos: make([]int, 0),
			Active: true,
		}
	}
	st := e.state.clone()
	e.mu.Unlock()
	return st, SignalNone, ErrInvalidTransition
}

func (e *Engine) cancelTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) armUploadLocked() {
	g := e.gen
	e.timer = time.AfterFunc(e.cfg.UploadDelay, func() {
		e.uploadDone(g)
	})
}

func (e *Engine) armGenerateLocked() {
	g := e.gen
	e.timer = time.AfterFunc(e.cfg.GenerateDelay, func() {
		e.generateDone(g)
	})
}

func (e *Engine) aliveLocked(g uint64, step Step) bool {
	return e.state.Active && e.gen == g && e.state.Step == step && e.state.Pending == nil
}

// uploadDone corre al completar la subida simulada. Antes de entrar a
// generating consulta la cuota: sin cupo no se incrementa nada y el paso
// generating nunca arranca.
func (e *Engine) uploadDone(g uint64) {
	e.mu.Lock()
	if !e.aliveLocked(g, StepUploading) {
		e.mu.Unlock()
		return
	}

	counter := e.store.Quota()
	if !quota.CanGenerate(counter) {
		e.state.Pending = &Pending{Reason: SignalQuotaExceeded, Resume: StepGenerating}
		out := Outcome{State: e.state.clone(), Signal: SignalQuotaExceeded}
		e.mu.Unlock()
		e.emit(out)
		return
	}

	e.state.Step = StepGenerating
	e.armGenerateLocked()
	out := Outcome{State: e.state.clone()}
	e.mu.Unlock()
	e.emit(out)
}

// generateDone corre al completar la generación simulada: registra la mascota
// y el perfil contra el servicio remoto y commitea resultado + cuota en una
// sola transacción del store. Las llamadas remotas van sin lock para que un
// Close en el medio se procese ya; el re-chequeo de gen descarta el resultado
// si eso pasó.
func (e *Engine) generateDone(g uint64) {
	e.mu.Lock()
	if !e.aliveLocked(g, StepGenerating) {
		e.mu.Unlock()
		return
	}

	var styleName string
	if e.state.StyleID != nil {
		if s, ok := e.catalog.Style(*e.state.StyleID); ok {
			styleName = s.Name
		}
	}
	var petIn remote.CreatePetInput
	if e.state.PetInfo != nil {
		petIn = remote.CreatePetInput{
			Name:        e.state.PetInfo.Name,
			Type:        e.state.PetInfo.Type,
			Breed:       e.state.PetInfo.Breed,
			Age:         e.state.PetInfo.Age,
			Gender:      e.state.PetInfo.Gender,
			Description: e.state.PetInfo.Description,
		}
	}
	photos := append([]int(nil), e.state.Photos...)
	e.mu.Unlock()

	ctx := context.Background()
	pet, err := e.remote.CreatePet(ctx, petIn)
	var res store.ProfileResult
	if err == nil {
		pet.Style = styleName
		res, err = e.remote.CreateProfile(ctx, remote.CreateProfileInput{
			PetID:  pet.ID,
			Style:  styleName,
			Photos: photos,
		})
	}

	e.mu.Lock()
	if !e.aliveLocked(g, StepGenerating) {
		// Close/Back mientras el remoto respondía: se descarta, no se cobra.
		e.mu.Unlock()
		return
	}

	if err != nil {
		// Falla remota reintentable: el estado no cambia, la UI puede Retry.
		out := Outcome{State: e.state.clone(), Err: fmt.Errorf("wizard: generation: %w", err)}
		e.mu.Unlock()
		e.emit(out)
		return
	}

	// Snapshot denormalizado: el nombre queda fijado al momento de generar.
	res.PetID = pet.ID
	res.PetName = pet.Name
	res.Style = styleName

	commitErr := e.store.CommitGeneration(pet, res)
	if errors.Is(commitErr, quota.ErrQuotaExceeded) {
		// Carrera perdida contra otro consumo de cuota.
		e.state.Pending = &Pending{Reason: SignalQuotaExceeded, Resume: StepResult}
		out := Outcome{State: e.state.clone(), Signal: SignalQuotaExceeded}
		e.mu.Unlock()
		e.emit(out)
		return
	}

	e.state.Step = StepResult
	// commitErr puede ser *store.WriteError: el avance vale igual, la memoria
	// manda; solo se reporta para que la UI avise.
	out := Outcome{State: e.state.clone(), Signal: SignalCompleted, Err: commitErr}
	e.mu.Unlock()
	e.emit(out)
}
