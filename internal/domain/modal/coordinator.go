package modal

import (
	"context"
	"sync"

	"pet-studio/internal/domain/wizard"
	"pet-studio/internal/platform/logger"
)

// Modal identifica los overlays interrumpientes. Son mutuamente excluyentes
// en pantalla: a lo sumo uno activo.
type Modal string

const (
	ModalNone         Modal = ""
	ModalSignup       Modal = "signup"
	ModalLimitReached Modal = "limitReached"
	ModalChannelAdd   Modal = "channelAdd"
)

// Coordinator secuencia los modales que dispara el WizardEngine sin
// bloquearlo: recibe las señales de suspensión, abre el overlay que toca y, al
// resolverse, llama de vuelta al engine (resume o close). Cola FIFO de
// profundidad 1: una tercera señal con dos pendientes se descarta con
// diagnóstico (no debería pasar, los puntos de suspensión son excluyentes).
type Coordinator struct {
	mu     sync.Mutex
	engine *wizard.Engine
	log    logger.Logger

	active Modal
	queued Modal
}

func NewCoordinator(engine *wizard.Engine, log logger.Logger) *Coordinator {
	if log == nil {
		log = logger.New(logger.Options{Level: logger.Error})
	}
	return &Coordinator{
		engine: engine,
		log:    log,
	}
}

func (c *Coordinator) Active() Modal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Coordinator) Queued() Modal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queued
}

// HandleOutcome traduce señales del engine a modales. Registrable como hook:
// engine.SetNotify(func(o wizard.Outcome) { c.HandleOutcome(o) }).
// No llama de vuelta al engine acá: el resume/close ocurre recién en Resolve.
func (c *Coordinator) HandleOutcome(o wizard.Outcome) {
	switch o.Signal {
	case wizard.SignalRequireAuth:
		c.Open(ModalSignup)
	case wizard.SignalQuotaExceeded:
		c.Open(ModalLimitReached)
	}
}

// Open activa el modal o lo encola si ya hay uno abierto.
func (c *Coordinator) Open(m Modal) {
	if m == ModalNone {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.active == ModalNone:
		c.active = m
	case c.queued == ModalNone:
		c.queued = m
	default:
		c.log.Warn("modal dropped: queue full", map[string]any{
			"dropped": string(m),
			"active":  string(c.active),
			"queued":  string(c.queued),
		})
	}
}

// Resolve cierra el modal activo. success refleja el resultado del overlay:
// - signup + success: la sesión ya se estableció (login/signup corrió antes);
//   se resume el advance diferido y se encola el modal de canal. Si el resume
//   falla (la sesión no quedó establecida), el signup sigue activo y el wizard
//   sigue suspendido, listo para reintentar.
// - signup sin success: se trata como si el usuario hubiera cerrado el wizard.
// - limitReached: con o sin success, el wizard se cierra (diseño actual; el
//   estado sería conceptualmente resumible si algún día hay upgrade de plan).
// - channelAdd: informativo, no toca el wizard.
func (c *Coordinator) Resolve(ctx context.Context, success bool) error {
	c.mu.Lock()
	resolved := c.active
	c.mu.Unlock()

	// El resume corre antes de soltar el modal, y sin el lock tomado: el engine
	// puede notificar de vuelta a HandleOutcome.
	if resolved == ModalSignup && success {
		if _, err := c.engine.ResumeAfterAuth(ctx); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.active = c.queued
	c.queued = ModalNone
	c.mu.Unlock()

	switch resolved {
	case ModalSignup:
		if success {
			c.Open(ModalChannelAdd)
			return nil
		}
		c.engine.Close()
	case ModalLimitReached:
		c.engine.Close()
	case ModalChannelAdd:
		// nada que resumir
	case ModalNone:
		c.log.Warn("resolve without active modal", nil)
	}
	return nil
}
