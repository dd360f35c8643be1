package wizard

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition es error de programación/cableado de UI: advance/back
// fuera de los estados permitidos. Nunca debería ser visible al usuario.
var ErrInvalidTransition = errors.New("invalid transition")

// Razones de validación conocidas.
const (
	ReasonEmptySelection   = "empty_selection"
	ReasonUnknownPhoto     = "unknown_photo"
	ReasonUnavailableStyle = "unavailable_style"
)

// ValidationError: el input del usuario viola el contrato del paso actual.
// Se recupera localmente (mismo paso, se muestra la razón).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// Signal es el canal lateral de un transition: condiciones esperadas de
// negocio que no son errores (suspensiones y finalización).
type Signal string

const (
	SignalNone          Signal = ""
	SignalRequireAuth   Signal = "requireAuth"
	SignalQuotaExceeded Signal = "quotaExceeded"
	SignalCompleted     Signal = "completed"
)

// Outcome es lo que el engine reporta por el hook de notificación cuando una
// transición ocurre sola (timers) o emite una señal. Err puede venir junto con
// un avance válido (p.ej. falla del espejo durable al commitear).
type Outcome struct {
	State  State
	Signal Signal
	Err    error
}
