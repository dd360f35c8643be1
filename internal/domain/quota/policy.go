package quota

import "errors"

var (
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// Counter lleva la cuenta de generaciones gratuitas por usuario.
// Se persiste junto con el usuario; Used nunca supera Limit.
type Counter struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

// NewCounter crea un contador en cero con el límite configurado.
func NewCounter(limit int) Counter {
	if limit < 0 {
		limit = 0
	}
	return Counter{Used: 0, Limit: limit}
}

// CanGenerate decide si queda cupo. Función pura: el caller decide qué hacer.
func CanGenerate(c Counter) bool {
	return c.Used < c.Limit
}

// RecordUsage devuelve el contador incrementado.
// Precondición: CanGenerate(c). Si no se cumple, falla sin mutar nada; el
// caller debe chequear antes de llamar.
func RecordUsage(c Counter) (Counter, error) {
	if !CanGenerate(c) {
		return c, ErrQuotaExceeded
	}
	c.Used++
	return c, nil
}

// Remaining es un helper para la UI (nunca negativo).
func Remaining(c Counter) int {
	if c.Used >= c.Limit {
		return 0
	}
	return c.Limit - c.Used
}
