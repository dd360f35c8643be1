package store

import "fmt"

// Claves del esquema durable. Son independientes entre sí: la ausencia de una
// clave equivale a su default documentado (ver Load).
const (
	KeyIsLoggedIn     = "isLoggedIn"
	KeyUser           = "user"
	KeyPets           = "pets"
	KeyProfileResults = "profileResults"
	KeyLanguage       = "language"
	KeyQuota          = "quota"
)

// Mirror es el espejo durable del store (key → JSON).
// En el host real es el storage local del navegador; acá hay adapters de
// memoria, archivo y postgres (ver internal/adapters/persist).
type Mirror interface {
	// Put serializa v bajo key.
	Put(key string, v any) error
	// Get deserializa en out; ok=false si la key no existe.
	Get(key string, out any) (bool, error)
	// Delete borra la key; borrar una key inexistente no es error.
	Delete(key string) error
}

// WriteError señala que el espejo durable falló. El estado en memoria ya fue
// aplicado y sigue siendo la fuente de verdad para la sesión; el caller debe
// avisar al usuario que el cambio puede no sobrevivir un reload.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store: mirror write failed for %q: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
