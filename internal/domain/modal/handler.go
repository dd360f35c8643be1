package modal

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pet-studio/internal/domain/session"
)

func RegisterRoutes(r chi.Router, c *Coordinator, sess *session.Manager) {
	r.Route("/modal", func(mr chi.Router) {
		mr.Get("/", stateHandler(c))
		mr.Post("/resolve", resolveHandler(c, sess))
	})
}

type modalStateResponse struct {
	Active Modal `json:"active"`
	Queued Modal `json:"queued"`
}

func stateHandler(c *Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, modalStateResponse{
			Active: c.Active(),
			Queued: c.Queued(),
		})
	}
}

type resolveRequest struct {
	Success bool `json:"success"`

	// Datos de alta, solo relevantes cuando el modal activo es el signup.
	Email    string `json:"email"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

func resolveHandler(c *Coordinator, sess *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		// El signup corre antes de resolver: si el remoto falla, el modal
		// sigue abierto y la UI puede reintentar.
		if req.Success && c.Active() == ModalSignup {
			if _, err := sess.Signup(r.Context(), req.Email, req.Name, req.Provider); err != nil {
				http.Error(w, "signup failed", http.StatusBadGateway)
				return
			}
		}

		if err := c.Resolve(r.Context(), req.Success); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, modalStateResponse{
			Active: c.Active(),
			Queued: c.Queued(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
