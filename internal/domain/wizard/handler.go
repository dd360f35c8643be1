package wizard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pet-studio/internal/ports/remote"
)

func RegisterRoutes(r chi.Router, e *Engine) {
	r.Route("/wizard", func(wr chi.Router) {
		wr.Get("/", stateHandler(e))
		wr.Post("/start", startHandler(e))
		wr.Post("/advance", advanceHandler(e))
		wr.Post("/toggle", toggleHandler(e))
		wr.Post("/back", backHandler(e))
		wr.Post("/close", closeHandler(e))
		wr.Post("/resume", resumeHandler(e))
		wr.Post("/retry", retryHandler(e))
	})
}

type transitionResponse struct {
	State  State  `json:"state"`
	Signal Signal `json:"signal,omitempty"`
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func stateHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, transitionResponse{State: e.Snapshot()})
	}
}

func startHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, transitionResponse{State: e.Start()})
	}
}

func advanceHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p Payload
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		st, sig, err := e.Advance(r.Context(), p)
		writeTransition(w, st, sig, err)
	}
}

func toggleHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PhotoID int `json:"photoId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		st, err := e.TogglePhoto(req.PhotoID)
		writeTransition(w, st, SignalNone, err)
	}
}

func backHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := e.Back()
		writeTransition(w, st, SignalNone, err)
	}
}

func closeHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, transitionResponse{State: e.Close()})
	}
}

func resumeHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := e.ResumeAfterAuth(r.Context())
		writeTransition(w, st, SignalNone, err)
	}
}

func retryHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := e.Retry(r.Context())
		writeTransition(w, st, SignalNone, err)
	}
}

// writeTransition mapea la taxonomía de errores a HTTP:
// - ValidationError → 422 con la razón (la UI se queda en el paso y la muestra);
// - ErrInvalidTransition → 409 (error de cableado, nunca user-visible);
// - falla remota → 502 reintentable;
// - señales van en el body con status 200.
func writeTransition(w http.ResponseWriter, st State, sig Signal, err error) {
	var valErr *ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, transitionResponse{State: st, Signal: sig})
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusUnprocessableEntity, transitionResponse{
			State:  st,
			Error:  "validation_failed",
			Reason: valErr.Reason,
		})
	case errors.Is(err, ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, transitionResponse{
			State: st,
			Error: "invalid_transition",
		})
	case errors.Is(err, remote.ErrRemote):
		writeJSON(w, http.StatusBadGateway, transitionResponse{
			State: st,
			Error: "remote_failure",
		})
	default:
		writeJSON(w, http.StatusInternalServerError, transitionResponse{
			State: st,
			Error: "internal",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
