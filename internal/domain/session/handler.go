package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pet-studio/internal/domain/quota"
	"pet-studio/internal/domain/store"
)

func RegisterRoutes(r chi.Router, svc *Manager) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/login", loginHandler(svc))
		ar.Post("/signup", signupHandler(svc))
		ar.Post("/logout", logoutHandler(svc))
		ar.Post("/refresh", refreshHandler(svc))
	})
	r.Get("/me", meHandler(svc))
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

type sessionResponse struct {
	IsLoggedIn bool          `json:"isLoggedIn"`
	User       *store.User   `json:"user"`
	Quota      quota.Counter `json:"quota"`
	Remaining  int           `json:"remaining"`
	// Warning se setea cuando el espejo durable falló: el cambio vale en
	// memoria pero puede no sobrevivir un reload.
	Warning string `json:"warning,omitempty"`
}

func loginHandler(svc *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Login(r.Context(), req.Email, req.Provider)
		writeSessionResult(w, svc, u, err)
	}
}

func signupHandler(svc *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Signup(r.Context(), req.Email, req.Name, req.Provider)
		writeSessionResult(w, svc, u, err)
	}
}

func writeSessionResult(w http.ResponseWriter, svc *Manager, u store.User, err error) {
	var writeErr *store.WriteError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, sessionResponse{
			IsLoggedIn: true,
			User:       &u,
			Quota:      svc.Quota(),
			Remaining:  quota.Remaining(svc.Quota()),
		})
	case errors.As(err, &writeErr):
		// Falla de storage no es fatal: la sesión quedó establecida en memoria.
		writeJSON(w, http.StatusOK, sessionResponse{
			IsLoggedIn: true,
			User:       &u,
			Quota:      svc.Quota(),
			Remaining:  quota.Remaining(svc.Quota()),
			Warning:    "storage_write_failed",
		})
	default:
		http.Error(w, "login failed", http.StatusBadGateway)
	}
}

func refreshHandler(svc *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.Refresh(r.Context())
		var writeErr *store.WriteError
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		case errors.As(err, &writeErr):
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "warning": "storage_write_failed"})
		case errors.Is(err, ErrNotLoggedIn):
			http.Error(w, "login required", http.StatusUnauthorized)
		default:
			http.Error(w, "refresh failed", http.StatusBadGateway)
		}
	}
}

func logoutHandler(svc *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(); err != nil {
			var writeErr *store.WriteError
			if errors.As(err, &writeErr) {
				writeJSON(w, http.StatusOK, map[string]string{"warning": "storage_write_failed"})
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func meHandler(svc *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := sessionResponse{
			IsLoggedIn: svc.IsLoggedIn(),
			Quota:      svc.Quota(),
			Remaining:  quota.Remaining(svc.Quota()),
		}
		if u, ok := svc.CurrentUser(); ok {
			resp.User = &u
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
