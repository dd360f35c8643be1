package store

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pet-studio/internal/platform/i18n"
)

func RegisterRoutes(r chi.Router, st *Store) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", listPetsHandler(st))
		pr.Patch("/{petID}", updatePetHandler(st))
		pr.Delete("/{petID}", deletePetHandler(st))
	})

	r.Route("/profiles", func(pr chi.Router) {
		pr.Get("/", listProfilesHandler(st))
		pr.Delete("/{profileID}", deleteProfileHandler(st))
		pr.Post("/{profileID}/like", likeProfileHandler(st))
	})

	r.Get("/language", getLanguageHandler(st))
	r.Put("/language", setLanguageHandler(st))
}

func listPetsHandler(st *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, st.Pets())
	}
}

func updatePetHandler(st *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r, "petID")
		if !ok {
			return
		}

		var patch PetPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		// Id desconocido es no-op exitoso, no 404: la UI puede estar pisando
		// algo que ya se borró.
		writeMutationResult(w, st.UpdatePet(id, patch))
	}
}

func deletePetHandler(st *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r, "petID")
		if !ok {
			return
		}
		writeMutationResult(w, st.DeletePet(id))
	}
}

func listProfilesHandler(st *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, st.ProfileResults())
	}
}

func deleteProfileHandler(st *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r, "profileID")
		if !ok {
			return
		}
		writeMutationResult(w, st.DeleteProfileResult(id))
	}
}

func likeProfileHandler(st *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r, "profileID")
		if !ok {
			return
		}

		res, err := st.LikeProfileResult(id)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		var writeErr *WriteError
		if errors.As(err, &writeErr) {
			writeJSON(w, http.StatusOK, map[string]any{"profile": res, "warning": "storage_write_failed"})
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": res})
	}
}

func getLanguageHandler(st *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := st.Language()
		writeJSON(w, http.StatusOK, map[string]any{
			"language": lang,
			"messages": i18n.Messages(i18n.ParseLang(lang)),
		})
	}
}

func setLanguageHandler(st *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Language string `json:"language"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		lang := i18n.ParseLang(req.Language)
		if !strings.EqualFold(strings.TrimSpace(req.Language), string(lang)) {
			http.Error(w, "language must be ko or ja", http.StatusBadRequest)
			return
		}
		writeMutationResult(w, st.SetLanguage(string(lang)))
	}
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeMutationResult mapea la política de fallas del store: falla del espejo
// no es fatal, se responde ok con warning.
func writeMutationResult(w http.ResponseWriter, err error) {
	var writeErr *WriteError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.As(err, &writeErr):
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "warning": "storage_write_failed"})
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
