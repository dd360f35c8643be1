package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, c *Catalog) {
	r.Get("/styles", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, c.Styles())
	})
	r.Get("/gallery", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, c.Gallery())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
