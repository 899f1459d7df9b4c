package sales

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts sales endpoints under /api/v1/sales.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/v1/sales", func(r chi.Router) {
		r.Post("/", handleRecord(store))
		r.Get("/", handleList(store))
		r.Get("/summary", handleSummary(store))
	})
}

func handleRecord(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sale Sale
		if err := json.NewDecoder(r.Body).Decode(&sale); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		recorded, err := store.Record(r.Context(), sale)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, recorded)
	}
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		sales, err := store.List(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if sales == nil {
			sales = []Sale{}
		}
		writeJSON(w, http.StatusOK, sales)
	}
}

func handleSummary(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := store.Summarize(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
