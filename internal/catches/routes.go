package catches

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fishcatch/internal/agent"
)

// RegisterRoutes mounts catch-log endpoints under /api/v1/catches.
// Every new catch passes through guardrail validation before storage.
func RegisterRoutes(r chi.Router, store *Store, a *agent.Agent) {
	r.Route("/api/v1/catches", func(r chi.Router) {
		r.Post("/", handleCreate(store, a))
		r.Get("/", handleList(store))
		r.Get("/stats", handleStats(store))
		r.Get("/{id}", handleGet(store))
	})
}

func handleCreate(store *Store, a *agent.Agent) http.HandlerFunc {
	type createRequest struct {
		FishType string  `json:"fish_type"`
		Pounds   float64 `json:"pounds"`
		CaughtAt string  `json:"caught_at,omitempty"`
	}
	type createResponse struct {
		Catch      *Catch              `json:"catch"`
		Validation *agent.ValidationResult `json:"validation"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		validation, err := a.ValidateCatchLog(r.Context(), req.FishType, req.Pounds)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if validation.Blocked {
			writeJSON(w, http.StatusUnprocessableEntity, createResponse{Validation: validation})
			return
		}

		caughtAt := time.Now().UTC()
		if req.CaughtAt != "" {
			parsed, err := time.Parse(time.RFC3339, req.CaughtAt)
			if err != nil {
				http.Error(w, "caught_at must be RFC 3339", http.StatusBadRequest)
				return
			}
			caughtAt = parsed
		}

		c, err := store.Create(r.Context(), req.FishType, req.Pounds, caughtAt)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, createResponse{Catch: c, Validation: validation})
	}
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		catches, err := store.List(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if catches == nil {
			catches = []Catch{}
		}
		writeJSON(w, http.StatusOK, catches)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if c == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func handleStats(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.Stats(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if stats == nil {
			stats = []Stat{}
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
