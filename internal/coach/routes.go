package coach

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fishcatch/internal/guardrail"
)

// RegisterRoutes mounts coaching-event endpoints under /api/v1/coaching-events.
func RegisterRoutes(r chi.Router, engine *Engine) {
	r.Route("/api/v1/coaching-events", func(r chi.Router) {
		r.Get("/", handleListEvents(engine))
		r.Get("/{id}", handleGetEvent(engine))
		r.Post("/{id}/outcome", handleRecordOutcome(engine))
	})
}

func handleListEvents(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := EventFilter{
			AgentID: q.Get("agent"),
			Limit:   50,
		}
		if v := q.Get("guardrail"); v != "" {
			filter.Guardrail = guardrail.Guardrail(v)
		}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}

		events, err := engine.Events(r.Context(), filter)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func handleGetEvent(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		event, err := engine.Event(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if event == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}

func handleRecordOutcome(engine *Engine) http.HandlerFunc {
	type outcomeRequest struct {
		Improved            bool `json:"improved"`
		ImprovementTimeline int  `json:"improvement_timeline"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req outcomeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		// Unknown ids are accepted: outcome recording is an out-of-band
		// hook and must stay idempotent.
		if err := engine.RecordOutcome(r.Context(), id, req.Improved, req.ImprovementTimeline); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
