package messages

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fishcatch/internal/agent"
	"fishcatch/internal/buyers"
	"fishcatch/internal/catches"
	"fishcatch/internal/prices"
)

// Deps are the collaborators the outreach endpoints orchestrate.
type Deps struct {
	Messages        *Store
	Buyers          *buyers.Store
	Catches         *catches.Store
	Prices          *prices.Store
	Agent           *agent.Agent
	Sender          *Sender
	RecontactWindow time.Duration
}

// RegisterRoutes mounts the outreach and message endpoints.
func RegisterRoutes(r chi.Router, deps Deps) {
	r.Post("/api/v1/contact-buyers", handleContactBuyers(deps))
	r.Route("/api/v1/messages", func(r chi.Router) {
		r.Get("/", handleList(deps.Messages))
		r.Get("/{id}", handleGet(deps.Messages))
		r.Post("/{id}/send", handleSend(deps))
	})
}

// handleContactBuyers resolves the fact set, runs drafting and
// validation, and stores every accepted draft for operator review.
func handleContactBuyers(deps Deps) http.HandlerFunc {
	type contactRequest struct {
		CatchID string `json:"catch_id,omitempty"`
	}
	type contactResponse struct {
		*agent.BatchResult
		Messages []Message `json:"messages"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
		}
		ctx := r.Context()

		var logged *catches.Catch
		var err error
		if req.CatchID != "" {
			logged, err = deps.Catches.Get(ctx, req.CatchID)
		} else {
			logged, err = deps.Catches.Latest(ctx)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if logged == nil {
			http.Error(w, "no catch to offer; log a catch first", http.StatusBadRequest)
			return
		}

		quote, err := deps.Prices.LatestFor(ctx, logged.FishType)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var price *agent.Price
		if quote != nil {
			price = &agent.Price{FishType: quote.FishType, PerLb: quote.PerLb, Source: quote.CanneryName}
		}

		interested, err := deps.Buyers.InterestedIn(ctx, logged.FishType)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		candidates := make([]agent.Buyer, 0, len(interested))
		for _, b := range interested {
			recent, err := deps.Messages.RecentlyContacted(ctx, b.ID, deps.RecontactWindow)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			candidates = append(candidates, agent.Buyer{
				ID:                b.ID,
				Name:              b.Name,
				Phone:             b.Phone,
				PreferredFish:     b.PreferredFish,
				ContactedRecently: recent,
			})
		}

		result, err := deps.Agent.GenerateBuyerMessages(ctx,
			agent.Catch{FishType: logged.FishType, Pounds: logged.Pounds}, price, candidates)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		resp := contactResponse{BatchResult: result, Messages: []Message{}}
		for _, draft := range result.Drafts {
			m, err := deps.Messages.CreateDraft(ctx, draft.BuyerID, logged.ID, draft.Text)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			resp.Messages = append(resp.Messages, *m)
		}

		status := http.StatusOK
		if result.Blocked {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, resp)
	}
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		msgs, err := store.List(r.Context(), r.URL.Query().Get("buyer"), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if msgs == nil {
			msgs = []Message{}
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if m == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// handleSend delivers an approved draft through the SMS gateway.
func handleSend(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		m, err := deps.Messages.Get(ctx, chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if m == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if m.Status == "sent" {
			http.Error(w, "message already sent", http.StatusConflict)
			return
		}

		buyer, err := deps.Buyers.Get(ctx, m.BuyerID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if buyer == nil {
			http.Error(w, "buyer no longer exists", http.StatusConflict)
			return
		}

		if err := deps.Sender.Send(buyer.Phone, buyer.Carrier, m.Body); err != nil {
			if markErr := deps.Messages.MarkFailed(ctx, m.ID); markErr != nil {
				http.Error(w, markErr.Error(), http.StatusInternalServerError)
				return
			}
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		if err := deps.Messages.MarkSent(ctx, m.ID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		updated, err := deps.Messages.Get(ctx, m.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
