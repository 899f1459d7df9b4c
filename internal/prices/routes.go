package prices

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts price and cannery endpoints under /api/v1.
func RegisterRoutes(r chi.Router, store *Store, scraper *Scraper) {
	r.Route("/api/v1/prices", func(r chi.Router) {
		r.Get("/", handleLatest(store))
		r.Post("/", handleAddManual(store))
		r.Get("/{fishType}/history", handleHistory(store))
		r.Post("/scrape", handleScrape(scraper))
	})
	r.Route("/api/v1/canneries", func(r chi.Router) {
		r.Get("/", handleListCanneries(store))
		r.Post("/", handleAddCannery(store))
	})
}

func handleLatest(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prices, err := store.Latest(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if prices == nil {
			prices = []Price{}
		}
		writeJSON(w, http.StatusOK, prices)
	}
}

func handleAddManual(store *Store) http.HandlerFunc {
	type addRequest struct {
		FishType string  `json:"fish_type"`
		PerLb    float64 `json:"price_per_lb"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req addRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		p, err := store.Add(r.Context(), req.FishType, req.PerLb, ManualSource, "")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func handleHistory(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		prices, err := store.History(r.Context(), chi.URLParam(r, "fishType"), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if prices == nil {
			prices = []Price{}
		}
		writeJSON(w, http.StatusOK, prices)
	}
}

func handleScrape(scraper *Scraper) http.HandlerFunc {
	type scrapeResponse struct {
		Scraped []Price  `json:"scraped"`
		Errors  []string `json:"errors,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		scraped, errs := scraper.ScrapeAll(r.Context())
		resp := scrapeResponse{Scraped: scraped}
		if resp.Scraped == nil {
			resp.Scraped = []Price{}
		}
		for _, err := range errs {
			resp.Errors = append(resp.Errors, err.Error())
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleListCanneries(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		canneries, err := store.Canneries(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if canneries == nil {
			canneries = []Cannery{}
		}
		writeJSON(w, http.StatusOK, canneries)
	}
}

func handleAddCannery(store *Store) http.HandlerFunc {
	type addRequest struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req addRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		c, err := store.AddCannery(r.Context(), req.Name, req.URL)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
