package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fishcatch/internal/agent"
)

// RegisterRoutes mounts the login endpoint under /api/v1/auth.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/api/v1/auth/login", handleLogin(svc))
}

func handleLogin(svc *Service) http.HandlerFunc {
	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	type loginResponse struct {
		Token string `json:"token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		token, err := svc.Login(req.Username, req.Password)
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(loginResponse{Token: token})
	}
}

// Middleware enforces a valid bearer token on protected routes. Every
// rejected request is run through the data-access guardrail so the 401
// body carries the coached explanation, not just a status code.
func Middleware(svc *Service, a *agent.Agent) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !svc.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token != "" {
				if _, err := svc.Verify(token); err == nil {
					next.ServeHTTP(w, r)
					return
				}
			}

			validation, err := a.ValidateDataAccess(r.Context(), false, r.URL.Path)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(validation)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
