package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fishcatch/internal/agent"
	"fishcatch/internal/auth"
	"fishcatch/internal/buyers"
	"fishcatch/internal/catches"
	"fishcatch/internal/coach"
	"fishcatch/internal/config"
	"fishcatch/internal/db"
	"fishcatch/internal/llm"
	"fishcatch/internal/messages"
	"fishcatch/internal/prices"
	"fishcatch/internal/sales"
)

// Server hosts the fishcatch API: catch logging, buyer outreach, price
// tracking, and the coaching event log.
type Server struct {
	cfg        *config.Config
	db         *db.DB
	engine     *coach.Engine
	agent      *agent.Agent
	router     chi.Router
	httpServer *http.Server
}

// New wires the full service: stores over the database, the coaching
// engine, the drafting agent, and all feature routes.
func New(cfg *config.Config, database *db.DB, provider llm.Provider) *Server {
	engine := coach.New(coach.NewSQLStore(database))
	salesAgent := agent.New(engine, provider, cfg.Model, cfg.AgentID)

	s := &Server{
		cfg:    cfg,
		db:     database,
		engine: engine,
		agent:  salesAgent,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	authSvc := auth.NewService(s.cfg.Auth)
	auth.RegisterRoutes(r, authSvc)

	catchStore := catches.NewStore(s.db)
	buyerStore := buyers.NewStore(s.db)
	priceStore := prices.NewStore(s.db)
	messageStore := messages.NewStore(s.db)
	saleStore := sales.NewStore(s.db)

	// Everything below requires an authenticated session; rejected
	// requests carry the coached data-access explanation.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authSvc, s.agent))

		catches.RegisterRoutes(r, catchStore, s.agent)
		buyers.RegisterRoutes(r, buyerStore)
		prices.RegisterRoutes(r, priceStore, prices.NewScraper(priceStore))
		sales.RegisterRoutes(r, saleStore)
		coach.RegisterRoutes(r, s.engine)
		messages.RegisterRoutes(r, messages.Deps{
			Messages:        messageStore,
			Buyers:          buyerStore,
			Catches:         catchStore,
			Prices:          priceStore,
			Agent:           s.agent,
			Sender:          messages.NewSender(s.cfg.SMTP),
			RecontactWindow: time.Duration(s.cfg.RecontactHours) * time.Hour,
		})
	})

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Agent returns the drafting agent.
func (s *Server) Agent() *agent.Agent { return s.agent }

// Engine returns the coaching engine.
func (s *Server) Engine() *coach.Engine { return s.engine }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("fishcatch server listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
