package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"fishcatch/internal/config"
	"fishcatch/internal/db"
	"fishcatch/internal/llm"
	"fishcatch/internal/prices"
	"fishcatch/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fishcatch API server",
	Long:  `Starts the REST API for catch logging, buyer outreach, price tracking, and the coaching event log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if servePort != 0 {
			cfg.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		dbPath := filepath.Join(cfg.DataDir, "fishcatch.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		// Canneries from config are registered once so the scraper
		// endpoint has sources on a fresh database.
		if err := seedCanneries(cmd.Context(), database, cfg); err != nil {
			return fmt.Errorf("seeding canneries: %w", err)
		}

		provider, err := createProvider(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM drafting disabled: %v\n", err)
		}

		srv := server.New(cfg, database, provider)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "fishcatch v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  Agent: %s\n", cfg.AgentID)

		return srv.Start()
	},
}

// createProvider builds the drafting provider, rate limited when
// configured. A missing API key is not fatal; drafting falls back to
// the deterministic template.
func createProvider(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.RateLimitRPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RateLimitRPM)
	}
	return provider, nil
}

// seedCanneries registers configured cannery sources that are not yet
// in the database.
func seedCanneries(ctx context.Context, database *db.DB, cfg *config.Config) error {
	store := prices.NewStore(database)
	existing, err := store.Canneries(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[c.URL] = true
	}
	for _, src := range cfg.Canneries {
		if known[src.URL] {
			continue
		}
		if _, err := store.AddCannery(ctx, src.Name, src.URL); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
