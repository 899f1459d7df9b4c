package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fishcatch/internal/config"
	"fishcatch/internal/db"
	"fishcatch/internal/prices"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape configured cannery pages for current prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "fishcatch.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		if err := seedCanneries(cmd.Context(), database, cfg); err != nil {
			return fmt.Errorf("seeding canneries: %w", err)
		}

		store := prices.NewStore(database)
		scraped, errs := prices.NewScraper(store).ScrapeAll(cmd.Context())
		for _, p := range scraped {
			fmt.Printf("%s: $%.2f/lb (%s)\n", p.FishType, p.PerLb, p.CanneryName)
		}
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		if len(scraped) == 0 && len(errs) > 0 {
			return fmt.Errorf("no prices scraped")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
