package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fishcatch/internal/buyers"
	"fishcatch/internal/config"
	"fishcatch/internal/db"
)

var importTemplate bool

var importCmd = &cobra.Command{
	Use:   "import [buyers.csv]",
	Short: "Import buyer contacts from a CSV file",
	Long: `Imports buyers from a CSV with columns name, phone, carrier, email,
preferred_fish, notes. Use --template to print a starter file instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if importTemplate {
			return buyers.WriteTemplate(os.Stdout)
		}
		if len(args) != 1 {
			return fmt.Errorf("provide a CSV path or --template")
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "fishcatch.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		result, err := buyers.ImportCSV(cmd.Context(), buyers.NewStore(database), args[0], true)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d buyers\n", result.Imported)
		for _, skipped := range result.Skipped {
			fmt.Fprintf(os.Stderr, "  skipped %s\n", skipped)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importTemplate, "template", false, "print a starter CSV to stdout")
	rootCmd.AddCommand(importCmd)
}
