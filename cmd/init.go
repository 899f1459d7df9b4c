package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"fishcatch/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively set up .fishcatch.yml",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard()
		if err != nil {
			return err
		}
		fmt.Printf("Provider: %s (%s)\n", cfg.Provider, cfg.Model)
		fmt.Println("Run 'fishcatch serve' to start the API.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
