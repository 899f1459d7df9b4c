package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fishcatch",
	Short: "Guardrailed sales outreach for a small commercial fishing operation",
	Long: `Fishcatch logs catches, tracks cannery prices, and drafts text
messages to buyers. Every machine-generated draft is validated against
business-integrity guardrails before it can leave the system, and every
violation produces coaching that escalates on repetition.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".fishcatch.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
