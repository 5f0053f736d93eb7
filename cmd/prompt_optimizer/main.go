// Package main provides the prompt_optimizer CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prompt_optimizer",
	Short: "Prompt optimization pipeline",
	Long: `prompt_optimizer rewrites prompts for generative AI models.

The quick flow applies a single rewrite pass. The premium flow analyzes the prompt, asks
clarifying questions and builds a new prompt from the answers, flagging any content the
user never asked for.

Records are stored in PostgreSQL when DATABASE_URL is set, otherwise in memory for the
duration of one command.`,
	SilenceUsage: true,
}

var (
	rootConfigPath  string
	rootVerbose     bool
	rootUser        string
	rootAPIKey      string
	rootDatabaseURL string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Print human-readable output and debug logs")
	rootCmd.PersistentFlags().StringVar(&rootUser, "user", "", "User ID that owns created records (defaults to the local user)")
	rootCmd.PersistentFlags().StringVar(&rootAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	rootCmd.PersistentFlags().StringVar(&rootDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
