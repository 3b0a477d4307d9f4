// Package main provides the introbird CLI: the HTTP API server plus one-shot generation commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "introbird",
	Short: "IntroBird email and message assistant",
	Long: `IntroBird drafts email replies, job postings, job applications, casual inquiries and rewrites
with a language model, optionally personalized from a stored user profile.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file (environment variables override its values)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
