// Package main implements the ragchat CLI, a retrieval-augmented chat
// session over local documents and optional live web search.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the YAML config file; empty means defaults plus
	// environment overrides.
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Retrieval-augmented chat over your documents",
	Long: `ragchat indexes a directory of text documents and answers questions
about them in an interactive chat session. Answers are grounded in the
indexed content; a live web search route can be enabled alongside it.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")
	rootCmd.AddCommand(chatCmd)
}
