// Package main provides the entry point for the scoping agent: a pipeline
// that turns a batch of translation-job documents into a complexity score,
// time estimate, and staffing plan.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scoping_agent",
	Short: "Translation project scoping pipeline",
	Long:  "Scoping agent analyzes translation-job documents, enriches them with historical project data, classifies their complexity, and produces effort estimates and planning reports.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
