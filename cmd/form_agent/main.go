// Package main provides the form_agent CLI: fill, inspect, and resolve
// application forms, and extract job postings from saved or live pages.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "form_agent",
	Short: "Semantic form filling and job-posting extraction",
	Long: "form_agent classifies the controls of an application form against a personal " +
		"profile, fills and verifies them, collects the fields it could not resolve for " +
		"later replay, and extracts structured job-posting records from the same pages.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
