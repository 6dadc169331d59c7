package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/form-agent/internal/engine"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Census the form without filling anything",
	Long: "Analyze discovers and classifies every control on the page, then reports " +
		"which fields the taxonomy recognized, which it did not, and which already " +
		"hold a value. Nothing is written to the page or the profile.",
	RunE: runAnalyze,
}

var analyzeJSON bool

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	provider, cleanup, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	a := newAgent(provider, cfg, log)
	analysis, err := a.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		out, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	}

	fmt.Fprintf(os.Stdout, "Portal: %s\n", analysis.Portal)
	fmt.Fprintf(os.Stdout, "Recognized fields (%d):\n", len(analysis.Detected))
	for _, c := range analysis.Detected {
		printControlReport(c)
	}
	if len(analysis.Undetected) > 0 {
		fmt.Fprintf(os.Stdout, "\nUnrecognized fields (%d):\n", len(analysis.Undetected))
		for _, c := range analysis.Undetected {
			printControlReport(c)
		}
	}
	if len(analysis.AlreadyFilled) > 0 {
		fmt.Fprintf(os.Stdout, "\nAlready filled (%d):\n", len(analysis.AlreadyFilled))
		for _, c := range analysis.AlreadyFilled {
			printControlReport(c)
		}
	}
	return nil
}

func printControlReport(c engine.ControlReport) {
	line := fmt.Sprintf("  - %s [%s]", c.Label, c.Kind)
	if c.FieldType != "" {
		line += fmt.Sprintf(" -> %s", c.FieldType)
	}
	if c.Required {
		line += " (required)"
	}
	if c.Value != "" {
		line += fmt.Sprintf(" = %q", c.Value)
	}
	fmt.Fprintln(os.Stdout, line)
}
