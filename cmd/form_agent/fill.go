package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/form-agent/internal/answer"
	"github.com/jonathan/form-agent/internal/config"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill an application form from the profile record",
	Long: "Fill discovers the form's controls, classifies each against the field " +
		"taxonomy, fills and verifies best-available answers, and prints the result " +
		"with any fields left for manual resolution.",
	RunE: runFill,
}

var fillJSON bool

func init() {
	fillCmd.Flags().BoolVar(&fillJSON, "json", false, "Print the full result as JSON")
	rootCmd.AddCommand(fillCmd)
}

func answerOptions(cfg config.Config) answer.Options {
	return answer.Options{ConservativeDefaults: cfg.ConservativeDefaults}
}

func runFill(cmd *cobra.Command, args []string) error {
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
	result, err := a.Fill(ctx, cfg.Resume)
	if err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}

	if fillJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	}

	fmt.Fprintf(os.Stdout, "Portal: %s\n", result.Portal)
	fmt.Fprintf(os.Stdout, "Filled %d of %d fields (%d verified, %d skipped, %d retried)\n",
		result.Filled, result.Total, result.Verified, result.Skipped, result.Retried)
	if result.VerificationFailed > 0 {
		fmt.Fprintf(os.Stdout, "Verification failed for %d fields\n", result.VerificationFailed)
	}
	if result.FileUploaded {
		fmt.Fprintln(os.Stdout, "Resume uploaded")
	}
	if len(result.Unresolved) > 0 {
		fmt.Fprintf(os.Stdout, "\nUnresolved fields (%d):\n", len(result.Unresolved))
		for _, e := range result.Unresolved {
			fmt.Fprintf(os.Stdout, "  - %s [%s] (%s)\n", e.Label, e.Kind, e.Reason)
		}
		fmt.Fprintln(os.Stdout, "\nAnswer them with: form_agent resolve --answer 'label=value'")
	}
	return nil
}
