package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/form-agent/internal/ledger"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Replay literal answers into unresolved fields",
	Long: "Resolve runs a fill pass, then replays the supplied label=value answers " +
		"into exactly the fields that pass left unresolved. Verified answers are " +
		"persisted into the profile for future fills. No heuristic defaults apply.",
	RunE: runResolve,
}

var (
	resolveAnswers []string
	answersFile    string
)

func init() {
	resolveCmd.Flags().StringArrayVarP(&resolveAnswers, "answer", "a", nil, "Answer as 'label=value' (repeatable)")
	resolveCmd.Flags().StringVar(&answersFile, "answers-file", "", "Path to a JSON array of {label, value, field_type}")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	answers, err := collectAnswers()
	if err != nil {
		return err
	}
	if len(answers) == 0 {
		return fmt.Errorf("no answers given; use --answer or --answers-file")
	}

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

	// A fill pass establishes the ledger the answers resolve against.
	fillResult, err := a.Fill(ctx, cfg.Resume)
	if err != nil {
		return fmt.Errorf("fill pass failed: %w", err)
	}
	if len(fillResult.Unresolved) == 0 {
		fmt.Fprintln(os.Stdout, "Nothing unresolved; all fields filled or skipped")
		return nil
	}

	result, err := a.FillUnknown(ctx, answers)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Resolved %d of %d unresolved fields\n", result.Filled, result.Total)
	for _, e := range result.Unresolved {
		fmt.Fprintf(os.Stdout, "  still unresolved: %s (%s)\n", e.Label, e.Reason)
	}
	return nil
}

func collectAnswers() ([]ledger.Answer, error) {
	var answers []ledger.Answer

	for _, raw := range resolveAnswers {
		label, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --answer %q; expected 'label=value'", raw)
		}
		answers = append(answers, ledger.Answer{
			Label: strings.TrimSpace(label),
			Value: strings.TrimSpace(value),
		})
	}

	if answersFile != "" {
		data, err := os.ReadFile(answersFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read answers file: %w", err)
		}
		var fromFile []ledger.Answer
		if err := json.Unmarshal(data, &fromFile); err != nil {
			return nil, fmt.Errorf("failed to parse answers file: %w", err)
		}
		answers = append(answers, fromFile...)
	}

	return answers, nil
}
