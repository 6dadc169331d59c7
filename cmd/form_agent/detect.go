package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/form-agent/internal/posting"
)

// detectConcurrency bounds parallel page parsing in batch mode.
const detectConcurrency = 4

var detectCmd = &cobra.Command{
	Use:   "detect [page.html ...]",
	Short: "Extract structured job-posting records",
	Long: "Detect extracts a canonical job-posting record (description, sections, " +
		"compensation, sponsorship, skills) from the configured page, or from each " +
		"HTML file given as an argument when run in batch mode.",
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
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

	if len(args) > 0 {
		return detectBatch(ctx, args)
	}

	provider, cleanup, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	html, err := provider.HTML(ctx)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	rec, err := posting.Extract(html, provider.Location())
	if err != nil {
		return err
	}
	if rec == nil {
		fmt.Fprintln(os.Stdout, "No job posting detected")
		return nil
	}
	return printRecord(rec)
}

// detectBatch extracts every file concurrently; one unreadable file fails
// the batch, but low-confidence pages just report as undetected.
func detectBatch(ctx context.Context, pages []string) error {
	records := make([]*posting.Record, len(pages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(detectConcurrency)
	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(page)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", page, err)
			}
			rec, err := posting.Extract(string(data), "file://"+page)
			if err != nil {
				return fmt.Errorf("extraction failed for %s: %w", page, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, rec := range records {
		if rec == nil {
			fmt.Fprintf(os.Stdout, "%s: no job posting detected\n", pages[i])
			continue
		}
		fmt.Fprintf(os.Stdout, "%s:\n", pages[i])
		if err := printRecord(rec); err != nil {
			return err
		}
	}
	return nil
}

func printRecord(rec *posting.Record) error {
	out, err := rec.ToJSON()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
