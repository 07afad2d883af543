package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avsrecruit/talentsearch/internal/ingest"
	"github.com/avsrecruit/talentsearch/internal/profile"
	"github.com/avsrecruit/talentsearch/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse the resume corpus into candidate profiles and vectors",
	Long: `Scans the resume corpus under <data_dir>/resumes, organised as
<role category>/<candidate name>/<documents>, extracts one structured
profile per candidate, fits the vectorizer over the whole pool and
writes profiles, vectors and the model into <data_dir>/parsed.

Candidate ids are derived from the directory layout, so re-running
ingestion updates profiles in place. Run ` + "`talentsearch index`" + `
afterwards to rebuild the search artifacts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store := profile.NewStore(cfg.ParsedDir())
		pipeline := ingest.New(ingest.Config{
			ResumesDir:  cfg.ResumesDir(),
			ParsedDir:   cfg.ParsedDir(),
			Include:     cfg.Include,
			Exclude:     cfg.Exclude,
			MaxFeatures: cfg.Retrieval.MaxFeatures,
		}, store, progress.NewReporter())

		summary, err := pipeline.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Ingested %d of %d candidates (%d skipped)\n",
			summary.Parsed, summary.CandidatesFound, summary.Skipped)
		if verbose {
			for _, e := range summary.Errors {
				fmt.Fprintf(os.Stderr, "  %s\n", e)
			}
		}
		if summary.Parsed > 0 {
			fmt.Fprintln(os.Stderr, "Run `talentsearch index` to rebuild the search artifacts.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
