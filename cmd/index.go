package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/avsrecruit/talentsearch/internal/ingest"
	"github.com/avsrecruit/talentsearch/internal/keyword"
	"github.com/avsrecruit/talentsearch/internal/profile"
	"github.com/avsrecruit/talentsearch/internal/vecindex"
	"github.com/avsrecruit/talentsearch/internal/vectorizer"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the vector and keyword search artifacts",
	Long: `Rebuilds both retrieval artifacts under <data_dir>/index from the
parsed profiles: the dense vector index from the per-candidate vectors
written at ingest time, and the SQLite FTS5 keyword database. Each
artifact is replaced atomically, so a running server keeps serving a
consistent view throughout the rebuild.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store := profile.NewStore(cfg.ParsedDir())
		profiles, err := store.List()
		if err != nil {
			return fmt.Errorf("loading profiles: %w", err)
		}
		if len(profiles) == 0 {
			return fmt.Errorf("no parsed profiles in %s, run `talentsearch ingest` first", cfg.ParsedDir())
		}
		sort.Slice(profiles, func(i, j int) bool {
			return profiles[i].CandidateID < profiles[j].CandidateID
		})

		model, err := vectorizer.Load(filepath.Join(cfg.ParsedDir(), vectorizer.ModelFile))
		if err != nil {
			return fmt.Errorf("loading vectorizer model: %w", err)
		}

		ids := make([]string, len(profiles))
		vectors := make([][]float32, len(profiles))
		for i, p := range profiles {
			ids[i] = p.CandidateID

			// Prefer the vector written at ingest time; fall back to
			// re-transforming when it is missing or unreadable.
			vecPath := filepath.Join(cfg.ParsedDir(), p.CandidateID+ingest.VectorExt)
			vec, err := ingest.ReadVector(vecPath)
			if err != nil {
				if verbose {
					fmt.Fprintf(os.Stderr, "re-vectorizing %s: %v\n", p.CandidateID, err)
				}
				vec, err = model.Transform(p.SearchText())
				if err != nil {
					return fmt.Errorf("vectorizing %s: %w", p.CandidateID, err)
				}
			}
			vectors[i] = vec
		}

		index := vecindex.New()
		if err := index.Build(ids, vectors); err != nil {
			return fmt.Errorf("building vector index: %w", err)
		}
		if err := index.Save(
			filepath.Join(cfg.IndexDir(), vecindex.VectorsFile),
			filepath.Join(cfg.IndexDir(), vecindex.MetaFile),
		); err != nil {
			return fmt.Errorf("saving vector index: %w", err)
		}

		keywords := keyword.NewStore(filepath.Join(cfg.IndexDir(), keyword.DatabaseFile))
		if err := keywords.Rebuild(profiles); err != nil {
			return fmt.Errorf("rebuilding keyword index: %w", err)
		}

		fmt.Fprintf(os.Stderr, "Indexed %d candidates into %s\n", len(ids), cfg.IndexDir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
