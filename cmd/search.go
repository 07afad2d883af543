package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avsrecruit/talentsearch/internal/profile"
	"github.com/avsrecruit/talentsearch/internal/retriever"
)

var (
	searchLimit    int
	searchJSON     bool
	searchRole     string
	searchMinYears int
	searchMaxYears int
	searchLocation string
	searchAuth     string
	searchUnmask   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search the candidate pool from the command line",
	Long: `Runs a hybrid search over the ingested candidate pool and prints the
ranked results. Contact details are masked unless --unmask is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store := profile.NewStore(cfg.ParsedDir())
		ret := retriever.Load(store, cfg.ParsedDir(), cfg.IndexDir(), retriever.OptionsFromConfig(cfg.Retrieval))

		filters := &retriever.Filters{
			RoleCategory:      searchRole,
			Location:          searchLocation,
			WorkAuthorization: searchAuth,
		}
		if searchMinYears >= 0 {
			filters.MinExperience = &searchMinYears
		}
		if searchMaxYears >= 0 {
			filters.MaxExperience = &searchMaxYears
		}

		query := strings.Join(args, " ")
		results, err := ret.Search(context.Background(), query, searchLimit, filters)
		if err != nil {
			return err
		}

		for i, p := range results {
			if !searchUnmask {
				results[i] = p.Masked()
			}
		}

		if searchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		if len(results) == 0 {
			fmt.Println("No candidates found.")
			return nil
		}
		for i, p := range results {
			fmt.Printf("%2d. %-24s %-24s %2dy  %.3f\n",
				i+1, p.Name, p.RoleCategory, p.ExperienceYears, p.SearchScore)
			if verbose {
				if len(p.Skills) > 0 {
					fmt.Printf("    skills: %s\n", strings.Join(p.SkillNames(), ", "))
				}
				fmt.Printf("    id: %s\n", p.CandidateID)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchRole, "role", "", "filter by role category")
	searchCmd.Flags().IntVar(&searchMinYears, "min-experience", -1, "minimum years of experience")
	searchCmd.Flags().IntVar(&searchMaxYears, "max-experience", -1, "maximum years of experience")
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "filter by location substring")
	searchCmd.Flags().StringVar(&searchAuth, "work-auth", "", "filter by work authorization")
	searchCmd.Flags().BoolVar(&searchUnmask, "unmask", false, "show unmasked contact details")
	rootCmd.AddCommand(searchCmd)
}
