package cmd

import (
	"github.com/spf13/cobra"

	"github.com/avsrecruit/talentsearch/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize talentsearch configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure talentsearch and generates a .talentsearch.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
