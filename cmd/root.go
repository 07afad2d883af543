package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "talentsearch",
	Short: "Hybrid resume search and recruitment pipeline tooling",
	Long: `Talentsearch ingests a resume corpus into structured candidate
profiles, builds hybrid vector and keyword search artifacts, and serves
candidate retrieval, vacancy matching and pipeline KPIs over a REST API
and MCP tools.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".talentsearch.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
