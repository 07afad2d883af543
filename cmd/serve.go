package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avsrecruit/talentsearch/internal/audit"
	"github.com/avsrecruit/talentsearch/internal/db"
	mcpserver "github.com/avsrecruit/talentsearch/internal/mcp"
	"github.com/avsrecruit/talentsearch/internal/profile"
	"github.com/avsrecruit/talentsearch/internal/retriever"
	"github.com/avsrecruit/talentsearch/internal/vacancy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing
candidate search and vacancy matching tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := db.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		profiles := profile.NewStore(cfg.ParsedDir())
		ret := retriever.Load(profiles, cfg.ParsedDir(), cfg.IndexDir(), retriever.OptionsFromConfig(cfg.Retrieval))
		auditStore := audit.NewStore(database)

		count, err := profiles.Count()
		if err != nil {
			count = 0
		}

		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "talentsearch MCP server started on stdio (candidates=%d)\n", count)

		srv := mcpserver.NewServer(ret, profiles, vacancy.NewStore(database), auditStore)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
