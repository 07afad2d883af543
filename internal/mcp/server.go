// Package mcp exposes candidate search over the Model Context Protocol
// so AI agents can query the talent pool as tools.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/avsrecruit/talentsearch/internal/profile"
	"github.com/avsrecruit/talentsearch/internal/retriever"
	"github.com/avsrecruit/talentsearch/internal/vacancy"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Searcher is the retrieval surface the MCP tools call.
type Searcher interface {
	Search(ctx context.Context, query string, k int, filters *retriever.Filters) ([]*profile.CandidateProfile, error)
}

// Server wraps an MCP server exposing candidate search tools.
type Server struct {
	searcher  Searcher
	profiles  *profile.Store
	vacancies *vacancy.Store
	recorder  profile.Recorder
	mcp       *server.MCPServer
}

// NewServer creates an MCP server over the given retrieval and storage
// dependencies. The recorder receives an audit entry whenever a tool
// reveals candidate contact details.
func NewServer(searcher Searcher, profiles *profile.Store, vacancies *vacancy.Store, recorder profile.Recorder) *Server {
	s := &Server{
		searcher:  searcher,
		profiles:  profiles,
		vacancies: vacancies,
		recorder:  recorder,
	}

	s.mcp = server.NewMCPServer(
		"talentsearch",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchCandidatesTool, s.handleSearchCandidates)
	s.mcp.AddTool(getCandidateTool, s.handleGetCandidate)
	s.mcp.AddTool(listVacanciesTool, s.handleListVacancies)
	s.mcp.AddTool(vacancyMatchesTool, s.handleVacancyMatches)
}

// Serve starts the MCP server on stdio. Stdout carries MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
