package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/avsrecruit/talentsearch/internal/audit"
	"github.com/avsrecruit/talentsearch/internal/profile"
	"github.com/avsrecruit/talentsearch/internal/retriever"
	"github.com/avsrecruit/talentsearch/internal/vacancy"
)

// handleSearchCandidates runs a hybrid search with optional structured
// filters and renders the masked results.
func (s *Server) handleSearchCandidates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	filters := &retriever.Filters{
		RoleCategory:      request.GetString("role_category", ""),
		Location:          request.GetString("location", ""),
		WorkAuthorization: request.GetString("work_authorization", ""),
	}
	if min := request.GetInt("min_experience", -1); min >= 0 {
		filters.MinExperience = &min
	}
	if max := request.GetInt("max_experience", -1); max >= 0 {
		filters.MaxExperience = &max
	}
	if err := filters.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := s.searcher.Search(ctx, query, limit, filters)
	if err != nil {
		if errors.Is(err, retriever.ErrMalformedFilter) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if s.recorder != nil {
		s.recorder.Record(ctx, string(audit.ActionSearch), "mcp: "+query)
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No candidates found. The corpus may not be ingested yet. Run `talentsearch ingest` and `talentsearch index` first."), nil
	}

	masked := make([]*profile.CandidateProfile, len(results))
	for i, p := range results {
		masked[i] = p.Masked()
	}
	return mcp.NewToolResultText(formatCandidates(masked)), nil
}

// handleGetCandidate returns one profile, masked unless the caller asks
// for contact details. Reveals are audited.
func (s *Server) handleGetCandidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("candidate_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: candidate_id"), nil
	}

	p, err := s.profiles.Get(id)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("candidate %q not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("loading candidate: %v", err)), nil
	}

	if request.GetBool("include_contact", false) {
		if s.recorder != nil {
			s.recorder.Record(ctx, string(audit.ActionRevealPII), "mcp: "+id)
		}
	} else {
		p = p.Masked()
	}

	return mcp.NewToolResultText(formatCandidate(p)), nil
}

// handleListVacancies lists vacancies, optionally by status.
func (s *Server) handleListVacancies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := vacancy.ListFilter{
		Status: vacancy.Status(request.GetString("status", "")),
	}

	list, err := s.vacancies.List(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing vacancies: %v", err)), nil
	}

	if len(list) == 0 {
		return mcp.NewToolResultText("No vacancies found."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d vacancy(ies):\n", len(list))
	for _, v := range list {
		fmt.Fprintf(&sb, "\n%s: %s [%s]\n", v.ID, v.Title, v.Status)
		if v.RoleCategory != "" {
			fmt.Fprintf(&sb, "Role: %s\n", v.RoleCategory)
		}
		if len(v.RequiredSkills) > 0 {
			fmt.Fprintf(&sb, "Required skills: %s\n", strings.Join(v.RequiredSkills, ", "))
		}
		if v.MinExperience > 0 {
			fmt.Fprintf(&sb, "Minimum experience: %d years\n", v.MinExperience)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleVacancyMatches ranks the pool against one vacancy.
func (s *Server) handleVacancyMatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("vacancy_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: vacancy_id"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	v, err := s.vacancies.GetByID(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading vacancy: %v", err)), nil
	}
	if v == nil {
		return mcp.NewToolResultError(fmt.Sprintf("vacancy %q not found", id)), nil
	}

	matches, err := vacancy.FindMatches(ctx, v, s.profiles, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("matching candidates: %v", err)), nil
	}

	if len(matches) == 0 {
		return mcp.NewToolResultText("No candidates in the pool to match."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Top %d match(es) for %s:\n", len(matches), v.Title)
	for i, m := range matches {
		c := m.Candidate.Masked()
		fmt.Fprintf(&sb, "\n%d. %s (%s) score %.0f/100\n", i+1, c.Name, c.CandidateID, m.Score)
		if len(c.Skills) > 0 {
			fmt.Fprintf(&sb, "   Skills: %s\n", strings.Join(c.SkillNames(), ", "))
		}
		fmt.Fprintf(&sb, "   Experience: %d years\n", c.ExperienceYears)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatCandidates renders ranked search hits as text for agent
// consumption.
func formatCandidates(results []*profile.CandidateProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d candidate(s):\n", len(results))
	for i, p := range results {
		fmt.Fprintf(&sb, "\n--- Candidate %d ---\n", i+1)
		sb.WriteString(formatCandidate(p))
	}
	return sb.String()
}

func formatCandidate(p *profile.CandidateProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID: %s\n", p.CandidateID)
	if p.Name != "" {
		fmt.Fprintf(&sb, "Name: %s\n", p.Name)
	}
	if p.RoleCategory != "" {
		fmt.Fprintf(&sb, "Role: %s\n", p.RoleCategory)
	}
	fmt.Fprintf(&sb, "Experience: %d years\n", p.ExperienceYears)
	if len(p.Skills) > 0 {
		fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(p.SkillNames(), ", "))
	}
	if p.Location != "" {
		fmt.Fprintf(&sb, "Location: %s\n", p.Location)
	}
	if p.WorkAuthorization != "" {
		fmt.Fprintf(&sb, "Work authorization: %s\n", p.WorkAuthorization)
	}
	if p.Email != "" {
		fmt.Fprintf(&sb, "Email: %s\n", p.Email)
	}
	if p.Phone != "" {
		fmt.Fprintf(&sb, "Phone: %s\n", p.Phone)
	}
	if p.SearchScore > 0 {
		fmt.Fprintf(&sb, "Relevance: %.3f\n", p.SearchScore)
	}
	if p.ResumeSnippet != "" {
		fmt.Fprintf(&sb, "Summary: %s\n", p.ResumeSnippet)
	}
	return sb.String()
}
