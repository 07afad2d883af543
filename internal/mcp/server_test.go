package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/avsrecruit/talentsearch/internal/db"
	"github.com/avsrecruit/talentsearch/internal/profile"
	"github.com/avsrecruit/talentsearch/internal/retriever"
	"github.com/avsrecruit/talentsearch/internal/vacancy"
)

// fakeSearcher returns canned results and records the last call.
type fakeSearcher struct {
	results []*profile.CandidateProfile
	lastK   int
	lastQ   string
}

func (f *fakeSearcher) Search(_ context.Context, query string, k int, filters *retriever.Filters) ([]*profile.CandidateProfile, error) {
	f.lastQ, f.lastK = query, k
	var out []*profile.CandidateProfile
	for _, p := range f.results {
		if filters.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeRecorder struct {
	actions []string
	details []string
}

func (f *fakeRecorder) Record(_ context.Context, action, detail string) {
	f.actions = append(f.actions, action)
	f.details = append(f.details, detail)
}

func testProfiles() []*profile.CandidateProfile {
	return []*profile.CandidateProfile{
		{
			CandidateID:     "CAND_alice0000001",
			Name:            "Alice Nguyen",
			RoleCategory:    "Software Engineer",
			Skills:          []profile.Skill{{Name: "python", Confidence: 0.9}, {Name: "aws", Confidence: 0.9}},
			ExperienceYears: 6,
			Email:           "alice@example.com",
			Phone:           "555-0147",
			SearchScore:     0.8,
		},
		{
			CandidateID:     "CAND_bob000000001",
			Name:            "Bob Okafor",
			RoleCategory:    "Data Engineer",
			Skills:          []profile.Skill{{Name: "java", Confidence: 0.9}},
			ExperienceYears: 3,
			SearchScore:     0.4,
		},
	}
}

func newTestServer(t *testing.T) (*Server, *profile.Store, *fakeRecorder) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })

	store := profile.NewStore(t.TempDir())
	for _, p := range testProfiles() {
		if err := store.Save(p); err != nil {
			t.Fatal(err)
		}
	}

	recorder := &fakeRecorder{}
	searcher := &fakeSearcher{results: testProfiles()}
	srv := NewServer(searcher, store, vacancy.NewStore(database), recorder)
	return srv, store, recorder
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}

func callTool(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestToolDefinitions(t *testing.T) {
	tools := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{searchCandidatesTool, "search_candidates"},
		{getCandidateTool, "get_candidate"},
		{listVacanciesTool, "list_vacancies"},
		{vacancyMatchesTool, "vacancy_matches"},
	}
	for _, tt := range tools {
		if tt.tool.Name != tt.wantName {
			t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
		}
		if tt.tool.Description == "" {
			t.Errorf("%s: empty description", tt.wantName)
		}
	}
}

func TestHandleSearchCandidates(t *testing.T) {
	srv, _, recorder := newTestServer(t)
	ctx := context.Background()

	t.Run("basic search", func(t *testing.T) {
		result, err := srv.handleSearchCandidates(ctx, callTool(map[string]any{"query": "python engineer"}))
		if err != nil {
			t.Fatal(err)
		}
		if result.IsError {
			t.Fatalf("tool error: %v", result.Content)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "Alice Nguyen") {
			t.Errorf("missing candidate in: %s", text)
		}
		// Contact details stay masked in search results.
		if strings.Contains(text, "alice@example.com") {
			t.Error("unmasked email leaked into search output")
		}
		if len(recorder.actions) == 0 || recorder.actions[0] != "search" {
			t.Errorf("search not audited: %v", recorder.actions)
		}
	})

	t.Run("experience filter", func(t *testing.T) {
		result, err := srv.handleSearchCandidates(ctx, callTool(map[string]any{
			"query":          "engineer",
			"min_experience": 5,
		}))
		if err != nil {
			t.Fatal(err)
		}
		text := resultText(t, result)
		if strings.Contains(text, "Bob Okafor") {
			t.Errorf("filter leaked under-qualified candidate: %s", text)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		result, err := srv.handleSearchCandidates(ctx, callTool(map[string]any{}))
		if err != nil {
			t.Fatal(err)
		}
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		result, err := srv.handleSearchCandidates(ctx, callTool(map[string]any{
			"query":          "engineer",
			"min_experience": 10,
			"max_experience": 2,
		}))
		if err != nil {
			t.Fatal(err)
		}
		if !result.IsError {
			t.Error("expected error for inverted experience range")
		}
	})
}

func TestHandleGetCandidate(t *testing.T) {
	srv, _, recorder := newTestServer(t)
	ctx := context.Background()

	t.Run("masked by default", func(t *testing.T) {
		result, err := srv.handleGetCandidate(ctx, callTool(map[string]any{"candidate_id": "CAND_alice0000001"}))
		if err != nil {
			t.Fatal(err)
		}
		text := resultText(t, result)
		if strings.Contains(text, "alice@example.com") {
			t.Error("contact details should be masked by default")
		}
	})

	t.Run("reveal is audited", func(t *testing.T) {
		before := len(recorder.actions)
		result, err := srv.handleGetCandidate(ctx, callTool(map[string]any{
			"candidate_id":    "CAND_alice0000001",
			"include_contact": true,
		}))
		if err != nil {
			t.Fatal(err)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "alice@example.com") {
			t.Errorf("expected unmasked email in: %s", text)
		}
		if len(recorder.actions) != before+1 || recorder.actions[before] != "reveal_pii" {
			t.Errorf("reveal not audited: %v", recorder.actions)
		}
	})

	t.Run("unknown candidate", func(t *testing.T) {
		result, err := srv.handleGetCandidate(ctx, callTool(map[string]any{"candidate_id": "CAND_missing"}))
		if err != nil {
			t.Fatal(err)
		}
		if !result.IsError {
			t.Error("expected error for unknown candidate")
		}
	})
}

func TestHandleVacancyTools(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ctx := context.Background()

	v, err := srv.vacancies.Create(ctx, vacancy.Vacancy{
		Title:          "Backend Engineer",
		RoleCategory:   "Software Engineer",
		RequiredSkills: []string{"python", "aws"},
		MinExperience:  3,
	})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("list vacancies", func(t *testing.T) {
		result, err := srv.handleListVacancies(ctx, callTool(map[string]any{}))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(resultText(t, result), "Backend Engineer") {
			t.Error("vacancy missing from listing")
		}
	})

	t.Run("matches ranked", func(t *testing.T) {
		result, err := srv.handleVacancyMatches(ctx, callTool(map[string]any{"vacancy_id": v.ID}))
		if err != nil {
			t.Fatal(err)
		}
		text := resultText(t, result)
		aliceAt := strings.Index(text, "Alice Nguyen")
		bobAt := strings.Index(text, "Bob Okafor")
		if aliceAt < 0 || bobAt < 0 {
			t.Fatalf("missing candidates in: %s", text)
		}
		if aliceAt > bobAt {
			t.Error("expected the stronger match listed first")
		}
	})

	t.Run("unknown vacancy", func(t *testing.T) {
		result, err := srv.handleVacancyMatches(ctx, callTool(map[string]any{"vacancy_id": "nope"}))
		if err != nil {
			t.Fatal(err)
		}
		if !result.IsError {
			t.Error("expected error for unknown vacancy")
		}
	})
}
