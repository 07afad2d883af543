package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/avsrecruit/talentsearch/internal/keyword"
	"github.com/avsrecruit/talentsearch/internal/profile"
	"github.com/avsrecruit/talentsearch/internal/vecindex"
	"github.com/avsrecruit/talentsearch/internal/vectorizer"
)

func testProfiles() []*profile.CandidateProfile {
	return []*profile.CandidateProfile{
		{
			CandidateID:       "CAND_alice",
			Name:              "Alice Nguyen",
			RoleCategory:      "Software Engineering",
			Titles:            []string{"Senior Backend Engineer"},
			Skills:            skills("python", "aws", "docker", "terraform"),
			ExperienceYears:   6,
			Email:             "alice@example.com",
			Phone:             "+1-512-555-0100",
			Location:          "Austin, TX",
			WorkAuthorization: "US Citizen",
			ResumeSnippet:     "Backend services on aws with python and docker.",
		},
		{
			CandidateID:       "CAND_bob",
			Name:              "Bob Ramos",
			RoleCategory:      "Data Engineering",
			Titles:            []string{"Data Engineer"},
			Skills:            skills("java", "spring", "sql", "kafka"),
			ExperienceYears:   3,
			Location:          "Remote",
			WorkAuthorization: "H1B",
			ResumeSnippet:     "Streaming pipelines with kafka and spring batch.",
		},
		{
			CandidateID:       "CAND_carol",
			Name:              "Carol Smith",
			RoleCategory:      "QA",
			Titles:            []string{"QA Automation Engineer"},
			Skills:            skills("python", "selenium", "cypress"),
			ExperienceYears:   9,
			Location:          "Denver, CO",
			WorkAuthorization: "US Citizen",
			ResumeSnippet:     "Automated regression suites in python with selenium.",
		},
	}
}

func skills(names ...string) []profile.Skill {
	out := make([]profile.Skill, len(names))
	for i, n := range names {
		out[i] = profile.Skill{Name: n, Confidence: 0.9}
	}
	return out
}

// newTestRetriever builds a retriever over the three-candidate corpus
// with all artifacts live.
func newTestRetriever(t *testing.T) (*Retriever, *profile.Store) {
	t.Helper()

	dir := t.TempDir()
	store := profile.NewStore(filepath.Join(dir, "parsed"))
	profiles := testProfiles()

	texts := make([]string, len(profiles))
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		if err := store.Save(p); err != nil {
			t.Fatalf("saving profile: %v", err)
		}
		texts[i] = p.SearchText()
		ids[i] = p.CandidateID
	}

	model := vectorizer.New(64)
	model.Fit(texts)

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := model.Transform(text)
		if err != nil {
			t.Fatalf("transforming corpus: %v", err)
		}
		vectors[i] = v
	}

	index := vecindex.New()
	if err := index.Build(ids, vectors); err != nil {
		t.Fatalf("building index: %v", err)
	}

	indexDir := filepath.Join(dir, "index")
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		t.Fatalf("creating index dir: %v", err)
	}
	keywords := keyword.NewStore(filepath.Join(indexDir, keyword.DatabaseFile))
	if err := keywords.Rebuild(profiles); err != nil {
		t.Fatalf("rebuilding keyword index: %v", err)
	}

	return New(store, model, index, keywords, Options{}), store
}

func resultIDs(results []*profile.CandidateProfile) []string {
	ids := make([]string, len(results))
	for i, p := range results {
		ids[i] = p.CandidateID
	}
	return ids
}

func TestSearchHybridRanking(t *testing.T) {
	r, _ := newTestRetriever(t)

	results, err := r.Search(context.Background(), "python aws", 3, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	want := []string{"CAND_alice", "CAND_carol", "CAND_bob"}
	if got := resultIDs(results); !reflect.DeepEqual(got, want) {
		t.Fatalf("ranking = %v, want %v", got, want)
	}
	for i := 1; i < len(results); i++ {
		if results[i].SearchScore > results[i-1].SearchScore {
			t.Fatalf("scores not descending: %v then %v", results[i-1].SearchScore, results[i].SearchScore)
		}
	}
	if results[0].SearchScore <= results[1].SearchScore {
		t.Fatalf("expected a strict lead for the double match, got %v vs %v",
			results[0].SearchScore, results[1].SearchScore)
	}
}

func TestSearchHonorsCallerContext(t *testing.T) {
	r, _ := newTestRetriever(t)

	// A live context must never be reported as canceled after the
	// signal collection finishes.
	results, err := r.Search(context.Background(), "python", 3, nil)
	if err != nil {
		t.Fatalf("Search with live context: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results for a live context")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Search(ctx, "python", 3, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Search with canceled context: err = %v, want context.Canceled", err)
	}
}

func TestSearchTruncatesToK(t *testing.T) {
	r, _ := newTestRetriever(t)

	results, err := r.Search(context.Background(), "python aws", 2, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"CAND_alice", "CAND_carol"}
	if got := resultIDs(results); !reflect.DeepEqual(got, want) {
		t.Fatalf("ranking = %v, want %v", got, want)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	r, _ := newTestRetriever(t)

	for _, query := range []string{"", "   ", "\n\t"} {
		results, err := r.Search(context.Background(), query, 5, nil)
		if err != nil {
			t.Fatalf("Search(%q): %v", query, err)
		}
		if len(results) != 0 {
			t.Fatalf("Search(%q) returned %d results, want none", query, len(results))
		}
	}
}

func TestSearchRoleCategoryFilter(t *testing.T) {
	r, _ := newTestRetriever(t)

	results, err := r.Search(context.Background(), "python", 5, &Filters{RoleCategory: "QA"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := resultIDs(results); !reflect.DeepEqual(got, []string{"CAND_carol"}) {
		t.Fatalf("filtered results = %v, want only CAND_carol", got)
	}
}

func TestSearchExperienceFilterExcludesAll(t *testing.T) {
	r, _ := newTestRetriever(t)

	min := 10
	results, err := r.Search(context.Background(), "python", 5, &Filters{MinExperience: &min})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %v, want empty result", resultIDs(results))
	}
}

func TestSearchExperienceBoundsInclusive(t *testing.T) {
	r, _ := newTestRetriever(t)

	min, max := 6, 6
	results, err := r.Search(context.Background(), "python", 5, &Filters{MinExperience: &min, MaxExperience: &max})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := resultIDs(results); !reflect.DeepEqual(got, []string{"CAND_alice"}) {
		t.Fatalf("got %v, want only CAND_alice at exactly 6 years", got)
	}
}

func TestSearchLocationSubstringFilter(t *testing.T) {
	r, _ := newTestRetriever(t)

	results, err := r.Search(context.Background(), "python", 5, &Filters{Location: "austin"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := resultIDs(results); !reflect.DeepEqual(got, []string{"CAND_alice"}) {
		t.Fatalf("got %v, want only CAND_alice", got)
	}
}

func TestSearchMalformedFilters(t *testing.T) {
	r, _ := newTestRetriever(t)

	neg := -1
	minExp, maxExp := 8, 2
	cases := map[string]*Filters{
		"negative min":  {MinExperience: &neg},
		"min above max": {MinExperience: &minExp, MaxExperience: &maxExp},
	}
	for name, f := range cases {
		if _, err := r.Search(context.Background(), "python", 5, f); !errors.Is(err, ErrMalformedFilter) {
			t.Fatalf("%s: err = %v, want ErrMalformedFilter", name, err)
		}
	}

	if _, err := r.Search(context.Background(), "python", 0, nil); !errors.Is(err, ErrMalformedFilter) {
		t.Fatalf("k=0: err = %v, want ErrMalformedFilter", err)
	}
}

func TestSearchMissingKeywordArtifact(t *testing.T) {
	r, _ := newTestRetriever(t)
	r.keywords = keyword.NewStore(filepath.Join(t.TempDir(), "absent.sqlite"))

	results, err := r.Search(context.Background(), "aws", 3, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected vector-only results with the keyword artifact missing")
	}
	if results[0].CandidateID != "CAND_alice" {
		t.Fatalf("top result = %s, want CAND_alice", results[0].CandidateID)
	}
}

func TestSearchKeywordOnlyDegradation(t *testing.T) {
	r, _ := newTestRetriever(t)
	r.model = nil
	r.index = nil

	results, err := r.Search(context.Background(), "selenium", 3, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := resultIDs(results); !reflect.DeepEqual(got, []string{"CAND_carol"}) {
		t.Fatalf("got %v, want only CAND_carol", got)
	}
	if results[0].SearchScore != r.opts.KeywordBaseScore {
		t.Fatalf("score = %v, want keyword base score %v", results[0].SearchScore, r.opts.KeywordBaseScore)
	}
}

func TestSearchDropsStaleReferences(t *testing.T) {
	r, store := newTestRetriever(t)

	if err := os.Remove(filepath.Join(store.Dir(), "CAND_bob.json")); err != nil {
		t.Fatalf("removing profile: %v", err)
	}

	results, err := r.Search(context.Background(), "kafka spring", 5, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, p := range results {
		if p.CandidateID == "CAND_bob" {
			t.Fatal("stale candidate reference survived hydration")
		}
	}
}

func TestSearchFilterIdempotent(t *testing.T) {
	r, _ := newTestRetriever(t)

	f := &Filters{RoleCategory: "QA"}
	first, err := r.Search(context.Background(), "python", 5, f)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	second, err := r.Search(context.Background(), "python", 5, f)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !reflect.DeepEqual(resultIDs(first), resultIDs(second)) {
		t.Fatalf("same filtered search diverged: %v vs %v", resultIDs(first), resultIDs(second))
	}
}

func TestFuseOrderIndependent(t *testing.T) {
	r := New(nil, nil, nil, nil, Options{})

	vec := []vecindex.Hit{
		{CandidateID: "a", Score: 0.9},
		{CandidateID: "b", Score: 0.5},
	}
	kw := []keyword.Hit{
		{CandidateID: "b", Rank: -2.0},
		{CandidateID: "c", Rank: -1.0},
	}
	kwReversed := []keyword.Hit{kw[1], kw[0]}

	scoresOf := func(fused []fusedHit) map[string]float64 {
		m := make(map[string]float64, len(fused))
		for _, h := range fused {
			m[h.id] = h.score
		}
		return m
	}

	got := scoresOf(r.fuse(vec, kw))
	// Vector scores are float32 on the wire; widen them the same way
	// fusion does rather than comparing against float64 literals.
	want := map[string]float64{
		"a": float64(vec[0].Score),
		"b": float64(vec[1].Score) + r.opts.KeywordBonus,
		"c": r.opts.KeywordBaseScore,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("fused scores = %v, want %v", got, want)
	}
	if again := scoresOf(r.fuse(vec, kwReversed)); !reflect.DeepEqual(again, want) {
		t.Fatalf("fusion depends on keyword hit order: %v vs %v", again, want)
	}
}

func TestParseFilters(t *testing.T) {
	cases := []struct {
		name    string
		raw     map[string]any
		wantErr bool
	}{
		{"nil map", nil, false},
		{"valid", map[string]any{"role_category": "QA", "min_experience": float64(3)}, false},
		{"unknown key", map[string]any{"seniority": "staff"}, true},
		{"non-numeric bound", map[string]any{"min_experience": "five"}, true},
		{"fractional bound", map[string]any{"min_experience": 2.5}, true},
		{"negative bound", map[string]any{"max_experience": float64(-4)}, true},
		{"inverted range", map[string]any{"min_experience": float64(9), "max_experience": float64(1)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFilters(tc.raw)
			if tc.wantErr && !errors.Is(err, ErrMalformedFilter) {
				t.Fatalf("err = %v, want ErrMalformedFilter", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFiltersFailOpenOnAbsentFields(t *testing.T) {
	f := &Filters{Location: "Berlin", WorkAuthorization: "EU"}
	p := &profile.CandidateProfile{CandidateID: "CAND_x"}
	if !f.Matches(p) {
		t.Fatal("filter on absent profile fields must pass, not exclude")
	}
}

func TestExtractRequirements(t *testing.T) {
	reqs := ExtractRequirements(
		"We need 5+ years of Python and AWS experience, Docker a plus. Minimum of 3 years in production.")

	for _, want := range []string{"python", "aws", "docker"} {
		found := false
		for _, s := range reqs.Skills {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("skills %v missing %q", reqs.Skills, want)
		}
	}
	if reqs.MinExperience != 5 {
		t.Fatalf("MinExperience = %d, want the largest figure 5", reqs.MinExperience)
	}
	if reqs.Query == "" {
		t.Fatal("query must not be empty when skills matched")
	}
}

func TestExtractRequirementsNoSkills(t *testing.T) {
	reqs := ExtractRequirements("Looking for a friendly office manager.")
	if len(reqs.Skills) != 0 {
		t.Fatalf("unexpected skills: %v", reqs.Skills)
	}
	if reqs.MinExperience != 0 {
		t.Fatalf("MinExperience = %d, want 0", reqs.MinExperience)
	}
	if reqs.Query == "" {
		t.Fatal("query should fall back to the description text")
	}
}

type fakeRecorder struct {
	actions []string
}

func (f *fakeRecorder) Record(_ context.Context, action, detail string) {
	f.actions = append(f.actions, action+":"+detail)
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeRecorder) {
	t.Helper()

	ret, _ := newTestRetriever(t)
	rec := &fakeRecorder{}
	router := chi.NewRouter()
	RegisterRoutes(router, ret, 10, rec)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, rec
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encoding request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSearchEndpoint(t *testing.T) {
	srv, rec := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/search", map[string]any{
		"query": "python aws",
		"k":     2,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Count != 2 || len(body.Results) != 2 {
		t.Fatalf("count = %d with %d results, want 2", body.Count, len(body.Results))
	}
	if body.Results[0].CandidateID != "CAND_alice" {
		t.Fatalf("top result = %s, want CAND_alice", body.Results[0].CandidateID)
	}
	if strings.Contains(body.Results[0].Email, "alice@") {
		t.Fatalf("search result leaked unmasked email %q", body.Results[0].Email)
	}
	if body.Results[0].SearchScore <= 0 {
		t.Fatal("search score missing from response")
	}
	if len(rec.actions) != 1 || !strings.HasPrefix(rec.actions[0], "search:") {
		t.Fatalf("audit actions = %v, want one search record", rec.actions)
	}
}

func TestSearchEndpointMalformedFilter(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/search", map[string]any{
		"query":   "python",
		"filters": map[string]any{"min_experience": "five"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if !strings.Contains(body["error"], "min_experience") {
		t.Fatalf("error %q does not name the offending filter", body["error"])
	}
}

func TestJDSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/search/jd", map[string]any{
		"description": "Senior engineer, 5+ years Python and AWS.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body jdSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Requirements.MinExperience != 5 {
		t.Fatalf("extracted MinExperience = %d, want 5", body.Requirements.MinExperience)
	}
	// Bob falls below the 5 year bar; Alice outranks Carol on skills.
	if got := resultIDs(body.Results); !reflect.DeepEqual(got, []string{"CAND_alice", "CAND_carol"}) {
		t.Fatalf("results = %v, want Alice then Carol", got)
	}
}
