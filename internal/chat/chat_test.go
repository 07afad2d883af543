package chat

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/avsrecruit/talentsearch/internal/config"
	"github.com/avsrecruit/talentsearch/internal/db"
	"github.com/avsrecruit/talentsearch/internal/profile"
	"github.com/avsrecruit/talentsearch/internal/retriever"
)

// mockProvider records completion requests and returns a fixed answer.
type mockProvider struct {
	mu       sync.Mutex
	requests []CompletionRequest
	answer   string
	fail     bool
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.fail {
		return nil, errors.New("model unavailable")
	}
	return &CompletionResponse{Content: m.answer, Model: "mock"}, nil
}

// fakeSearcher returns a fixed candidate list for any query.
type fakeSearcher struct {
	results []*profile.CandidateProfile
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int, _ *retriever.Filters) ([]*profile.CandidateProfile, error) {
	return f.results, f.err
}

type fakeRecorder struct {
	actions []string
}

func (f *fakeRecorder) Record(_ context.Context, action, detail string) {
	f.actions = append(f.actions, action)
}

func newTestAssistant(t *testing.T, provider Provider, searcher Searcher) (*Assistant, *SessionStore, *fakeRecorder) {
	t.Helper()

	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	sessions := NewSessionStore(d)
	rec := &fakeRecorder{}
	return NewAssistant(provider, searcher, sessions, rec, config.ChatConfig{
		Model:     "test-model",
		MaxTokens: 100,
	}), sessions, rec
}

func candidateFixture() []*profile.CandidateProfile {
	return []*profile.CandidateProfile{
		{
			CandidateID:     "CAND_alice",
			Name:            "Alice Nguyen",
			Skills:          []profile.Skill{{Name: "python"}, {Name: "aws"}},
			ExperienceYears: 6,
			Location:        "Austin, TX",
			Email:           "alice@example.com",
		},
	}
}

func TestAskCreatesSessionAndPersistsTurns(t *testing.T) {
	provider := &mockProvider{answer: "Alice looks like the strongest fit."}
	assistant, sessions, rec := newTestAssistant(t, provider, &fakeSearcher{results: candidateFixture()})

	reply, err := assistant.Ask(context.Background(), "", "Who knows python and aws?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if reply.Degraded {
		t.Fatal("reply should not be degraded with a working provider")
	}
	if reply.Content != "Alice looks like the strongest fit." {
		t.Fatalf("content = %q", reply.Content)
	}

	messages, err := sessions.Messages(context.Background(), reply.SessionID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d stored messages, want user and assistant", len(messages))
	}
	if messages[0].Role != RoleUser || messages[1].Role != RoleAssistant {
		t.Fatalf("roles = %s, %s", messages[0].Role, messages[1].Role)
	}

	if len(rec.actions) != 1 || rec.actions[0] != "ai_chat" {
		t.Fatalf("audit actions = %v", rec.actions)
	}
}

func TestAskGroundsPromptInMaskedCandidates(t *testing.T) {
	provider := &mockProvider{answer: "ok"}
	assistant, _, _ := newTestAssistant(t, provider, &fakeSearcher{results: candidateFixture()})

	reply, err := assistant.Ask(context.Background(), "", "python developer?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if len(provider.requests) != 1 {
		t.Fatalf("got %d completion requests", len(provider.requests))
	}
	system := provider.requests[0].Messages[0]
	if system.Role != RoleSystem {
		t.Fatalf("first message role = %s, want system", system.Role)
	}
	if !strings.Contains(system.Content, "CAND_alice") {
		t.Fatal("system prompt does not carry the retrieved candidate")
	}

	for _, p := range reply.Candidates {
		if strings.Contains(p.Email, "alice@") {
			t.Fatalf("assistant leaked unmasked email %q", p.Email)
		}
	}
}

func TestAskReplaysHistory(t *testing.T) {
	provider := &mockProvider{answer: "noted"}
	assistant, _, _ := newTestAssistant(t, provider, &fakeSearcher{})

	first, err := assistant.Ask(context.Background(), "", "Remember I need QA people.")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if _, err := assistant.Ask(context.Background(), first.SessionID, "Any updates?"); err != nil {
		t.Fatalf("second Ask: %v", err)
	}

	second := provider.requests[1]
	var sawFirstTurn bool
	for _, m := range second.Messages {
		if m.Role == RoleUser && strings.Contains(m.Content, "QA people") {
			sawFirstTurn = true
		}
	}
	if !sawFirstTurn {
		t.Fatal("second completion did not replay the first user turn")
	}
}

func TestAskDegradesWithoutProvider(t *testing.T) {
	assistant, _, _ := newTestAssistant(t, nil, &fakeSearcher{results: candidateFixture()})

	reply, err := assistant.Ask(context.Background(), "", "python developer?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !reply.Degraded {
		t.Fatal("expected a degraded reply without a provider")
	}
	if !strings.Contains(reply.Content, "Alice Nguyen") {
		t.Fatalf("degraded reply should list candidates, got %q", reply.Content)
	}
}

func TestAskDegradesOnProviderError(t *testing.T) {
	provider := &mockProvider{fail: true}
	assistant, _, _ := newTestAssistant(t, provider, &fakeSearcher{results: candidateFixture()})

	reply, err := assistant.Ask(context.Background(), "", "python developer?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !reply.Degraded {
		t.Fatal("expected a degraded reply when the provider fails")
	}
}

func TestAskRejectsEmptyContent(t *testing.T) {
	assistant, _, _ := newTestAssistant(t, nil, &fakeSearcher{})

	if _, err := assistant.Ask(context.Background(), "", "   "); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestWebSocketConversation(t *testing.T) {
	provider := &mockProvider{answer: "Alice fits."}
	assistant, sessions, _ := newTestAssistant(t, provider, &fakeSearcher{results: candidateFixture()})

	router := chi.NewRouter()
	RegisterRoutes(router, assistant, sessions)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := conn.WriteJSON(wsRequest{Type: "message", Content: "python developer?"}); err != nil {
		t.Fatalf("writing message: %v", err)
	}

	var resp wsResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("reading response: %v", err)
	}
	if resp.Type != "response" || resp.SessionID == "" {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Content != "Alice fits." {
		t.Fatalf("content = %q", resp.Content)
	}

	if err := conn.WriteJSON(wsRequest{Type: "bogus", Content: "x"}); err != nil {
		t.Fatalf("writing message: %v", err)
	}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("reading response: %v", err)
	}
	if resp.Type != "error" {
		t.Fatalf("expected error response, got %+v", resp)
	}
}
