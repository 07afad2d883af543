package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/avsrecruit/talentsearch/internal/config"
	"github.com/avsrecruit/talentsearch/internal/profile"
	"github.com/avsrecruit/talentsearch/internal/retriever"
)

// Searcher is the slice of the hybrid retriever the assistant needs.
type Searcher interface {
	Search(ctx context.Context, query string, k int, filters *retriever.Filters) ([]*profile.CandidateProfile, error)
}

// historyLimit caps how many stored turns are replayed to the model.
const historyLimit = 10

// contextCandidates is how many search hits ground each answer.
const contextCandidates = 5

const systemPrompt = `You are a recruitment assistant for a resume search system.
Answer questions about the candidates listed in the context block.
Contact details are masked; never invent them. When no candidate fits,
say so instead of guessing.`

// Assistant answers recruiter questions grounded in retrieval results.
// It works without a model: with no provider configured, or when the
// provider fails, it degrades to listing the matching candidates.
type Assistant struct {
	provider Provider
	searcher Searcher
	sessions *SessionStore
	recorder profile.Recorder
	cfg      config.ChatConfig
}

// NewAssistant assembles an assistant. provider and recorder may be nil.
func NewAssistant(provider Provider, searcher Searcher, sessions *SessionStore, recorder profile.Recorder, cfg config.ChatConfig) *Assistant {
	return &Assistant{
		provider: provider,
		searcher: searcher,
		sessions: sessions,
		recorder: recorder,
		cfg:      cfg,
	}
}

// Reply is one assistant answer.
type Reply struct {
	SessionID  string                      `json:"session_id"`
	Content    string                      `json:"content"`
	Degraded   bool                        `json:"degraded"`
	Candidates []*profile.CandidateProfile `json:"candidates,omitempty"`
}

// Ask answers one recruiter message. An empty sessionID starts a new
// session; the returned reply carries the session to continue with.
func (a *Assistant) Ask(ctx context.Context, sessionID, content string) (*Reply, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message content is required")
	}

	if sessionID == "" {
		sess, err := a.sessions.Create(ctx)
		if err != nil {
			return nil, err
		}
		sessionID = sess.ID
	}

	history, err := a.sessions.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := a.sessions.Append(ctx, sessionID, RoleUser, content); err != nil {
		return nil, err
	}

	candidates := a.retrieve(ctx, content)

	reply := &Reply{SessionID: sessionID, Candidates: candidates}
	answer, degraded := a.complete(ctx, history, candidates, content)
	reply.Content = answer
	reply.Degraded = degraded

	if err := a.sessions.Append(ctx, sessionID, RoleAssistant, answer); err != nil {
		return nil, err
	}
	if a.recorder != nil {
		a.recorder.Record(ctx, "ai_chat", "session="+sessionID)
	}
	return reply, nil
}

// retrieve grounds the answer in search results. Retrieval failures
// degrade to an empty context rather than failing the conversation.
func (a *Assistant) retrieve(ctx context.Context, content string) []*profile.CandidateProfile {
	reqs := retriever.ExtractRequirements(content)
	results, err := a.searcher.Search(ctx, reqs.Query, contextCandidates, nil)
	if err != nil {
		log.Printf("chat: retrieval for assistant context failed: %v", err)
		return nil
	}

	masked := make([]*profile.CandidateProfile, len(results))
	for i, p := range results {
		masked[i] = p.Masked()
	}
	return masked
}

func (a *Assistant) complete(ctx context.Context, history []StoredMessage, candidates []*profile.CandidateProfile, content string) (string, bool) {
	if a.provider == nil {
		return fallbackAnswer(candidates), true
	}

	messages := []Message{{Role: RoleSystem, Content: systemPrompt + "\n\n" + contextBlock(candidates)}}

	start := 0
	if len(history) > historyLimit {
		start = len(history) - historyLimit
	}
	for _, m := range history[start:] {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, Message{Role: RoleUser, Content: content})

	resp, err := a.provider.Complete(ctx, CompletionRequest{
		Model:       a.cfg.Model,
		Messages:    messages,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		log.Printf("chat: %s completion failed, degrading: %v", a.provider.Name(), err)
		return fallbackAnswer(candidates), true
	}
	return resp.Content, false
}

// contextBlock renders the retrieved candidates for the model.
func contextBlock(candidates []*profile.CandidateProfile) string {
	if len(candidates) == 0 {
		return "Context: no matching candidates were found."
	}

	var b strings.Builder
	b.WriteString("Context: matching candidates.\n")
	for _, p := range candidates {
		fmt.Fprintf(&b, "- %s (%s): %s, %d years, %s\n",
			p.Name, p.CandidateID, strings.Join(p.SkillNames(), ", "),
			p.ExperienceYears, p.Location)
	}
	return b.String()
}

// fallbackAnswer is returned when no model is available.
func fallbackAnswer(candidates []*profile.CandidateProfile) string {
	if len(candidates) == 0 {
		return "The assistant model is offline and no candidates matched your question. Try the search screen directly."
	}

	var b strings.Builder
	b.WriteString("The assistant model is offline. Based on search alone, the closest candidates are:\n")
	for _, p := range candidates {
		fmt.Fprintf(&b, "- %s (%s), %d years, skills: %s\n",
			p.Name, p.CandidateID, p.ExperienceYears, strings.Join(p.SkillNames(), ", "))
	}
	return b.String()
}
