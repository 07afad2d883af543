package chat

import (
	"context"
	"fmt"
	"os"

	"github.com/avsrecruit/talentsearch/internal/config"
)

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse contains the result of an LLM completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
}

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// NewProvider creates the provider the configuration names. The "none"
// provider returns (nil, nil); the assistant then answers from search
// results alone.
func NewProvider(cfg config.ChatConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return NewOllamaProvider(baseURL, cfg.Model), nil

	case config.ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, cfg.Model, cfg.BaseURL), nil

	case config.ProviderNone, "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", cfg.Provider)
	}
}
