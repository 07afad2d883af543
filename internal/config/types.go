package config

import "path/filepath"

// ChatProviderType identifies a chat assistant backend.
type ChatProviderType string

const (
	// ProviderOllama talks to a local Ollama daemon via its native API.
	ProviderOllama ChatProviderType = "ollama"
	// ProviderOpenAI talks to any OpenAI-compatible endpoint, including
	// local servers that expose the OpenAI chat API.
	ProviderOpenAI ChatProviderType = "openai"
	// ProviderNone disables the chat assistant entirely.
	ProviderNone ChatProviderType = "none"
)

// Config is the top-level talentsearch configuration, corresponding to
// .talentsearch.yml.
type Config struct {
	DataDir string   `yaml:"data_dir" koanf:"data_dir"`
	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`

	Server    ServerConfig    `yaml:"server" koanf:"server"`
	Retrieval RetrievalConfig `yaml:"retrieval" koanf:"retrieval"`
	Chat      ChatConfig      `yaml:"chat" koanf:"chat"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// RetrievalConfig holds the tunable constants of the hybrid retriever.
// The fusion constants are deliberately configuration rather than code:
// the numbers are heuristic and expected to be adjusted per corpus.
type RetrievalConfig struct {
	MaxFeatures      int     `yaml:"max_features" koanf:"max_features"`
	VectorOversample int     `yaml:"vector_oversample" koanf:"vector_oversample"`
	KeywordBonus     float64 `yaml:"keyword_bonus" koanf:"keyword_bonus"`
	KeywordBaseScore float64 `yaml:"keyword_base_score" koanf:"keyword_base_score"`
	DefaultK         int     `yaml:"default_k" koanf:"default_k"`
}

// ChatConfig holds settings for the AI recruitment assistant.
type ChatConfig struct {
	Provider    ChatProviderType `yaml:"provider" koanf:"provider"`
	Model       string           `yaml:"model" koanf:"model"`
	BaseURL     string           `yaml:"base_url" koanf:"base_url"`
	Temperature float64          `yaml:"temperature" koanf:"temperature"`
	MaxTokens   int              `yaml:"max_tokens" koanf:"max_tokens"`
}

// ResumesDir is where the raw resume corpus lives, organised as
// <role category>/<candidate name>/<documents>.
func (c *Config) ResumesDir() string { return filepath.Join(c.DataDir, "resumes") }

// ParsedDir holds one profile JSON and one feature vector per candidate,
// plus the fitted vectorizer artifact.
func (c *Config) ParsedDir() string { return filepath.Join(c.DataDir, "parsed") }

// IndexDir holds the rebuilt search artifacts: the vector index, its
// row-to-candidate mapping and the keyword database.
func (c *Config) IndexDir() string { return filepath.Join(c.DataDir, "index") }

// DatabasePath is the application database (vacancies, KPI, audit, chat).
func (c *Config) DatabasePath() string { return filepath.Join(c.DataDir, "talentsearch.db") }
