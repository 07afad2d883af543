package config

// DefaultExcludes are glob patterns excluded from resume ingestion by default.
var DefaultExcludes = []string{
	".*/**",
	"**/.DS_Store",
	"**/Thumbs.db",
	"**/*.tmp",
}

// DefaultIncludes are the document patterns scanned during ingestion.
// The corpus is expected to contain pre-extracted plain text per resume.
var DefaultIncludes = []string{
	"**/*.txt",
	"**/*.md",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "data",
		Include: DefaultIncludes,
		Exclude: DefaultExcludes,
		Server: ServerConfig{
			Port:     8080,
			AllowAll: false,
		},
		Retrieval: RetrievalConfig{
			MaxFeatures:      384,
			VectorOversample: 2,
			KeywordBonus:     0.2,
			KeywordBaseScore: 0.4,
			DefaultK:         10,
		},
		Chat: ChatConfig{
			Provider:    ProviderOllama,
			Model:       "llama3",
			Temperature: 0.7,
			MaxTokens:   500,
		},
	}
}
