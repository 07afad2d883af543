package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (TALENT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: TALENT_DATA_DIR -> data_dir,
	// TALENT_SERVER.PORT -> server.port, etc.
	if err := k.Load(env.Provider("TALENT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "TALENT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validChatProviders is the set of recognized chat provider values.
var validChatProviders = map[ChatProviderType]bool{
	ProviderOllama: true,
	ProviderOpenAI: true,
	ProviderNone:   true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	r := c.Retrieval
	if r.MaxFeatures <= 0 {
		return fmt.Errorf("retrieval.max_features must be positive")
	}
	if r.VectorOversample < 1 {
		return fmt.Errorf("retrieval.vector_oversample must be at least 1")
	}
	if r.KeywordBonus < 0 || r.KeywordBonus > 1 {
		return fmt.Errorf("retrieval.keyword_bonus must be in [0,1]")
	}
	if r.KeywordBaseScore < 0 || r.KeywordBaseScore > 1 {
		return fmt.Errorf("retrieval.keyword_base_score must be in [0,1]")
	}
	if r.DefaultK < 1 {
		return fmt.Errorf("retrieval.default_k must be at least 1")
	}

	if c.Chat.Provider != "" && !validChatProviders[c.Chat.Provider] {
		return fmt.Errorf("invalid chat provider %q: must be one of ollama, openai, none", c.Chat.Provider)
	}

	return nil
}
