package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .talentsearch.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to talentsearch! Let's configure your workspace.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (resumes, parsed profiles, indexes)",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	// 2. Server port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 3. Chat assistant backend.
	chatPrompt := promptui.Select{
		Label: "Chat assistant backend",
		Items: []string{
			"ollama - local Ollama daemon (llama3)",
			"openai - any OpenAI-compatible endpoint",
			"none   - disable the assistant",
		},
	}
	chatIdx, _, err := chatPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("chat backend: %w", err)
	}
	providers := []ChatProviderType{ProviderOllama, ProviderOpenAI, ProviderNone}
	cfg.Chat.Provider = providers[chatIdx]

	if cfg.Chat.Provider == ProviderOpenAI {
		urlPrompt := promptui.Prompt{
			Label:   "OpenAI-compatible base URL",
			Default: "http://localhost:11434/v1",
		}
		baseURL, err := urlPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("base url: %w", err)
		}
		cfg.Chat.BaseURL = baseURL

		modelPrompt := promptui.Prompt{
			Label:   "Chat model",
			Default: cfg.Chat.Model,
		}
		model, err := modelPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("chat model: %w", err)
		}
		cfg.Chat.Model = model
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configPath := ".talentsearch.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	fmt.Println("Next: put resume texts under", cfg.ResumesDir(), "and run `talentsearch ingest`.")
	return cfg, nil
}
