package cmd

import (
	"fmt"

	"github.com/avsrecruit/talentsearch/internal/config"
)

// loadConfig loads and validates the config, providing a user-friendly
// error when the file is missing or malformed.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `talentsearch init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
