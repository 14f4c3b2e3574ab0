package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultPromptDir is the subdirectory within the user's home directory.
const defaultPromptDir = ".config/folio/prompts"

// LoadPromptContent resolves the path for a prompt file and reads its content.
// An absolute configuredPath is used directly; anything else is treated as a
// filename within ~/.config/folio/prompts/, with defaultFilename used when
// configuredPath is empty.
func LoadPromptContent(configuredPath, defaultFilename string) (string, error) {
	finalPath := configuredPath

	if !filepath.IsAbs(configuredPath) {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		filename := configuredPath
		if filename == "" {
			filename = defaultFilename
		}
		finalPath = filepath.Join(homeDir, defaultPromptDir, filename)
	}

	promptBytes, err := os.ReadFile(finalPath)
	if err != nil {
		if os.IsNotExist(err) && !filepath.IsAbs(configuredPath) {
			return "", fmt.Errorf("prompt file not found at default location '%s'. Please create it or specify an absolute path in config.yaml: %w", finalPath, err)
		}
		return "", fmt.Errorf("failed to read prompt file '%s': %w", finalPath, err)
	}
	return string(promptBytes), nil
}
