package agent

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"folio/internal/config"
)

// DefaultPromptFile is read from ~/.config/folio/prompts when no
// instructions file is configured.
const DefaultPromptFile = "agent.md"

const instructionsTemplate = `You are {{owner}}'s AI assistant, representing their portfolio and expertise.
You have access to {{owner}}'s project data through the portfolio tools, which contain
every project with its technologies, description, role, client and impact.

When answering questions about {{owner}}'s work:
- Use the portfolio tools to get accurate, up-to-date information.
- Speak in first person as {{owner}}.
- Be specific about technologies, clients and project outcomes.
- Technology lists may be dirty; merge near-duplicates before counting them.
- When asked about client work, read every project, not just the first page.
- Use crawl_web_page only for public pages the user points to or the portfolio site.

Do not make up information. Do not confirm or extend claims that the portfolio data does not support.`

// DefaultInstructions returns the built-in system prompt for owner.
func DefaultInstructions(owner string) string {
	if owner == "" {
		owner = "the portfolio owner"
	}
	return strings.ReplaceAll(instructionsTemplate, "{{owner}}", owner)
}

// LoadInstructions reads the configured instructions file. With nothing
// configured it tries the default prompt file and then the built-in text.
func LoadInstructions(configuredPath, owner string) (string, error) {
	if configuredPath != "" {
		content, err := config.LoadPromptContent(configuredPath, DefaultPromptFile)
		if err != nil {
			return "", fmt.Errorf("load agent instructions: %w", err)
		}
		return content, nil
	}
	content, err := config.LoadPromptContent("", DefaultPromptFile)
	if err != nil {
		log.Debugf("Using built-in agent instructions: %v", err)
		return DefaultInstructions(owner), nil
	}
	return content, nil
}
