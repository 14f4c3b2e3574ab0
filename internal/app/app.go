package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"folio/internal/agent"
	"folio/internal/config"
	"folio/internal/costtracker"
	"folio/internal/services"
	"folio/internal/store"
	"folio/internal/store/portfolio"
	"folio/internal/tools"
)

// Version is reported to MCP peers.
var Version = "0.1.0"

type App struct {
	Config      *config.Config
	Store       store.ProjectStore
	CostTracker costtracker.CostTracker

	// --- Initialized Services ---
	Catalog *services.CatalogService
	Manager *services.ManagementService

	// Agent is nil until InitAgent succeeds.
	Agent *agent.Agent
}

// NewApp wires the portfolio client and the services on top of it. A nil
// projectStore connects to cfg.Portfolio.APIURL.
func NewApp(cfg *config.Config, projectStore store.ProjectStore) (*App, error) {
	a := &App{Config: cfg, CostTracker: costtracker.New()}

	if projectStore == nil {
		if err := a.initPortfolioStore(); err != nil {
			return nil, err
		}
	} else {
		a.Store = projectStore
	}
	a.initServices()

	log.Debug("Application initialization complete.")
	return a, nil
}

func (a *App) initPortfolioStore() error {
	p := a.Config.Portfolio
	c, err := portfolio.New(portfolio.Options{
		BaseURL:           p.APIURL,
		Timeout:           p.Timeout,
		RequestsPerSecond: p.RequestsPerSecond,
		Burst:             p.Burst,
		CacheTTL:          p.CacheTTL,
	})
	if err != nil {
		return fmt.Errorf("init portfolio client: %w", err)
	}
	a.Store = c
	return nil
}

func (a *App) initServices() {
	a.Catalog = services.NewCatalogService(a.Store, a.Config.Portfolio.OwnerName)
	a.Manager = services.NewManagementService(a.Store)
}

// ToolServer builds the MCP server for the configured mode.
func (a *App) ToolServer(mode tools.Mode) (*MCPServer, error) {
	srv, err := tools.NewServer(a.Config.MCP.Name, Version, mode, a.Catalog, a.Manager)
	if err != nil {
		return nil, fmt.Errorf("init tool server: %w", err)
	}
	return &MCPServer{MCPServer: srv, Mode: mode}, nil
}

// InitAgent connects the chat model and its tool sources. Remote tools are
// optional: when the tool server is unreachable the agent still starts with
// the tools it has.
func (a *App) InitAgent(ctx context.Context) error {
	cfg := a.Config
	if err := cfg.ValidateAgent(); err != nil {
		return fmt.Errorf("invalid agent configuration: %w", err)
	}

	model, err := agent.NewChatModel(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init chat model: %w", err)
	}

	var sources []agent.ToolSource
	if cfg.Agent.ToolsURL != "" {
		mcpTools, err := agent.DialMCP(ctx, cfg.Agent.ToolsURL, Version)
		if err != nil {
			log.Warnf("Portfolio tools unavailable at %s: %v", cfg.Agent.ToolsURL, err)
		} else {
			sources = append(sources, mcpTools)
		}
	}
	if cfg.Agent.WebTool {
		sources = append(sources, agent.NewWebPageTool(nil, cfg.Agent.UserAgent, cfg.Portfolio.Timeout))
	}

	instructions, err := agent.LoadInstructions(cfg.Agent.Instructions, cfg.Portfolio.OwnerName)
	if err != nil {
		a.closeSources(sources, model)
		return err
	}

	ag, err := agent.New(model, sources, agent.Options{
		Instructions:  instructions,
		MaxToolRounds: cfg.Agent.MaxToolRounds,
		Tracker:       a.CostTracker,
		Pricing:       agent.ProviderPricing(cfg, model),
	})
	if err != nil {
		a.closeSources(sources, model)
		return err
	}
	a.Agent = ag
	return nil
}

func (a *App) closeSources(sources []agent.ToolSource, model agent.ChatModel) {
	for _, s := range sources {
		if c, ok := s.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
	if c, ok := model.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}

// Close releases the agent and the portfolio client.
func (a *App) Close() error {
	var errs []error
	if a.Agent != nil {
		errs = append(errs, a.Agent.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if err := errors.Join(errs...); err != nil {
		log.Errorf("Error during shutdown: %v", err)
		return err
	}
	return nil
}
