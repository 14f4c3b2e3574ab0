// Package tools exposes the portfolio catalog as MCP tools.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"folio/internal/models"
	"folio/internal/services"
	"folio/pkg/categorizer"
)

// Mode selects which tool surface a server exposes.
type Mode string

const (
	ModeRead   Mode = "read"
	ModeManage Mode = "manage"
)

// Default server names per mode.
const (
	ReadServerName   = "Portfolio API Server"
	ManageServerName = "Portfolio Management Server"
)

// Tool is a single MCP tool definition and its handler.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// CatalogReader is the read side used by every surface.
type CatalogReader interface {
	ListProjects(ctx context.Context, q models.ProjectQuery) (*models.ProjectPage, error)
	ProjectByID(ctx context.Context, id string) (*models.Project, error)
	ProjectsByCategory(ctx context.Context, category string) ([]models.Project, error)
	ProjectsByTechnology(ctx context.Context, technology string) ([]models.Project, error)
	FeaturedProjects(ctx context.Context) ([]models.Project, error)
	SearchProjects(ctx context.Context, term string) ([]models.Project, error)
	ProjectsByStatus(ctx context.Context, status string) ([]models.Project, error)
	ProjectsByYear(ctx context.Context, year int) ([]models.Project, error)
	RecentProjects(ctx context.Context, limit int) (*models.RecentProjects, error)
	AllTechnologies(ctx context.Context, filter string) ([]string, error)
	TechnologyCategories(ctx context.Context) (map[categorizer.Category][]string, error)
	AllCategories(ctx context.Context) ([]string, error)
	Statistics(ctx context.Context) (*services.Statistics, error)
	ExpertiseSummary(ctx context.Context) (*services.ExpertiseSummary, error)
}

// ProjectManager is the write side used by the management surface.
type ProjectManager interface {
	CreateProject(ctx context.Context, fields models.ProjectFields) (*models.Project, error)
	UpdateProject(ctx context.Context, id string, fields models.ProjectFields) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) (*services.DeleteResult, error)
	UpdateRole(ctx context.Context, id, role string) (*models.Project, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Project, error)
	UpdateTechnologies(ctx context.Context, id string, technologies []string) (*models.Project, error)
	UpdateImpact(ctx context.Context, id, impact string) (*models.Project, error)
	UpdateDescription(ctx context.Context, id, description, longDescription string) (*models.Project, error)
	SetFeatured(ctx context.Context, id string, featured bool) (*models.Project, error)
	BulkUpdateRoles(ctx context.Context, roles map[string]string) (*services.BulkResult, error)
}

var _ CatalogReader = (*services.CatalogService)(nil)
var _ ProjectManager = (*services.ManagementService)(nil)

// handlerFunc returns a value to encode as JSON.
type handlerFunc func(ctx context.Context, req mcp.CallToolRequest) (any, error)

// funcTool adapts a handlerFunc to Tool. action names the operation in
// error results, e.g. "retrieve projects".
type funcTool struct {
	def    mcp.Tool
	action string
	fn     handlerFunc
}

func newTool(def mcp.Tool, action string, fn handlerFunc) *funcTool {
	return &funcTool{def: def, action: action, fn: fn}
}

func (t *funcTool) Definition() mcp.Tool { return t.def }

// Handle never returns a protocol error; failures become error results the
// model can read.
func (t *funcTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := log.WithField("tool", t.def.Name)
	out, err := t.fn(ctx, req)
	if err != nil {
		logger.Warnf("Tool call failed: %v", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", t.action, err)), nil
	}
	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode %s result: %v", t.def.Name, err)), nil
	}
	logger.Debug("Tool call succeeded")
	return mcp.NewToolResultText(string(payload)), nil
}

// Registry returns the tools for mode. The management surface requires a
// ProjectManager.
func Registry(mode Mode, reader CatalogReader, manager ProjectManager) ([]Tool, error) {
	if reader == nil {
		return nil, errors.New("tools: catalog reader is required")
	}
	switch mode {
	case ModeRead:
		return readTools(reader, true), nil
	case ModeManage:
		if manager == nil {
			return nil, errors.New("tools: manage mode requires a project manager")
		}
		// management surface lists every technology, without the category filter
		return append(readTools(reader, false), manageTools(manager)...), nil
	default:
		return nil, fmt.Errorf("tools: unknown mode %q", mode)
	}
}

// NewServer builds an MCP server exposing the tools for mode.
func NewServer(name, version string, mode Mode, reader CatalogReader, manager ProjectManager) (*server.MCPServer, error) {
	registry, err := Registry(mode, reader, manager)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = ReadServerName
		if mode == ModeManage {
			name = ManageServerName
		}
	}

	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions(name, registry)),
	)
	for _, t := range registry {
		s.AddTool(t.Definition(), t.Handle)
	}
	log.Infof("Registered %d tools for %s (%s mode)", len(registry), name, mode)
	return s, nil
}

func instructions(name string, registry []Tool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s gives access to portfolio projects through the portfolio API.\n\nAvailable tools:\n", name)
	for _, t := range registry {
		fmt.Fprintf(&b, "- %s\n", t.Definition().Name)
	}
	return b.String()
}
