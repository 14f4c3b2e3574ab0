package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	log "github.com/sirupsen/logrus"

	"folio/internal/models"
)

const clientName = "folio-agent"

// MCPTools exposes the tools of a connected MCP server.
type MCPTools struct {
	client *client.Client
	specs  []ToolSpec
	names  map[string]struct{}
}

// DialMCP connects to a streamable HTTP MCP endpoint such as
// http://localhost:8017/mcp.
func DialMCP(ctx context.Context, url, version string) (*MCPTools, error) {
	c, err := client.NewStreamableHttpClient(url)
	if err != nil {
		return nil, fmt.Errorf("create mcp client for %s: %w", url, err)
	}
	t, err := ConnectMCP(ctx, c, version)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	log.Infof("Connected to MCP server at %s (%d tools)", url, len(t.specs))
	return t, nil
}

// ConnectMCP initializes c and loads its tool list. The returned MCPTools
// owns c.
func ConnectMCP(ctx context.Context, c *client.Client, version string) (*MCPTools, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("start mcp client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: version}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		return nil, fmt.Errorf("initialize mcp session: %w", err)
	}

	t := &MCPTools{client: c, names: make(map[string]struct{})}
	req := mcp.ListToolsRequest{}
	for {
		list, err := c.ListTools(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("list mcp tools: %w", err)
		}
		for _, tool := range list.Tools {
			spec, err := specFromMCP(tool)
			if err != nil {
				return nil, err
			}
			t.specs = append(t.specs, spec)
			t.names[spec.Name] = struct{}{}
		}
		if list.NextCursor == "" {
			break
		}
		req.Params.Cursor = list.NextCursor
	}
	return t, nil
}

func specFromMCP(tool mcp.Tool) (ToolSpec, error) {
	raw, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return ToolSpec{}, fmt.Errorf("encode schema of %s: %w", tool.Name, err)
	}
	params := map[string]any{}
	if err := json.Unmarshal(raw, &params); err != nil {
		return ToolSpec{}, fmt.Errorf("decode schema of %s: %w", tool.Name, err)
	}
	params["type"] = "object"
	if _, ok := params["properties"]; !ok {
		params["properties"] = map[string]any{}
	}
	return ToolSpec{Name: tool.Name, Description: tool.Description, Parameters: params}, nil
}

func (t *MCPTools) Tools() []ToolSpec { return t.specs }

// Call runs a tool on the server. Tool level failures come back as text so
// the model can read them.
func (t *MCPTools) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	if _, ok := t.names[name]; !ok {
		return "", fmt.Errorf("%w: %s", models.ErrToolNotFound, name)
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := t.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", name, err)
	}
	var b strings.Builder
	for _, c := range res.Content {
		if text, ok := c.(mcp.TextContent); ok {
			b.WriteString(text.Text)
		}
	}
	if res.IsError {
		log.WithField("tool", name).Warnf("MCP tool returned an error: %s", b.String())
	}
	return b.String(), nil
}

func (t *MCPTools) Close() error {
	return t.client.Close()
}

var _ ToolSource = (*MCPTools)(nil)
