package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"folio/internal/models"
)

func manageTools(m ProjectManager) []Tool {
	return []Tool{
		newTool(mcp.NewTool("create_project",
			mcp.WithDescription("Create a new project. project_data must include a title."),
			mcp.WithObject("project_data", mcp.Required(), mcp.Description("Project fields: title, description, status, category, technologies, role, ...")),
		), "create project", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			data, err := requireObject(req, "project_data")
			if err != nil {
				return nil, err
			}
			return m.CreateProject(ctx, projectFields(data))
		}),

		newTool(mcp.NewTool("update_project",
			mcp.WithDescription("Update any fields of an existing project."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
			mcp.WithObject("updates", mcp.Required(), mcp.Description("Fields to change")),
		), "update project", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			id, err := requireString(req, "project_id")
			if err != nil {
				return nil, err
			}
			updates, err := requireObject(req, "updates")
			if err != nil {
				return nil, err
			}
			return m.UpdateProject(ctx, id, projectFields(updates))
		}),

		newTool(mcp.NewTool("delete_project",
			mcp.WithDescription("Permanently delete a project."),
			mcp.WithDestructiveHintAnnotation(true),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		), "delete project", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			id, err := requireString(req, "project_id")
			if err != nil {
				return nil, err
			}
			return m.DeleteProject(ctx, id)
		}),

		newTool(mcp.NewTool("update_project_role",
			mcp.WithDescription("Change the owner's role on a project."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
			mcp.WithString("role", mcp.Required(), mcp.Description("New role, e.g. Lead Developer")),
		), "update project role", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			id, err := requireString(req, "project_id")
			if err != nil {
				return nil, err
			}
			role, err := requireString(req, "role")
			if err != nil {
				return nil, err
			}
			return m.UpdateRole(ctx, id, role)
		}),

		newTool(mcp.NewTool("update_project_status",
			mcp.WithDescription("Change a project's status."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
			mcp.WithString("status", mcp.Required(), mcp.Enum(models.ProjectStatuses...)),
		), "update project status", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			id, err := requireString(req, "project_id")
			if err != nil {
				return nil, err
			}
			status, err := requireString(req, "status")
			if err != nil {
				return nil, err
			}
			return m.UpdateStatus(ctx, id, status)
		}),

		newTool(mcp.NewTool("update_project_technologies",
			mcp.WithDescription("Replace a project's technology list."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
			mcp.WithArray("technologies", mcp.Required(), mcp.Description("Full list of technologies"), mcp.Items(map[string]any{"type": "string"})),
		), "update project technologies", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			id, err := requireString(req, "project_id")
			if err != nil {
				return nil, err
			}
			techs, err := requireStringSlice(req, "technologies")
			if err != nil {
				return nil, err
			}
			return m.UpdateTechnologies(ctx, id, techs)
		}),

		newTool(mcp.NewTool("update_project_description",
			mcp.WithDescription("Change a project's description and, optionally, its long description."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
			mcp.WithString("description", mcp.Required(), mcp.Description("Short description")),
			mcp.WithString("long_description", mcp.Description("Long description")),
		), "update project description", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			id, err := requireString(req, "project_id")
			if err != nil {
				return nil, err
			}
			desc, err := requireString(req, "description")
			if err != nil {
				return nil, err
			}
			return m.UpdateDescription(ctx, id, desc, req.GetString("long_description", ""))
		}),

		newTool(mcp.NewTool("update_project_impact",
			mcp.WithDescription("Change the impact statement of a project."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
			mcp.WithString("impact", mcp.Required(), mcp.Description("Impact statement")),
		), "update project impact", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			id, err := requireString(req, "project_id")
			if err != nil {
				return nil, err
			}
			impact, err := requireString(req, "impact")
			if err != nil {
				return nil, err
			}
			return m.UpdateImpact(ctx, id, impact)
		}),

		newTool(mcp.NewTool("set_project_featured",
			mcp.WithDescription("Mark or unmark a project as featured."),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
			mcp.WithBoolean("featured", mcp.Required(), mcp.Description("Featured flag")),
		), "set project featured", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			id, err := requireString(req, "project_id")
			if err != nil {
				return nil, err
			}
			featured, err := req.RequireBool("featured")
			if err != nil {
				return nil, err
			}
			return m.SetFeatured(ctx, id, featured)
		}),

		newTool(mcp.NewTool("bulk_update_roles",
			mcp.WithDescription("Change the role on several projects at once. Failures are reported per project."),
			mcp.WithObject("role_updates", mcp.Required(), mcp.Description("Map of project id to new role")),
		), "bulk update roles", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			obj, err := requireObject(req, "role_updates")
			if err != nil {
				return nil, err
			}
			roles, err := stringMap(obj)
			if err != nil {
				return nil, err
			}
			return m.BulkUpdateRoles(ctx, roles)
		}),
	}
}
