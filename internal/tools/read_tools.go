package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"folio/internal/models"
	"folio/pkg/categorizer"
)

// technologyFilters are the accepted filter_type values.
func technologyFilters() []string {
	out := []string{categorizer.All}
	for _, c := range categorizer.Categories {
		out = append(out, string(c))
	}
	return out
}

// readTools builds the read-only catalog tools. withFilter controls whether
// get_all_technologies accepts a category filter.
func readTools(c CatalogReader, withFilter bool) []Tool {
	return []Tool{
		newTool(mcp.NewTool("get_all_projects",
			mcp.WithDescription("List portfolio projects with optional filtering and pagination."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithBoolean("featured", mcp.Description("Only featured (true) or non-featured (false) projects")),
			mcp.WithString("category", mcp.Description("Project category"), mcp.Enum(models.ProjectCategories...)),
			mcp.WithString("status", mcp.Description("Project status"), mcp.Enum(models.ProjectStatuses...)),
			mcp.WithString("technology", mcp.Description("Technology used in the project")),
			mcp.WithNumber("year", mcp.Description("Year the project was active")),
			mcp.WithString("search", mcp.Description("Free-text search over title and description")),
			mcp.WithNumber("page", mcp.Description("Page number"), mcp.DefaultNumber(1)),
			mcp.WithNumber("limit", mcp.Description("Projects per page"), mcp.DefaultNumber(10)),
		), "retrieve projects", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			return c.ListProjects(ctx, models.ProjectQuery{
				Featured:   optionalBool(req, "featured"),
				Category:   req.GetString("category", ""),
				Status:     req.GetString("status", ""),
				Technology: req.GetString("technology", ""),
				Year:       req.GetInt("year", 0),
				Search:     req.GetString("search", ""),
				Page:       req.GetInt("page", 1),
				Limit:      req.GetInt("limit", 10),
			})
		}),

		newTool(mcp.NewTool("get_project_by_id",
			mcp.WithDescription("Get a single project by its id. Returns null when the project does not exist."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		), "retrieve project", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			id, err := requireString(req, "project_id")
			if err != nil {
				return nil, err
			}
			p, err := c.ProjectByID(ctx, id)
			if errors.Is(err, models.ErrNotFound) {
				return nil, nil
			}
			return p, err
		}),

		newTool(mcp.NewTool("get_projects_by_category",
			mcp.WithDescription("Get every project in a category."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("category", mcp.Required(), mcp.Description("Project category"), mcp.Enum(models.ProjectCategories...)),
		), "retrieve projects by category", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			category, err := requireString(req, "category")
			if err != nil {
				return nil, err
			}
			return c.ProjectsByCategory(ctx, category)
		}),

		newTool(mcp.NewTool("get_projects_by_technology",
			mcp.WithDescription("Get every project that uses a technology."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("technology", mcp.Required(), mcp.Description("Technology name, e.g. React")),
		), "retrieve projects by technology", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			tech, err := requireString(req, "technology")
			if err != nil {
				return nil, err
			}
			return c.ProjectsByTechnology(ctx, tech)
		}),

		newTool(mcp.NewTool("get_featured_projects",
			mcp.WithDescription("Get the featured projects."),
			mcp.WithReadOnlyHintAnnotation(true),
		), "retrieve featured projects", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			return c.FeaturedProjects(ctx)
		}),

		newTool(mcp.NewTool("search_projects",
			mcp.WithDescription("Search projects by title, description and technologies."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("search_term", mcp.Required(), mcp.Description("Text to search for")),
		), "search projects", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			term, err := requireString(req, "search_term")
			if err != nil {
				return nil, err
			}
			return c.SearchProjects(ctx, term)
		}),

		newTool(mcp.NewTool("get_projects_by_status",
			mcp.WithDescription("Get every project with a status."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("status", mcp.Required(), mcp.Description("Project status"), mcp.Enum(models.ProjectStatuses...)),
		), "retrieve projects by status", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			status, err := requireString(req, "status")
			if err != nil {
				return nil, err
			}
			return c.ProjectsByStatus(ctx, status)
		}),

		newTool(mcp.NewTool("get_projects_by_year",
			mcp.WithDescription("Get every project active in a year."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithNumber("year", mcp.Required(), mcp.Description("Four digit year")),
		), "retrieve projects by year", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			year, err := req.RequireInt("year")
			if err != nil {
				return nil, err
			}
			return c.ProjectsByYear(ctx, year)
		}),

		newTool(mcp.NewTool("get_recent_projects",
			mcp.WithDescription("Get the most recent projects by end date; ongoing projects count as most recent."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithNumber("limit", mcp.Description("Number of projects"), mcp.DefaultNumber(5)),
		), "retrieve recent projects", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			return c.RecentProjects(ctx, req.GetInt("limit", 5))
		}),

		allTechnologiesTool(c, withFilter),

		newTool(mcp.NewTool("get_technology_categories",
			mcp.WithDescription("Group every technology entry into technology, tool, skill, responsibility, process, hardware and other."),
			mcp.WithReadOnlyHintAnnotation(true),
		), "categorize technologies", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			return c.TechnologyCategories(ctx)
		}),

		newTool(mcp.NewTool("get_all_categories",
			mcp.WithDescription("List the distinct project categories."),
			mcp.WithReadOnlyHintAnnotation(true),
		), "retrieve categories", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			return c.AllCategories(ctx)
		}),

		newTool(mcp.NewTool("get_project_statistics",
			mcp.WithDescription("Portfolio metrics: totals, counts by status, top technologies and projects per category."),
			mcp.WithReadOnlyHintAnnotation(true),
		), "retrieve statistics", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			return c.Statistics(ctx)
		}),

		newTool(mcp.NewTool("get_expertise_summary",
			mcp.WithDescription("Professional summary of the portfolio owner: experience, key technologies, specializations and highlights."),
			mcp.WithReadOnlyHintAnnotation(true),
		), "generate expertise summary", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			return c.ExpertiseSummary(ctx)
		}),
	}
}

func allTechnologiesTool(c CatalogReader, withFilter bool) Tool {
	if !withFilter {
		return newTool(mcp.NewTool("get_all_technologies",
			mcp.WithDescription("List every distinct technology entry used across projects."),
			mcp.WithReadOnlyHintAnnotation(true),
		), "retrieve technologies", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
			return c.AllTechnologies(ctx, categorizer.All)
		})
	}
	return newTool(mcp.NewTool("get_all_technologies",
		mcp.WithDescription("List distinct technology entries used across projects, optionally only one category of entry."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("filter_type",
			mcp.Description("Entry category to keep; 'all' keeps everything"),
			mcp.Enum(technologyFilters()...),
			mcp.DefaultString(categorizer.All),
		),
	), "retrieve technologies", func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
		return c.AllTechnologies(ctx, req.GetString("filter_type", categorizer.All))
	})
}
