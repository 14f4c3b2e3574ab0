package cmd

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"folio/internal/clix"
	"folio/internal/models"
	"folio/pkg/categorizer"
)

var (
	techFilter     string
	techGrouped    bool
	catalogOutput  string
	listCategory   string
	listStatus     string
	listTechnology string
	listSearch     string
	listYear       int
	listFeatured   bool
)

var technologiesCmd = &cobra.Command{
	Use:   "technologies",
	Short: "List the technologies used across the portfolio",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		format, err := clix.ParseOutput(cmd.Flags())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if techGrouped {
			groups, err := appInstance.Catalog.TechnologyCategories(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to categorize technologies: %w", err)
			}
			return printPartition(out, format, groups)
		}

		filter, err := parseFilter(techFilter)
		if err != nil {
			return err
		}
		techs, err := appInstance.Catalog.AllTechnologies(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list technologies: %w", err)
		}
		return printClassified(out, format, techs)
	},
}

// parseFilter accepts a declared category or "all".
func parseFilter(s string) (string, error) {
	if strings.EqualFold(strings.TrimSpace(s), categorizer.All) {
		return categorizer.All, nil
	}
	c, ok := categorizer.ParseCategory(s)
	if !ok {
		return "", fmt.Errorf("%w: unknown category %q (expected one of %v or %s)", models.ErrValidation, s, categorizer.Categories, categorizer.All)
	}
	return string(c), nil
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show portfolio statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		format, err := clix.ParseOutput(cmd.Flags())
		if err != nil {
			return err
		}

		stats, err := appInstance.Catalog.Statistics(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get statistics: %w", err)
		}
		out := cmd.OutOrStdout()
		if done, err := printStructured(out, format, stats); done {
			return err
		}

		summary := newTable(out, "Projects", "Featured", "Completed", "Ongoing", "Planned")
		summary.Append([]string{
			strconv.Itoa(stats.TotalProjects),
			strconv.Itoa(stats.FeaturedProjects),
			strconv.Itoa(stats.CompletedProjects),
			strconv.Itoa(stats.OngoingProjects),
			strconv.Itoa(stats.PlannedProjects),
		})
		summary.Render()

		categories := newTable(out, "Category", "Projects")
		for _, c := range stats.Categories {
			categories.Append([]string{c.Category, strconv.Itoa(c.ProjectCount)})
		}
		categories.Render()

		top := newTable(out, "Technology", "Projects")
		for _, t := range stats.TopTechnologies {
			top.Append([]string{t.Technology, strconv.Itoa(t.Count)})
		}
		top.Render()
		return nil
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Browse portfolio projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects page by page",
	Long: `Lists projects from the portfolio API. Filters are passed through to the
API; category and status must be one of the values it accepts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		pagination, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return err
		}
		format, err := clix.ParseOutput(cmd.Flags())
		if err != nil {
			return err
		}

		q := models.ProjectQuery{
			Category:   listCategory,
			Status:     listStatus,
			Technology: listTechnology,
			Search:     listSearch,
			Year:       listYear,
			Page:       pagination.Page,
			Limit:      pagination.Limit,
		}
		if cmd.Flags().Changed("featured") {
			q.Featured = &listFeatured
		}
		log.Debugf("Listing projects: %+v", q)

		page, err := appInstance.Catalog.ListProjects(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		out := cmd.OutOrStdout()
		if done, err := printStructured(out, format, page); done {
			return err
		}

		if len(page.Projects) == 0 {
			fmt.Fprintln(out, "No projects found.")
			return nil
		}
		table := newTable(out, "ID", "Title", "Category", "Status", "Featured", "Technologies")
		for _, p := range page.Projects {
			featured := ""
			if p.Featured {
				featured = "yes"
			}
			table.Append([]string{p.ID, p.Title, p.Category, p.Status, featured, strings.Join(p.Technologies, ", ")})
		}
		table.Render()
		fmt.Fprintf(out, "Page %d of %d (%d projects).\n", page.Page, page.TotalPages, page.Total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(technologiesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.AddCommand(projectsListCmd)

	for _, c := range []*cobra.Command{technologiesCmd, statsCmd, projectsListCmd} {
		c.Flags().StringVarP(&catalogOutput, "output", "o", clix.OutputTable, "Output format (table, json, yaml)")
	}

	technologiesCmd.Flags().StringVar(&techFilter, "filter", categorizer.All,
		"Only list entries of this category (technology, tool, skill, responsibility, process, hardware, other, all)")
	technologiesCmd.Flags().BoolVar(&techGrouped, "grouped", false, "Group every entry by category")

	projectsListCmd.Flags().Int("page", 1, "Page number")
	projectsListCmd.Flags().IntP("limit", "l", 10, "Projects per page")
	projectsListCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category ("+strings.Join(models.ProjectCategories, ", ")+")")
	projectsListCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status ("+strings.Join(models.ProjectStatuses, ", ")+")")
	projectsListCmd.Flags().StringVar(&listTechnology, "technology", "", "Filter by technology")
	projectsListCmd.Flags().StringVar(&listSearch, "search", "", "Full-text search term")
	projectsListCmd.Flags().IntVar(&listYear, "year", 0, "Filter by year")
	projectsListCmd.Flags().BoolVar(&listFeatured, "featured", false, "Only featured projects")
}
