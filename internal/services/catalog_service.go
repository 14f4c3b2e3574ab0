package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"folio/internal/models"
	"folio/internal/store"
	"folio/pkg/categorizer"
)

const (
	defaultPage         = 1
	defaultLimit        = 10
	defaultRecentLimit  = 5
	topTechnologiesStat = 10
	topTechnologiesSum  = 5
	featuredHighlights  = 3
	highlightTechs      = 3
	highlightDescLen    = 100
	categoryFanOut      = 4

	// matches the API's largest accepted page
	snapshotLimit = 1000
)

// CatalogService answers read-only questions about the portfolio.
type CatalogService struct {
	store store.ProjectReader
	owner string
}

func NewCatalogService(r store.ProjectReader, ownerName string) *CatalogService {
	if ownerName == "" {
		ownerName = "The portfolio owner"
	}
	return &CatalogService{store: r, owner: ownerName}
}

// ListProjects returns one page of projects, defaulting to page 1 of 10.
func (s *CatalogService) ListProjects(ctx context.Context, q models.ProjectQuery) (*models.ProjectPage, error) {
	if q.Page <= 0 {
		q.Page = defaultPage
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if err := validateFilters(q.Category, q.Status); err != nil {
		return nil, err
	}
	page, err := s.store.ListProjects(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return page, nil
}

// ProjectByID returns models.ErrNotFound for unknown ids.
func (s *CatalogService) ProjectByID(ctx context.Context, id string) (*models.Project, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: project id is required", models.ErrValidation)
	}
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

func (s *CatalogService) ProjectsByCategory(ctx context.Context, category string) ([]models.Project, error) {
	if err := validateFilters(category, ""); err != nil {
		return nil, err
	}
	return s.filtered(ctx, models.ProjectQuery{Category: category})
}

func (s *CatalogService) ProjectsByTechnology(ctx context.Context, technology string) ([]models.Project, error) {
	return s.filtered(ctx, models.ProjectQuery{Technology: technology})
}

func (s *CatalogService) FeaturedProjects(ctx context.Context) ([]models.Project, error) {
	featured := true
	return s.filtered(ctx, models.ProjectQuery{Featured: &featured})
}

func (s *CatalogService) SearchProjects(ctx context.Context, term string) ([]models.Project, error) {
	return s.filtered(ctx, models.ProjectQuery{Search: term})
}

func (s *CatalogService) ProjectsByStatus(ctx context.Context, status string) ([]models.Project, error) {
	if err := validateFilters("", status); err != nil {
		return nil, err
	}
	return s.filtered(ctx, models.ProjectQuery{Status: status})
}

func (s *CatalogService) ProjectsByYear(ctx context.Context, year int) ([]models.Project, error) {
	if year <= 0 {
		return nil, fmt.Errorf("%w: year must be positive", models.ErrValidation)
	}
	return s.filtered(ctx, models.ProjectQuery{Year: year})
}

// filtered runs a single query sized to return every match.
func (s *CatalogService) filtered(ctx context.Context, q models.ProjectQuery) ([]models.Project, error) {
	q.Limit = snapshotLimit
	page, err := s.store.ListProjects(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if page.Projects == nil {
		return []models.Project{}, nil
	}
	return page.Projects, nil
}

func (s *CatalogService) RecentProjects(ctx context.Context, limit int) (*models.RecentProjects, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	recent, err := s.store.RecentProjects(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent projects: %w", err)
	}
	return recent, nil
}

// AllTechnologies returns the distinct technology entries across every
// project whose category matches filter. categorizer.All disables filtering.
func (s *CatalogService) AllTechnologies(ctx context.Context, filter string) ([]string, error) {
	entries, err := s.technologyEntries(ctx)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		filter = categorizer.All
	}
	return categorizer.FilterByCategory(entries, filter), nil
}

// TechnologyCategories partitions every technology entry across all categories.
func (s *CatalogService) TechnologyCategories(ctx context.Context) (map[categorizer.Category][]string, error) {
	entries, err := s.technologyEntries(ctx)
	if err != nil {
		return nil, err
	}
	return categorizer.CategorizeAll(entries), nil
}

func (s *CatalogService) technologyEntries(ctx context.Context) ([]string, error) {
	projects, err := s.store.AllProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	var entries []string
	for _, p := range projects {
		entries = append(entries, p.Technologies...)
	}
	return entries, nil
}

// AllCategories returns the distinct project categories, sorted.
func (s *CatalogService) AllCategories(ctx context.Context) ([]string, error) {
	projects, err := s.store.AllProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range projects {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}

// CategoryCount is one row of the category breakdown.
type CategoryCount struct {
	Category     string `json:"category"`
	ProjectCount int    `json:"project_count"`
}

// Statistics summarises the whole portfolio.
type Statistics struct {
	TotalProjects     int                           `json:"total_projects"`
	FeaturedProjects  int                           `json:"featured_projects"`
	CompletedProjects int                           `json:"completed_projects"`
	OngoingProjects   int                           `json:"ongoing_projects"`
	PlannedProjects   int                           `json:"planned_projects"`
	TopTechnologies   []categorizer.TechnologyCount `json:"top_technologies"`
	Categories        []CategoryCount               `json:"categories"`
}

// Statistics counts projects by status and category and ranks technologies.
// Only entries classified as technology take part in the ranking.
func (s *CatalogService) Statistics(ctx context.Context) (*Statistics, error) {
	projects, err := s.store.AllProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	stats := &Statistics{TotalProjects: len(projects), Categories: []CategoryCount{}}
	categoryIndex := make(map[string]int)
	for _, p := range projects {
		if p.Featured {
			stats.FeaturedProjects++
		}
		switch p.Status {
		case models.StatusCompleted:
			stats.CompletedProjects++
		case models.StatusOngoing:
			stats.OngoingProjects++
		case models.StatusPlanned:
			stats.PlannedProjects++
		}
		if p.Category == "" {
			continue
		}
		if i, ok := categoryIndex[p.Category]; ok {
			stats.Categories[i].ProjectCount++
			continue
		}
		categoryIndex[p.Category] = len(stats.Categories)
		stats.Categories = append(stats.Categories, CategoryCount{Category: p.Category, ProjectCount: 1})
	}

	ranking := categorizer.CountTechnologyUsage(models.Technologies(projects))
	if len(ranking) > topTechnologiesStat {
		ranking = ranking[:topTechnologiesStat]
	}
	stats.TopTechnologies = ranking
	return stats, nil
}

// Highlight is a trimmed-down featured project.
type Highlight struct {
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Technologies []string `json:"technologies"`
	Description  string   `json:"description"`
}

// ExpertiseSummary is the owner's professional overview.
type ExpertiseSummary struct {
	TotalProjects      int                           `json:"total_projects"`
	FeaturedProjects   int                           `json:"featured_projects"`
	TechnologiesCount  int                           `json:"technologies_count"`
	TopTechnologies    []categorizer.TechnologyCount `json:"top_technologies"`
	Categories         map[string]int                `json:"categories"`
	FeaturedHighlights []Highlight                   `json:"featured_highlights"`
	ExperienceSummary  string                        `json:"experience_summary"`
}

// ExpertiseSummary gathers statistics, technologies, featured projects and a
// per-category breakdown concurrently.
func (s *CatalogService) ExpertiseSummary(ctx context.Context) (*ExpertiseSummary, error) {
	var (
		stats        *Statistics
		technologies []string
		featured     []models.Project
		categories   []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = s.Statistics(gctx)
		return err
	})
	g.Go(func() (err error) {
		technologies, err = s.AllTechnologies(gctx, string(categorizer.Technology))
		return err
	})
	g.Go(func() (err error) {
		featured, err = s.FeaturedProjects(gctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.AllCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("expertise summary: %w", err)
	}

	breakdown, err := s.categoryBreakdown(ctx, categories)
	if err != nil {
		return nil, fmt.Errorf("expertise summary: %w", err)
	}

	top := stats.TopTechnologies
	if len(top) > topTechnologiesSum {
		top = top[:topTechnologiesSum]
	}

	highlights := make([]Highlight, 0, featuredHighlights)
	for i, p := range featured {
		if i == featuredHighlights {
			break
		}
		highlights = append(highlights, highlight(p))
	}

	return &ExpertiseSummary{
		TotalProjects:      stats.TotalProjects,
		FeaturedProjects:   stats.FeaturedProjects,
		TechnologiesCount:  len(technologies),
		TopTechnologies:    top,
		Categories:         breakdown,
		FeaturedHighlights: highlights,
		ExperienceSummary: fmt.Sprintf("%s has %d projects across %d categories, with expertise in %d different technologies.",
			s.owner, stats.TotalProjects, len(categories), len(technologies)),
	}, nil
}

func (s *CatalogService) categoryBreakdown(ctx context.Context, categories []string) (map[string]int, error) {
	var mu sync.Mutex
	breakdown := make(map[string]int, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(categoryFanOut)
	for _, category := range categories {
		category := category
		g.Go(func() error {
			projects, err := s.filtered(gctx, models.ProjectQuery{Category: category})
			if err != nil {
				return err
			}
			mu.Lock()
			breakdown[category] = len(projects)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return breakdown, nil
}

func highlight(p models.Project) Highlight {
	techs := p.Technologies
	if len(techs) > highlightTechs {
		techs = techs[:highlightTechs]
	}
	if techs == nil {
		techs = []string{}
	}
	title := p.Title
	if title == "" {
		title = "Unknown"
	}
	category := p.Category
	if category == "" {
		category = "Unknown"
	}
	return Highlight{
		Title:        title,
		Category:     category,
		Technologies: techs,
		Description:  truncate(p.Description, highlightDescLen),
	}
}

// truncate cuts s to n characters and marks the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// validateFilters rejects values the portfolio API does not know.
// Empty values mean the filter is unused.
func validateFilters(category, status string) error {
	var errs []error
	if category != "" && !models.IsValidCategory(category) {
		errs = append(errs, fmt.Errorf("%w: unknown category %q (expected one of %v)", models.ErrValidation, category, models.ProjectCategories))
	}
	if status != "" && !models.IsValidStatus(status) {
		errs = append(errs, fmt.Errorf("%w: unknown status %q (expected one of %v)", models.ErrValidation, status, models.ProjectStatuses))
	}
	return errors.Join(errs...)
}
