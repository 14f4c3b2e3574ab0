package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"folio/internal/models"
	"folio/internal/store"
)

// ManagementService applies edits to portfolio projects.
type ManagementService struct {
	store store.ProjectWriter
}

func NewManagementService(w store.ProjectWriter) *ManagementService {
	return &ManagementService{store: w}
}

// DeleteResult is the confirmation payload for a deletion.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// BulkFailure records one failed update in a bulk operation.
type BulkFailure struct {
	ProjectID string `json:"project_id"`
	Error     string `json:"error"`
}

// BulkResult reports the outcome of a bulk operation.
type BulkResult struct {
	Updated []string      `json:"updated"`
	Failed  []BulkFailure `json:"failed"`
	Total   int           `json:"total"`
}

// CreateProject requires a title; status and category are checked when set.
func (s *ManagementService) CreateProject(ctx context.Context, fields models.ProjectFields) (*models.Project, error) {
	title, _ := fields["title"].(string)
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	p, err := s.store.CreateProject(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	log.Infof("Created project %s (%q)", p.ID, p.Title)
	return p, nil
}

// UpdateProject sends a partial update.
func (s *ManagementService) UpdateProject(ctx context.Context, id string, fields models.ProjectFields) (*models.Project, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: project id is required", models.ErrValidation)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	p, err := s.store.UpdateProject(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}
	log.WithField("project_id", id).Infof("Updated fields %v", fieldNames(fields))
	return p, nil
}

func (s *ManagementService) DeleteProject(ctx context.Context, id string) (*DeleteResult, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: project id is required", models.ErrValidation)
	}
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return nil, fmt.Errorf("delete project %s: %w", id, err)
	}
	log.WithField("project_id", id).Info("Deleted project")
	return &DeleteResult{Success: true, Message: fmt.Sprintf("Project %s deleted successfully", id)}, nil
}

func (s *ManagementService) UpdateRole(ctx context.Context, id, role string) (*models.Project, error) {
	return s.UpdateProject(ctx, id, models.ProjectFields{"role": role})
}

func (s *ManagementService) UpdateStatus(ctx context.Context, id, status string) (*models.Project, error) {
	return s.UpdateProject(ctx, id, models.ProjectFields{"status": status})
}

func (s *ManagementService) UpdateTechnologies(ctx context.Context, id string, technologies []string) (*models.Project, error) {
	if technologies == nil {
		technologies = []string{}
	}
	return s.UpdateProject(ctx, id, models.ProjectFields{"technologies": technologies})
}

func (s *ManagementService) UpdateImpact(ctx context.Context, id, impact string) (*models.Project, error) {
	return s.UpdateProject(ctx, id, models.ProjectFields{"impact": impact})
}

// UpdateDescription leaves longDescription untouched when it is empty.
func (s *ManagementService) UpdateDescription(ctx context.Context, id, description, longDescription string) (*models.Project, error) {
	fields := models.ProjectFields{"description": description}
	if longDescription != "" {
		fields["longDescription"] = longDescription
	}
	return s.UpdateProject(ctx, id, fields)
}

func (s *ManagementService) SetFeatured(ctx context.Context, id string, featured bool) (*models.Project, error) {
	return s.UpdateProject(ctx, id, models.ProjectFields{"featured": featured})
}

// BulkUpdateRoles applies each role update in id order. A failed update is
// recorded and does not stop the rest.
func (s *ManagementService) BulkUpdateRoles(ctx context.Context, roles map[string]string) (*BulkResult, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: no role updates given", models.ErrValidation)
	}
	ids := make([]string, 0, len(roles))
	for id := range roles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := &BulkResult{Updated: []string{}, Failed: []BulkFailure{}, Total: len(ids)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := s.UpdateRole(ctx, id, roles[id]); err != nil {
			log.WithField("project_id", id).Warnf("Bulk role update failed: %v", err)
			result.Failed = append(result.Failed, BulkFailure{ProjectID: id, Error: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, id)
	}
	return result, nil
}

func validateFields(fields models.ProjectFields) error {
	if v, ok := fields["status"]; ok {
		status, _ := v.(string)
		if err := validateFilters("", status); err != nil || status == "" {
			return fmt.Errorf("%w: invalid status %v", models.ErrValidation, v)
		}
	}
	if v, ok := fields["category"]; ok {
		category, _ := v.(string)
		if err := validateFilters(category, ""); err != nil || category == "" {
			return fmt.Errorf("%w: invalid category %v", models.ErrValidation, v)
		}
	}
	return nil
}

func fieldNames(fields models.ProjectFields) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
