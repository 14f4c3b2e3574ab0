package store

import (
	"context"

	"folio/internal/models"
)

// --- Project Store ---

// ProjectReader is the read side of the portfolio API.
type ProjectReader interface {
	ListProjects(ctx context.Context, q models.ProjectQuery) (*models.ProjectPage, error)
	RecentProjects(ctx context.Context, limit int) (*models.RecentProjects, error)
	// GetProject returns models.ErrNotFound when the id is unknown.
	GetProject(ctx context.Context, id string) (*models.Project, error)
	// AllProjects returns the full snapshot used by aggregate views.
	AllProjects(ctx context.Context) ([]models.Project, error)

	Ping(ctx context.Context) error
}

// ProjectWriter is the write side of the portfolio API.
type ProjectWriter interface {
	CreateProject(ctx context.Context, fields models.ProjectFields) (*models.Project, error)
	UpdateProject(ctx context.Context, id string, fields models.ProjectFields) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// ProjectStore combines both sides with an explicit lifecycle.
type ProjectStore interface {
	ProjectReader
	ProjectWriter
	Close() error
}
