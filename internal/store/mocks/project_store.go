// Package mocks provides testify mocks for the store interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"folio/internal/models"
	"folio/internal/store"
)

// ProjectStore is a mock of store.ProjectStore.
type ProjectStore struct {
	mock.Mock
}

var _ store.ProjectStore = (*ProjectStore)(nil)

func (m *ProjectStore) ListProjects(ctx context.Context, q models.ProjectQuery) (*models.ProjectPage, error) {
	args := m.Called(ctx, q)
	page, _ := args.Get(0).(*models.ProjectPage)
	return page, args.Error(1)
}

func (m *ProjectStore) RecentProjects(ctx context.Context, limit int) (*models.RecentProjects, error) {
	args := m.Called(ctx, limit)
	recent, _ := args.Get(0).(*models.RecentProjects)
	return recent, args.Error(1)
}

func (m *ProjectStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Project)
	return p, args.Error(1)
}

func (m *ProjectStore) AllProjects(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]models.Project)
	return projects, args.Error(1)
}

func (m *ProjectStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *ProjectStore) CreateProject(ctx context.Context, fields models.ProjectFields) (*models.Project, error) {
	args := m.Called(ctx, fields)
	p, _ := args.Get(0).(*models.Project)
	return p, args.Error(1)
}

func (m *ProjectStore) UpdateProject(ctx context.Context, id string, fields models.ProjectFields) (*models.Project, error) {
	args := m.Called(ctx, id, fields)
	p, _ := args.Get(0).(*models.Project)
	return p, args.Error(1)
}

func (m *ProjectStore) DeleteProject(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ProjectStore) Close() error {
	return m.Called().Error(0)
}
