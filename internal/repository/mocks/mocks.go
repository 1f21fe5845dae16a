package mocks

import (
	"context"

	"github.com/rpggio/codepad/internal/domain/activity"
	"github.com/rpggio/codepad/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for repository.ProjectRepository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Load(ctx context.Context) ([]*project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]*project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Save(ctx context.Context, projects []*project.Project) error {
	args := m.Called(ctx, projects)
	return args.Error(0)
}

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
