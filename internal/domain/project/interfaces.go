package project

import "context"

// Repository persists the whole project collection as one unit.
type Repository interface {
	Load(ctx context.Context) ([]*Project, error)
	Save(ctx context.Context, projects []*Project) error
}
