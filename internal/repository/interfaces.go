package repository

import (
	"context"

	"github.com/rpggio/codepad/internal/domain/activity"
	"github.com/rpggio/codepad/internal/domain/project"
)

// ProjectRepository persists the full project collection as a single blob.
// Load returns an empty collection when nothing is stored and an error
// wrapping ErrCorrupt when the blob cannot be decoded.
type ProjectRepository interface {
	Load(ctx context.Context) ([]*project.Project, error)
	Save(ctx context.Context, projects []*project.Project) error
}

// ActivityRepository manages the activity journal
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.Entry) error
	List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
}
