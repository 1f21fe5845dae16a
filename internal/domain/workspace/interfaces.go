package workspace

import (
	"context"

	"github.com/rpggio/codepad/internal/domain/activity"
	"github.com/rpggio/codepad/internal/domain/project"
)

// ProjectStore is the project/file store the workspace navigates.
type ProjectStore interface {
	Load(ctx context.Context) []*project.Project
	Projects() []*project.Project
	CreateProject(ctx context.Context, name string) (*project.Project, error)
	CreateFile(ctx context.Context, projectID, name string) (*project.File, error)
	UpdateContent(ctx context.Context, projectID, fileID, content string) (*project.File, error)
	FindProject(id string) *project.Project
}

// ActivityLogger journals completed mutations.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.Entry) error
}
