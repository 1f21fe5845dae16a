package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/codepad/internal/domain/project"
	"github.com/rpggio/codepad/internal/repository"
)

// DefaultKey is the record name the project collection is stored under.
const DefaultKey = "mycoder-projects"

var _ repository.ProjectRepository = (*ProjectRepository)(nil)

// ProjectRepository stores the whole project collection as one JSON value
// in the kv table.
type ProjectRepository struct {
	db     *DB
	key    string
	logger *slog.Logger
}

// NewProjectRepository creates a new ProjectRepository. An empty key uses
// DefaultKey.
func NewProjectRepository(db *DB, key string, logger *slog.Logger) *ProjectRepository {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ProjectRepository{db: db, key: key, logger: logger}
}

// Load decodes the stored collection. A missing row is an empty collection.
func (r *ProjectRepository) Load(ctx context.Context) ([]*project.Project, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, r.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return []*project.Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}

	var projects []*project.Project
	if err := json.Unmarshal([]byte(value), &projects); err != nil {
		r.logger.Warn("stored projects are not valid JSON", "key", r.key, "error", err)
		return nil, fmt.Errorf("%w: %v", repository.ErrCorrupt, err)
	}
	if projects == nil {
		return []*project.Project{}, nil
	}
	return projects, nil
}

// Save replaces the stored collection.
func (r *ProjectRepository) Save(ctx context.Context, projects []*project.Project) error {
	if projects == nil {
		projects = []*project.Project{}
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("failed to encode projects: %w", err)
	}

	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, r.key, string(data), time.Now()); err != nil {
		return fmt.Errorf("failed to write projects: %w", err)
	}
	return nil
}
