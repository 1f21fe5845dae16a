// Package filestore keeps the project collection in a JSON document on
// disk, one entry per storage key.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rpggio/codepad/internal/domain/project"
	"github.com/rpggio/codepad/internal/repository"
)

// DefaultKey is the entry the project collection is stored under.
const DefaultKey = "mycoder-projects"

var _ repository.ProjectRepository = (*ProjectRepository)(nil)

// ProjectRepository implements repository.ProjectRepository on a file.
type ProjectRepository struct {
	path   string
	key    string
	logger *slog.Logger

	mu sync.Mutex
}

// NewProjectRepository creates a repository backed by the file at path. The
// parent directory is created on first save.
func NewProjectRepository(path, key string, logger *slog.Logger) *ProjectRepository {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ProjectRepository{path: path, key: key, logger: logger}
}

// Path returns the backing file.
func (r *ProjectRepository) Path() string { return r.path }

// Load decodes the collection stored under the repository key.
func (r *ProjectRepository) Load(ctx context.Context) ([]*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.readDocument()
	if err != nil {
		return nil, err
	}
	raw, ok := doc[r.key]
	if !ok {
		return []*project.Project{}, nil
	}

	var projects []*project.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		r.logger.Warn("stored projects are not valid JSON", "path", r.path, "key", r.key, "error", err)
		return nil, fmt.Errorf("%w: %v", repository.ErrCorrupt, err)
	}
	if projects == nil {
		return []*project.Project{}, nil
	}
	return projects, nil
}

// Save replaces the collection under the repository key. Other keys in the
// document are kept.
func (r *ProjectRepository) Save(ctx context.Context, projects []*project.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if projects == nil {
		projects = []*project.Project{}
	}
	encoded, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("encoding projects: %w", err)
	}

	doc, err := r.readDocument()
	if err != nil {
		// A corrupt document is replaced rather than blocking every save.
		r.logger.Warn("replacing unreadable state file", "path", r.path, "error", err)
		doc = map[string]json.RawMessage{}
	}
	doc[r.key] = encoded

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state file: %w", err)
	}
	data = append(data, '\n')
	return writeAtomic(r.path, data)
}

func (r *ProjectRepository) readDocument() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrCorrupt, err)
	}
	return doc, nil
}

func writeAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating state directory: %w", err)
		}
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating temporary state file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary state file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary state file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary state file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming state file into place: %w", err)
	}
	return nil
}
