package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Service owns the project collection and is its single source of truth.
// Every mutation is followed by a full write of the collection.
type Service struct {
	repo     Repository
	logger   *slog.Logger
	newID    IDFunc
	projects []*Project
}

// Option configures a Service.
type Option func(*Service)

// WithIDs overrides the identifier generator.
func WithIDs(ids IDFunc) Option {
	return func(s *Service) {
		if ids != nil {
			s.newID = ids
		}
	}
}

// NewService creates a new project service with an empty collection.
// Call Load to populate it from storage.
func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{repo: repo, logger: logger, newID: UUIDs()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the stored one. Storage
// failures degrade to an empty collection.
func (s *Service) Load(ctx context.Context) []*Project {
	projects, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("loading projects failed, starting empty", "error", err)
		projects = nil
	}
	s.projects = make([]*Project, 0, len(projects))
	for _, proj := range projects {
		if proj == nil {
			continue
		}
		files := make([]*File, 0, len(proj.Files))
		for _, f := range proj.Files {
			if f != nil {
				files = append(files, f)
			}
		}
		proj.Files = files
		s.projects = append(s.projects, proj)
	}
	s.logger.Debug("projects loaded", "count", len(s.projects))
	return s.Projects()
}

// Projects returns the projects in creation order. The slice is a copy; the
// projects are the live entities.
func (s *Service) Projects() []*Project {
	out := make([]*Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// CreateProject appends a new empty project and persists the collection.
func (s *Service) CreateProject(ctx context.Context, name string) (*Project, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	id, ok := freshID(s.newID, func(id string) bool { return s.FindProject(id) != nil })
	if !ok {
		return nil, fmt.Errorf("allocating project id: %w", errIDExhausted)
	}

	proj := &Project{ID: id, Name: name, Files: []*File{}}
	s.projects = append(s.projects, proj)

	if err := s.save(ctx); err != nil {
		s.projects = s.projects[:len(s.projects)-1]
		return nil, fmt.Errorf("creating project: %w", err)
	}
	s.logger.Info("project created", "project_id", proj.ID, "name", proj.Name)
	return proj, nil
}

// CreateFile appends a new empty file to the project and persists the collection.
func (s *Service) CreateFile(ctx context.Context, projectID, name string) (*File, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	proj := s.FindProject(projectID)
	if proj == nil {
		return nil, ErrProjectNotFound
	}

	id, ok := freshID(s.newID, proj.hasFile)
	if !ok {
		return nil, fmt.Errorf("allocating file id: %w", errIDExhausted)
	}

	file := &File{ID: id, Name: name}
	proj.Files = append(proj.Files, file)

	if err := s.save(ctx); err != nil {
		proj.Files = proj.Files[:len(proj.Files)-1]
		return nil, fmt.Errorf("creating file: %w", err)
	}
	s.logger.Info("file created", "project_id", proj.ID, "file_id", file.ID, "name", file.Name)
	return file, nil
}

// UpdateContent overwrites the file's content in place and persists the
// collection.
func (s *Service) UpdateContent(ctx context.Context, projectID, fileID, content string) (*File, error) {
	proj := s.FindProject(projectID)
	if proj == nil {
		return nil, ErrProjectNotFound
	}
	file := proj.FindFile(fileID)
	if file == nil {
		return nil, ErrFileNotFound
	}

	file.Content = content
	if err := s.save(ctx); err != nil {
		return nil, fmt.Errorf("updating content: %w", err)
	}
	return file, nil
}

// FindProject returns the project with the given id, or nil.
func (s *Service) FindProject(id string) *Project {
	for _, proj := range s.projects {
		if proj.ID == id {
			return proj
		}
	}
	return nil
}

// FindFile returns the file with the given id inside proj, or nil.
func (s *Service) FindFile(proj *Project, id string) *File {
	return proj.FindFile(id)
}

// FindFileIn resolves a file by project and file id.
func (s *Service) FindFileIn(projectID, fileID string) *File {
	return s.FindProject(projectID).FindFile(fileID)
}

func (s *Service) save(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.projects); err != nil {
		s.logger.Error("saving projects failed", "error", err)
		return fmt.Errorf("saving projects: %w", err)
	}
	return nil
}

var errIDExhausted = errors.New("id generator kept returning taken ids")
