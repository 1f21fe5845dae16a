package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rpggio/codepad/internal/domain/activity"
	"github.com/rpggio/codepad/internal/domain/project"
)

// Service tracks the open project, the active file and the ordered open
// tabs, and binds the editing surface to the active file.
//
// Service is not safe for concurrent use; callers serialize commands.
type Service struct {
	store         ProjectStore
	activity      ActivityLogger
	logger        *slog.Logger
	resetOnSwitch bool

	currentProject string
	currentFile    fileRef
	tabs           []Tab
	editor         string

	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(Event)
}

// Option configures a Service.
type Option func(*Service)

// WithResetOnProjectSwitch controls whether opening a different project
// clears the active file and the open tabs. When disabled, the previous
// selection is kept until a file of the new project is opened.
func WithResetOnProjectSwitch(reset bool) Option {
	return func(s *Service) { s.resetOnSwitch = reset }
}

// WithActivity journals project, file and content mutations.
func WithActivity(logger ActivityLogger) Option {
	return func(s *Service) { s.activity = logger }
}

// NewService creates a workspace with nothing selected.
func NewService(store ProjectStore, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		store:         store,
		logger:        logger,
		resetOnSwitch: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it. Listeners run in subscription order.
func (s *Service) Subscribe(fn func(Event)) func() {
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Restore loads the stored projects, clears the selection and opens the
// first project if there is one.
func (s *Service) Restore(ctx context.Context) *project.Project {
	projects := s.store.Load(ctx)
	s.currentProject = ""
	s.currentFile = fileRef{}
	s.tabs = nil
	s.editor = ""
	s.emit(Event{Type: EventProjectsChanged})

	if len(projects) == 0 {
		return nil
	}
	return s.OpenProject(projects[0].ID)
}

// CreateProject creates a project and opens it.
func (s *Service) CreateProject(ctx context.Context, name string) (*project.Project, error) {
	proj, err := s.store.CreateProject(ctx, name)
	if err != nil {
		return nil, err
	}
	s.emit(Event{Type: EventProjectsChanged, ProjectID: proj.ID})
	s.journal(ctx, &activity.Entry{
		ProjectID: proj.ID,
		Type:      activity.TypeProjectCreated,
		Summary:   fmt.Sprintf("created project %q", proj.Name),
	})
	return s.OpenProject(proj.ID), nil
}

// CreateFile creates a file in the current project and opens it.
func (s *Service) CreateFile(ctx context.Context, name string) (*project.File, error) {
	if s.currentProject == "" {
		return nil, ErrNoProjectOpen
	}
	file, err := s.store.CreateFile(ctx, s.currentProject, name)
	if err != nil {
		return nil, err
	}
	s.emit(Event{Type: EventFilesChanged, ProjectID: s.currentProject, FileID: file.ID})
	fileID := file.ID
	s.journal(ctx, &activity.Entry{
		ProjectID: s.currentProject,
		FileID:    &fileID,
		Type:      activity.TypeFileCreated,
		Summary:   fmt.Sprintf("created file %q", file.Name),
	})
	return s.OpenFile(file.ID), nil
}

// OpenProject makes the project current. An unknown id leaves no project
// open. The returned project is nil in that case.
func (s *Service) OpenProject(id string) *project.Project {
	proj := s.store.FindProject(id)
	next := ""
	if proj != nil {
		next = proj.ID
	}

	if s.resetOnSwitch && next != s.currentProject {
		s.clearSelection()
	}
	s.currentProject = next
	if proj == nil {
		s.logger.Debug("open project: unknown id", "project_id", id)
	}
	s.emit(Event{Type: EventProjectOpened, ProjectID: next})
	return proj
}

// OpenFile activates a file of the current project, appending a tab for it
// unless one is already open. Unknown ids are ignored.
func (s *Service) OpenFile(id string) *project.File {
	proj := s.CurrentProject()
	if proj == nil {
		return nil
	}
	file := proj.FindFile(id)
	if file == nil {
		s.logger.Debug("open file: unknown id", "project_id", proj.ID, "file_id", id)
		return nil
	}

	s.activate(proj.ID, file)
	if s.tabIndex(file.ID) < 0 {
		s.tabs = append(s.tabs, Tab{ID: file.ID, Name: file.Name})
		s.emit(Event{Type: EventTabsChanged, ProjectID: proj.ID, FileID: file.ID})
	}
	s.SetActiveTab(file.ID)
	s.emit(Event{Type: EventFileOpened, ProjectID: proj.ID, FileID: file.ID})
	return file
}

// SetActiveTab activates an open tab whose file still resolves in the
// current project. It reports whether the tab was activated.
func (s *Service) SetActiveTab(id string) bool {
	if s.tabIndex(id) < 0 {
		return false
	}
	proj := s.CurrentProject()
	file := proj.FindFile(id)
	if file == nil {
		s.logger.Debug("set active tab: file not in current project", "file_id", id)
		return false
	}
	s.activate(proj.ID, file)
	s.emit(Event{Type: EventTabsChanged, ProjectID: proj.ID, FileID: file.ID})
	return true
}

// CloseTab removes a tab. Closing the active file's tab activates the last
// remaining tab, or clears the editor when none remain. It reports whether
// a tab was removed.
func (s *Service) CloseTab(id string) bool {
	idx := s.tabIndex(id)
	if idx >= 0 {
		s.tabs = append(s.tabs[:idx:idx], s.tabs[idx+1:]...)
	}

	if s.currentFile.fileID == id {
		if len(s.tabs) > 0 {
			s.SetActiveTab(s.tabs[len(s.tabs)-1].ID)
		} else {
			s.currentFile = fileRef{}
			s.setEditor("")
		}
	}
	s.emit(Event{Type: EventTabsChanged, ProjectID: s.currentProject, FileID: id})
	return idx >= 0
}

// CurrentProject returns the open project, or nil.
func (s *Service) CurrentProject() *project.Project {
	if s.currentProject == "" {
		return nil
	}
	return s.store.FindProject(s.currentProject)
}

// CurrentFile returns the active file, or nil.
func (s *Service) CurrentFile() *project.File {
	if s.currentFile.isZero() {
		return nil
	}
	return s.store.FindProject(s.currentFile.projectID).FindFile(s.currentFile.fileID)
}

// Tabs returns the open tabs in order.
func (s *Service) Tabs() []Tab {
	out := make([]Tab, len(s.tabs))
	copy(out, s.tabs)
	return out
}

// Snapshot builds a render-ready view of the workspace.
func (s *Service) Snapshot() State {
	state := State{
		Projects: []ProjectItem{},
		Tabs:     []TabItem{},
		Editor:   s.editor,
	}
	for _, proj := range s.store.Projects() {
		state.Projects = append(state.Projects, ProjectItem{
			ID:     proj.ID,
			Name:   proj.Name,
			Active: proj.ID == s.currentProject,
		})
	}
	if proj := s.CurrentProject(); proj != nil {
		view := &ProjectView{ID: proj.ID, Name: proj.Name, Files: []FileItem{}}
		for _, f := range proj.Files {
			view.Files = append(view.Files, FileItem{
				ID:     f.ID,
				Name:   f.Name,
				Active: f.ID == s.currentFile.fileID,
			})
		}
		state.CurrentProject = view
	}
	if file := s.CurrentFile(); file != nil {
		state.CurrentFile = &FileRef{ProjectID: s.currentFile.projectID, ID: file.ID, Name: file.Name}
		state.EditorEnabled = true
	}
	for _, tab := range s.tabs {
		state.Tabs = append(state.Tabs, TabItem{
			ID:     tab.ID,
			Name:   tab.Name,
			Active: tab.ID == s.currentFile.fileID,
		})
	}
	return state
}

func (s *Service) activate(projectID string, file *project.File) {
	s.currentFile = fileRef{projectID: projectID, fileID: file.ID}
	s.setEditor(file.Content)
}

func (s *Service) clearSelection() {
	s.currentFile = fileRef{}
	if len(s.tabs) > 0 {
		s.tabs = nil
		s.emit(Event{Type: EventTabsChanged})
	}
	s.setEditor("")
}

func (s *Service) setEditor(text string) {
	if s.editor == text {
		return
	}
	s.editor = text
	s.emit(Event{Type: EventEditorChanged, ProjectID: s.currentFile.projectID, FileID: s.currentFile.fileID})
}

func (s *Service) tabIndex(id string) int {
	for i, tab := range s.tabs {
		if tab.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) emit(ev Event) {
	for _, l := range s.listeners {
		l.fn(ev)
	}
}

func (s *Service) journal(ctx context.Context, entry *activity.Entry) {
	if s.activity == nil {
		return
	}
	if err := s.activity.LogActivity(ctx, entry); err != nil {
		s.logger.Warn("journaling activity failed", "type", entry.Type, "error", err)
	}
}
