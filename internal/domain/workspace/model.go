package workspace

// Tab is an open-tab projection of a file in the current project.
type Tab struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EventType names a state transition observed by render collaborators.
type EventType string

const (
	EventProjectsChanged EventType = "projects_changed"
	EventFilesChanged    EventType = "files_changed"
	EventProjectOpened   EventType = "project_opened"
	EventFileOpened      EventType = "file_opened"
	EventTabsChanged     EventType = "tabs_changed"
	EventEditorChanged   EventType = "editor_changed"
	EventContentSaved    EventType = "content_saved"
)

// Event is emitted after a transition has completed.
type Event struct {
	Type      EventType `json:"type"`
	ProjectID string    `json:"project_id,omitempty"`
	FileID    string    `json:"file_id,omitempty"`
}

// State is a render-ready snapshot of the workspace.
type State struct {
	Projects       []ProjectItem `json:"projects"`
	CurrentProject *ProjectView  `json:"current_project"`
	CurrentFile    *FileRef      `json:"current_file"`
	Tabs           []TabItem     `json:"tabs"`
	Editor         string        `json:"editor"`
	EditorEnabled  bool          `json:"editor_enabled"`
}

type ProjectItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type ProjectView struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Files []FileItem `json:"files"`
}

type FileItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// FileRef identifies the active file. ProjectID may differ from the current
// project when stale selection is retained across project switches.
type FileRef struct {
	ProjectID string `json:"project_id"`
	ID        string `json:"id"`
	Name      string `json:"name"`
}

type TabItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// fileRef is a weak reference to a file by owning project and id.
type fileRef struct {
	projectID string
	fileID    string
}

func (r fileRef) isZero() bool { return r.fileID == "" }
