package activity

import "time"

// Type represents the type of activity event
type Type string

const (
	TypeProjectCreated Type = "project_created"
	TypeFileCreated    Type = "file_created"
	TypeContentSaved   Type = "content_saved"
)

// Entry represents an event in the activity journal
type Entry struct {
	ID        int64     `json:"id"`
	ProjectID string    `json:"project_id"`
	FileID    *string   `json:"file_id,omitempty"`
	Type      Type      `json:"type"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
