package mcp

import (
	"time"

	"github.com/rpggio/codepad/internal/domain/activity"
	"github.com/rpggio/codepad/internal/domain/assistant"
	"github.com/rpggio/codepad/internal/domain/workspace"
)

type NameParams struct {
	Name string `json:"name"`
}

type IDParams struct {
	ID string `json:"id"`
}

type EditParams struct {
	Text string `json:"text"`
}

type QueryParams struct {
	Text string `json:"text"`
}

type AskParams struct {
	Query string `json:"query"`
}

type GetRecentActivityParams struct {
	ProjectID string  `json:"project_id,omitempty"`
	FileID    *string `json:"file_id,omitempty"`
	Limit     int     `json:"limit,omitempty"`
}

// StateResponse is the render-ready state returned by every command.
type StateResponse struct {
	workspace.State
	AssistantVisible bool `json:"assistant_visible"`
}

// CommandResult reports whether a command changed anything, plus the state
// after it ran.
type CommandResult struct {
	Applied   bool          `json:"applied"`
	CreatedID string        `json:"created_id,omitempty"`
	State     StateResponse `json:"state"`
}

type TranscriptResponse struct {
	Visible  bool                `json:"visible"`
	Pending  int                 `json:"pending"`
	Messages []assistant.Message `json:"messages"`
}

type AskResponse struct {
	Reply string `json:"reply"`
}

type ActivityEntryResponse struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      activity.Type `json:"type"`
	ProjectID string        `json:"project_id"`
	FileID    *string       `json:"file_id,omitempty"`
	Summary   string        `json:"summary"`
}
