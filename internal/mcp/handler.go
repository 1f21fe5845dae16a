package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/rpggio/codepad/internal/domain/activity"
	"github.com/rpggio/codepad/internal/domain/assistant"
	"github.com/rpggio/codepad/internal/domain/project"
	"github.com/rpggio/codepad/internal/domain/workspace"
)

// WorkspaceService defines workspace operations needed by MCP.
type WorkspaceService interface {
	CreateProject(ctx context.Context, name string) (*project.Project, error)
	CreateFile(ctx context.Context, name string) (*project.File, error)
	OpenProject(id string) *project.Project
	OpenFile(id string) *project.File
	SetActiveTab(id string) bool
	CloseTab(id string) bool
	Edit(ctx context.Context, text string) (bool, error)
	Snapshot() workspace.State
}

// AssistantService defines assistant operations needed by MCP.
type AssistantService interface {
	Ask(query string) (string, error)
	Toggle() bool
	Visible() bool
	Pending() int
	Transcript() []assistant.Message
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
}

type command func(ctx context.Context, params json.RawMessage) (any, error)

// Handler dispatches commands through a fixed table. Commands run one at a
// time.
type Handler struct {
	workspace WorkspaceService
	assistant AssistantService
	activity  ActivityService
	logger    *slog.Logger

	mu       sync.Mutex
	commands map[string]command
}

// NewHandler creates a new MCP handler. activitySvc may be nil, in which
// case get_recent_activity returns an empty list.
func NewHandler(ws WorkspaceService, asst AssistantService, activitySvc ActivityService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{
		workspace: ws,
		assistant: asst,
		activity:  activitySvc,
		logger:    logger,
	}
	h.commands = map[string]command{
		"create_project":       h.createProject,
		"create_file":          h.createFile,
		"open_project":         h.openProject,
		"open_file":            h.openFile,
		"set_active_tab":       h.setActiveTab,
		"close_tab":            h.closeTab,
		"edit_active_file":     h.editActiveFile,
		"toggle_assistant":     h.toggleAssistant,
		"send_assistant_query": h.sendAssistantQuery,
		"get_state":            h.getState,
		"get_transcript":       h.getTranscript,
		"ask":                  h.ask,
		"get_recent_activity":  h.getRecentActivity,
	}
	return h
}

// Commands lists the dispatch table keys in sorted order.
func (h *Handler) Commands() []string {
	names := make([]string, 0, len(h.commands))
	for name := range h.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handle dispatches a command by name. Domain errors are returned as
// *APIError.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	cmd, ok := h.commands[method]
	if !ok {
		return nil, mapError(fmt.Errorf("%w: %s", ErrUnknownCommand, method))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := cmd(ctx, params)
	if err != nil {
		h.logger.Debug("command failed", "method", method, "error", err)
		return nil, mapError(err)
	}
	return result, nil
}

// Run encodes params and dispatches the command.
func (h *Handler) Run(ctx context.Context, method string, params any) (any, error) {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, mapError(fmt.Errorf("%w: %v", ErrInvalidParams, err))
		}
		raw = data
	}
	return h.Handle(ctx, method, raw)
}

func (h *Handler) createProject(ctx context.Context, params json.RawMessage) (any, error) {
	var req NameParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	proj, err := h.workspace.CreateProject(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	return h.result(true, proj.ID), nil
}

func (h *Handler) createFile(ctx context.Context, params json.RawMessage) (any, error) {
	var req NameParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	file, err := h.workspace.CreateFile(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	return h.result(true, file.ID), nil
}

func (h *Handler) openProject(_ context.Context, params json.RawMessage) (any, error) {
	var req IDParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.result(h.workspace.OpenProject(req.ID) != nil, ""), nil
}

func (h *Handler) openFile(_ context.Context, params json.RawMessage) (any, error) {
	var req IDParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.result(h.workspace.OpenFile(req.ID) != nil, ""), nil
}

func (h *Handler) setActiveTab(_ context.Context, params json.RawMessage) (any, error) {
	var req IDParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.result(h.workspace.SetActiveTab(req.ID), ""), nil
}

func (h *Handler) closeTab(_ context.Context, params json.RawMessage) (any, error) {
	var req IDParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.result(h.workspace.CloseTab(req.ID), ""), nil
}

func (h *Handler) editActiveFile(ctx context.Context, params json.RawMessage) (any, error) {
	var req EditParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	applied, err := h.workspace.Edit(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	return h.result(applied, ""), nil
}

func (h *Handler) toggleAssistant(_ context.Context, _ json.RawMessage) (any, error) {
	h.assistant.Toggle()
	return h.result(true, ""), nil
}

func (h *Handler) sendAssistantQuery(_ context.Context, params json.RawMessage) (any, error) {
	var req QueryParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	if _, err := h.assistant.Ask(req.Text); err != nil {
		return nil, err
	}
	return h.result(true, ""), nil
}

func (h *Handler) getState(_ context.Context, _ json.RawMessage) (any, error) {
	return h.state(), nil
}

func (h *Handler) getTranscript(_ context.Context, _ json.RawMessage) (any, error) {
	messages := h.assistant.Transcript()
	if messages == nil {
		messages = []assistant.Message{}
	}
	return TranscriptResponse{
		Visible:  h.assistant.Visible(),
		Pending:  h.assistant.Pending(),
		Messages: messages,
	}, nil
}

func (h *Handler) ask(_ context.Context, params json.RawMessage) (any, error) {
	var req AskParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, assistant.ErrEmptyQuery
	}
	return AskResponse{Reply: assistant.Respond(req.Query)}, nil
}

func (h *Handler) getRecentActivity(ctx context.Context, params json.RawMessage) (any, error) {
	var req GetRecentActivityParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	resp := []ActivityEntryResponse{}
	if h.activity == nil {
		return resp, nil
	}
	entries, err := h.activity.GetRecentActivity(ctx, activity.ListOptions{
		ProjectID: req.ProjectID,
		FileID:    req.FileID,
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		resp = append(resp, ActivityEntryResponse{
			Timestamp: entry.CreatedAt,
			Type:      entry.Type,
			ProjectID: entry.ProjectID,
			FileID:    entry.FileID,
			Summary:   entry.Summary,
		})
	}
	return resp, nil
}

func (h *Handler) result(applied bool, createdID string) CommandResult {
	return CommandResult{Applied: applied, CreatedID: createdID, State: h.state()}
}

func (h *Handler) state() StateResponse {
	return StateResponse{
		State:            h.workspace.Snapshot(),
		AssistantVisible: h.assistant.Visible(),
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
