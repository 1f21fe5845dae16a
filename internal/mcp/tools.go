package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// buildToolCatalog returns all available MCP tools. Every entry names a
// command in the Handler dispatch table.
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Projects and files
		{
			Name:        "create_project",
			Description: "Create a project and open it",
			InputSchema: objectSchema(map[string]any{
				"name": stringProp("Project display name (must not be blank)"),
			}, "name"),
		},
		{
			Name:        "create_file",
			Description: "Create an empty file in the open project and open it in a tab",
			InputSchema: objectSchema(map[string]any{
				"name": stringProp("File name (must not be blank)"),
			}, "name"),
		},
		{
			Name:        "open_project",
			Description: "Open a project by id. An unknown id leaves no project open",
			InputSchema: objectSchema(map[string]any{
				"id": stringProp("Project ID"),
			}, "id"),
		},
		{
			Name:        "open_file",
			Description: "Open a file of the current project, adding a tab if needed",
			InputSchema: objectSchema(map[string]any{
				"id": stringProp("File ID"),
			}, "id"),
		},

		// Tabs and editor
		{
			Name:        "set_active_tab",
			Description: "Activate an open tab",
			InputSchema: objectSchema(map[string]any{
				"id": stringProp("File ID of the tab"),
			}, "id"),
		},
		{
			Name:        "close_tab",
			Description: "Close a tab; closing the active tab activates the last remaining one",
			InputSchema: objectSchema(map[string]any{
				"id": stringProp("File ID of the tab"),
			}, "id"),
		},
		{
			Name:        "edit_active_file",
			Description: "Replace the active file's content and persist it",
			InputSchema: objectSchema(map[string]any{
				"text": stringProp("New file content"),
			}, "text"),
		},
		{
			Name:        "get_state",
			Description: "Get projects, files, tabs, editor text and assistant visibility",
			InputSchema: objectSchema(map[string]any{}),
		},

		// Assistant
		{
			Name:        "toggle_assistant",
			Description: "Show or hide the assistant panel",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        "send_assistant_query",
			Description: "Post a question to the assistant transcript; the reply arrives after a short delay",
			InputSchema: objectSchema(map[string]any{
				"text": stringProp("Question text"),
			}, "text"),
		},
		{
			Name:        "get_transcript",
			Description: "Get the assistant transcript",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        "ask",
			Description: "Get the assistant's canned reply without touching the transcript",
			InputSchema: objectSchema(map[string]any{
				"query": stringProp("Question text"),
			}, "query"),
		},

		// Journal
		{
			Name:        "get_recent_activity",
			Description: "List recent project, file and save events, newest first",
			InputSchema: objectSchema(map[string]any{
				"project_id": stringProp("Filter by project"),
				"file_id":    stringProp("Filter by file"),
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum entries (default 50)",
				},
			}),
		},
	}
}

func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, name, args)
			if err != nil {
				return errorResult(err), nil
			}
			return textResult(result)
		})
	}
}

func textResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(err error) *sdkmcp.CallToolResult {
	payload := any(map[string]string{"message": err.Error()})
	if apiErr := MapError(err); apiErr != nil {
		payload = apiErr
	}
	data, _ := json.Marshal(payload)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
