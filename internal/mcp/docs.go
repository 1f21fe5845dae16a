package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `codepad is a small code notebook: Projects own ordered Files; open Files are pinned as Tabs; the Editor shows the active File.

Core concepts:
- Project: named container. Created by create_project, which also opens it.
- File: named text document inside one Project. create_file needs an open project and opens the new file.
- Tab: pinned file of the open project. open_file adds a tab once; close_tab on the active tab activates the last remaining tab.
- Editor: edit_active_file replaces the active file's content and persists the whole collection.
- Assistant: send_assistant_query appends to a transcript and the canned reply lands after a short delay; ask returns the reply directly.

Every mutating command returns {applied, state}. Navigation with an unknown id is not an error: it returns applied=false.

Docs:
- codepad://docs/index
- codepad://docs/commands
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "codepad://docs/index",
		Name:        "docs_index",
		Title:       "codepad docs index",
		Description: "Entry point: the notebook model and a minimal session.",
		Content: `# codepad

## Quick start

1. ` + "`create_project {name}`" + ` opens the new project.
2. ` + "`create_file {name}`" + ` opens the new file in a tab.
3. ` + "`edit_active_file {text}`" + ` saves content.
4. ` + "`get_state`" + ` shows projects, files, tabs and the editor.

## Model

- Ids are unique within their collection: projects in the store, files in their project.
- Tabs hold each file at most once, in the order they were opened.
- Every create or edit rewrites the stored collection. Selection and tabs are not stored; a restart opens the first project with no tabs.
- Switching projects clears the active file and tabs (unless the server runs with ` + "`reset_on_project_switch: false`" + `).

See ` + "`codepad://docs/commands`" + ` for each command.
`,
	},
	{
		URI:         "codepad://docs/commands",
		Name:        "docs_commands",
		Title:       "Command reference",
		Description: "Arguments, results and error codes for every command.",
		Content: `# Commands

| command | args | result |
|---|---|---|
| create_project | name | applied, created_id, state |
| create_file | name | applied, created_id, state |
| open_project | id | applied, state |
| open_file | id | applied, state |
| set_active_tab | id | applied, state |
| close_tab | id | applied, state |
| edit_active_file | text | applied, state |
| toggle_assistant | | applied, state |
| send_assistant_query | text | applied, state |
| get_state | | state |
| get_transcript | | visible, pending, messages |
| ask | query | reply |
| get_recent_activity | project_id, file_id, limit | entries |

## Errors

- ` + "`INVALID_INPUT`" + `: blank name or malformed arguments. Nothing changed.
- ` + "`NO_PROJECT_OPEN`" + `: create_file without an open project.
- ` + "`EMPTY_QUERY`" + `: blank assistant query.
- ` + "`UNKNOWN_COMMAND`" + `: not in the dispatch table.

## Assistant topics

Python arrays, loops and functions; C++ classes; HTML forms; CSS animation; JS objects. Queries may be Russian or English, e.g. "цикл в Python" or "loop in python".
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
