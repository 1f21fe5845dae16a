package functional_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/rpggio/codepad/internal/testserver"
	"github.com/stretchr/testify/require"
)

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      any             `json:"id,omitempty"`
}

type rpcError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type state struct {
	Projects []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Active bool   `json:"active"`
	} `json:"projects"`
	CurrentProject *struct {
		ID    string `json:"id"`
		Files []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"files"`
	} `json:"current_project"`
	CurrentFile *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"current_file"`
	Tabs []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Active bool   `json:"active"`
	} `json:"tabs"`
	Editor           string `json:"editor"`
	EditorEnabled    bool   `json:"editor_enabled"`
	AssistantVisible bool   `json:"assistant_visible"`
}

type commandResult struct {
	Applied   bool   `json:"applied"`
	CreatedID string `json:"created_id"`
	State     state  `json:"state"`
}

func rpcCall(t *testing.T, ts *testserver.TestServer, method string, params any) rpcResponse {
	t.Helper()

	payload := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		payload["params"] = params
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(ts.Server.URL+"/rpc", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(bodyBytes))
	}

	var result rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func command(t *testing.T, ts *testserver.TestServer, method string, params any) commandResult {
	t.Helper()
	resp := rpcCall(t, ts, method, params)
	require.Nil(t, resp.Error, "RPC error: %v", resp.Error)

	var out commandResult
	require.NoError(t, json.Unmarshal(resp.Result, &out))
	return out
}

func getState(t *testing.T, ts *testserver.TestServer) state {
	t.Helper()
	resp := rpcCall(t, ts, "get_state", nil)
	require.Nil(t, resp.Error)

	var out state
	require.NoError(t, json.Unmarshal(resp.Result, &out))
	return out
}

func TestFunctional_DemoScenarioSurvivesRestart(t *testing.T) {
	ts := testserver.New(t)

	demo := command(t, ts, "create_project", map[string]any{"name": "Demo"})
	a := command(t, ts, "create_file", map[string]any{"name": "a.txt"})
	b := command(t, ts, "create_file", map[string]any{"name": "b.txt"})

	command(t, ts, "open_file", map[string]any{"id": a.CreatedID})
	command(t, ts, "open_file", map[string]any{"id": b.CreatedID})
	command(t, ts, "edit_active_file", map[string]any{"text": "hello"})

	closed := command(t, ts, "close_tab", map[string]any{"id": b.CreatedID})
	require.Equal(t, a.CreatedID, closed.State.CurrentFile.ID)
	require.Equal(t, "", closed.State.Editor)

	ts.Restart(t)

	restored := getState(t, ts)
	require.Equal(t, demo.CreatedID, restored.CurrentProject.ID)
	require.Nil(t, restored.CurrentFile)
	require.Empty(t, restored.Tabs)

	reopenB := command(t, ts, "open_file", map[string]any{"id": b.CreatedID})
	require.Equal(t, "hello", reopenB.State.Editor)
	reopenA := command(t, ts, "open_file", map[string]any{"id": a.CreatedID})
	require.Equal(t, "", reopenA.State.Editor)
}

func TestFunctional_TabsAndNavigation(t *testing.T) {
	ts := testserver.New(t)

	command(t, ts, "create_project", map[string]any{"name": "Tabs"})
	var ids []string
	for _, name := range []string{"one", "two", "three"} {
		ids = append(ids, command(t, ts, "create_file", map[string]any{"name": name}).CreatedID)
	}

	again := command(t, ts, "open_file", map[string]any{"id": ids[0]})
	require.Len(t, again.State.Tabs, 3)
	require.True(t, again.State.Tabs[0].Active)

	closed := command(t, ts, "close_tab", map[string]any{"id": ids[0]})
	require.Len(t, closed.State.Tabs, 2)
	require.Equal(t, ids[2], closed.State.CurrentFile.ID)

	miss := command(t, ts, "set_active_tab", map[string]any{"id": "nope"})
	require.False(t, miss.Applied)
	require.Equal(t, ids[2], miss.State.CurrentFile.ID)

	command(t, ts, "close_tab", map[string]any{"id": ids[1]})
	last := command(t, ts, "close_tab", map[string]any{"id": ids[2]})
	require.Nil(t, last.State.CurrentFile)
	require.Empty(t, last.State.Tabs)
	require.False(t, last.State.EditorEnabled)

	ignored := command(t, ts, "edit_active_file", map[string]any{"text": "lost"})
	require.False(t, ignored.Applied)
}

func TestFunctional_ProjectSwitch(t *testing.T) {
	t.Run("reset", func(t *testing.T) {
		ts := testserver.New(t)
		first := command(t, ts, "create_project", map[string]any{"name": "first"})
		command(t, ts, "create_file", map[string]any{"name": "a"})
		switched := command(t, ts, "create_project", map[string]any{"name": "second"})
		require.Nil(t, switched.State.CurrentFile)
		require.Empty(t, switched.State.Tabs)

		back := command(t, ts, "open_project", map[string]any{"id": first.CreatedID})
		require.True(t, back.Applied)
		require.Empty(t, back.State.Tabs)
	})

	t.Run("stale selection kept", func(t *testing.T) {
		ts := testserver.New(t, testserver.WithResetOnProjectSwitch(false))
		command(t, ts, "create_project", map[string]any{"name": "first"})
		a := command(t, ts, "create_file", map[string]any{"name": "a"})
		switched := command(t, ts, "create_project", map[string]any{"name": "second"})
		require.Equal(t, a.CreatedID, switched.State.CurrentFile.ID)
		require.Len(t, switched.State.Tabs, 1)

		stale := command(t, ts, "set_active_tab", map[string]any{"id": a.CreatedID})
		require.False(t, stale.Applied)
	})
}

func TestFunctional_Errors(t *testing.T) {
	ts := testserver.New(t)

	resp := rpcCall(t, ts, "create_file", map[string]any{"name": "orphan"})
	require.NotNil(t, resp.Error)
	require.Equal(t, "NO_PROJECT_OPEN", resp.Error.Data["code"])

	resp = rpcCall(t, ts, "create_project", map[string]any{"name": "   "})
	require.NotNil(t, resp.Error)
	require.Equal(t, "INVALID_INPUT", resp.Error.Data["code"])
	require.Empty(t, getState(t, ts).Projects)

	resp = rpcCall(t, ts, "delete_everything", nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)
}

func TestFunctional_AssistantAndActivity(t *testing.T) {
	ts := testserver.New(t)

	command(t, ts, "send_assistant_query", map[string]any{"text": "класс в C++"})
	ts.Clock.Advance(time.Second)

	resp := rpcCall(t, ts, "get_transcript", nil)
	require.Nil(t, resp.Error)
	var transcript struct {
		Messages []struct {
			Sender string `json:"sender"`
			Text   string `json:"text"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &transcript))
	require.Len(t, transcript.Messages, 2)
	require.Equal(t, "bot", transcript.Messages[1].Sender)
	require.Contains(t, transcript.Messages[1].Text, "class MyClass")

	hidden := command(t, ts, "toggle_assistant", nil)
	require.False(t, hidden.State.AssistantVisible)

	command(t, ts, "create_project", map[string]any{"name": "Journal"})
	command(t, ts, "create_file", map[string]any{"name": "main.py"})
	command(t, ts, "edit_active_file", map[string]any{"text": "print(1)"})

	resp = rpcCall(t, ts, "get_recent_activity", map[string]any{"limit": 2})
	require.Nil(t, resp.Error)
	var entries []struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &entries))
	require.Len(t, entries, 2)
	require.Equal(t, "content_saved", entries[0].Type)
	require.Equal(t, "file_created", entries[1].Type)
}
