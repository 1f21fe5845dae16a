package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpggio/codepad/internal/mcp"
	"github.com/stretchr/testify/require"
)

type testHandler struct {
	method string
	params json.RawMessage
	err    error
}

func (h *testHandler) Handle(_ context.Context, method string, params json.RawMessage) (any, error) {
	h.method = method
	h.params = params
	if h.err != nil {
		return nil, h.err
	}
	return map[string]bool{"applied": true}, nil
}

func post(t *testing.T, url, body string) Response {
	t.Helper()
	resp, err := http.Post(url+"/rpc", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHTTPServer_RPC(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(handler, Options{}))
	t.Cleanup(server.Close)

	resp := post(t, server.URL, `{"jsonrpc":"2.0","method":"open_file","params":{"id":"f1"},"id":1}`)
	require.Nil(t, resp.Error)
	require.Equal(t, "open_file", handler.method)
	require.JSONEq(t, `{"id":"f1"}`, string(handler.params))
	require.Equal(t, map[string]any{"applied": true}, resp.Result)
	require.EqualValues(t, 1, resp.ID)
}

func TestHTTPServer_RPCErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unknown command", &mcp.APIError{Code: "UNKNOWN_COMMAND", Message: "unknown command: x"}, ErrMethodNotFound},
		{"invalid input", &mcp.APIError{Code: "INVALID_INPUT", Message: "blank"}, ErrInvalidParams},
		{"domain", &mcp.APIError{Code: "NO_PROJECT_OPEN", Message: "no project"}, ErrServer},
		{"internal", errors.New("boom"), ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(NewServer(&testHandler{err: tt.err}, Options{}))
			t.Cleanup(server.Close)

			resp := post(t, server.URL, `{"jsonrpc":"2.0","method":"x","id":7}`)
			require.NotNil(t, resp.Error)
			require.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHTTPServer_MalformedRequests(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, Options{}))
	t.Cleanup(server.Close)

	resp := post(t, server.URL, `{not json`)
	require.Equal(t, ErrParseCode, resp.Error.Code)

	resp = post(t, server.URL, `{"jsonrpc":"1.0","method":"x"}`)
	require.Equal(t, ErrInvalidReq, resp.Error.Code)
}

func TestHTTPServer_Health(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, Options{}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_MountsMCP(t *testing.T) {
	mounted := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	server := httptest.NewServer(NewServer(&testHandler{}, Options{MCP: mounted}))
	t.Cleanup(server.Close)

	resp, err := http.Post(server.URL+"/mcp", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusTeapot, resp.StatusCode)
}
