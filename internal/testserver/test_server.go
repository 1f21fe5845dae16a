package testserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/codepad/internal/clock"
	"github.com/rpggio/codepad/internal/domain/activity"
	"github.com/rpggio/codepad/internal/domain/assistant"
	"github.com/rpggio/codepad/internal/domain/project"
	"github.com/rpggio/codepad/internal/domain/workspace"
	"github.com/rpggio/codepad/internal/mcp"
	"github.com/rpggio/codepad/internal/sqlite"
	"github.com/rpggio/codepad/internal/transport"
	"github.com/stretchr/testify/require"
)

// Epoch is the fake clock's start time.
var Epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// TestServer serves the command table over HTTP JSON-RPC (/rpc) and MCP
// (/mcp) backed by an in-memory SQLite database.
type TestServer struct {
	Server *httptest.Server
	DB     *sqlite.DB
	Clock  *clock.Fake

	opts options

	mu      sync.Mutex
	handler *mcp.Handler
}

type options struct {
	resetOnSwitch bool
}

// Option configures a TestServer.
type Option func(*options)

// WithResetOnProjectSwitch sets the workspace project-switch policy.
func WithResetOnProjectSwitch(reset bool) Option {
	return func(o *options) { o.resetOnSwitch = reset }
}

func New(t *testing.T, opts ...Option) *TestServer {
	t.Helper()

	o := options{resetOnSwitch: true}
	for _, opt := range opts {
		opt(&o)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	ts := &TestServer{
		DB:    db,
		Clock: clock.NewFake(Epoch),
		opts:  o,
	}
	ts.Restart(t)

	dispatch := &dispatcher{ts: ts}
	mcpServer := func() *sdkmcp.Server {
		return mcp.NewServer(mcp.Config{Handler: ts.Handler()})
	}
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer() },
		&sdkmcp.StreamableHTTPOptions{Stateless: true},
	)
	ts.Server = httptest.NewServer(transport.NewServer(dispatch, transport.Options{MCP: mcpHandler}))

	t.Cleanup(func() {
		ts.Server.Close()
		_ = db.Close()
	})

	return ts
}

// Restart rebuilds every service on the same database, as a process
// restart would: stored projects survive, selection and tabs do not.
func (ts *TestServer) Restart(t *testing.T) {
	t.Helper()

	store := project.NewService(sqlite.NewProjectRepository(ts.DB, "", nil), nil)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(ts.DB), nil)
	ws := workspace.NewService(store, nil,
		workspace.WithResetOnProjectSwitch(ts.opts.resetOnSwitch),
		workspace.WithActivity(activitySvc),
	)
	ws.Restore(t.Context())
	asst := assistant.NewService(nil, assistant.WithClock(ts.Clock))

	ts.mu.Lock()
	ts.handler = mcp.NewHandler(ws, asst, activitySvc, nil)
	ts.mu.Unlock()
}

// Handler returns the current command handler.
func (ts *TestServer) Handler() *mcp.Handler {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.handler
}

// dispatcher forwards to whichever handler is current after restarts.
type dispatcher struct {
	ts *TestServer
}

func (d *dispatcher) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	return d.ts.Handler().Handle(ctx, method, params)
}
