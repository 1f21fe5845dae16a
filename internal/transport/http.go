package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// CommandHandler handles command dispatch.
type CommandHandler interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, error)
}

// Options configures the router.
type Options struct {
	Logger *slog.Logger
	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

// Server wires HTTP handlers.
type Server struct {
	handler CommandHandler
	logger  *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(handler CommandHandler, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	srv := &Server{handler: handler, logger: logger}

	r.Post("/rpc", srv.handleRPC)
	r.Get("/health", srv.handleHealth)
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		WriteError(w, nil, CommandError(err))
		return
	}

	result, err := s.handler.Handle(r.Context(), req.Method, req.Params)
	if err != nil {
		rpcErr := CommandError(err)
		if rpcErr.Code == ErrInternal {
			s.logger.Error("command failed", "method", req.Method, "error", err)
		}
		WriteError(w, req.ID, rpcErr)
		return
	}

	WriteResult(w, req.ID, result)
}
