package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/codepad/internal/domain/assistant"
	"github.com/rpggio/codepad/internal/domain/project"
	"github.com/rpggio/codepad/internal/domain/workspace"
)

var (
	// ErrUnknownCommand is returned for a method missing from the dispatch table.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidParams is returned when command params cannot be decoded.
	ErrInvalidParams = errors.New("invalid params")
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, ErrUnknownCommand):
		return &APIError{Code: "UNKNOWN_COMMAND", Message: err.Error(), RecoveryHint: "Call tools/list for available commands"}
	case errors.Is(err, ErrInvalidParams):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check the argument types"}
	case errors.Is(err, project.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "name must not be empty", RecoveryHint: "Provide a non-blank name"}
	case errors.Is(err, workspace.ErrNoProjectOpen):
		return &APIError{Code: "NO_PROJECT_OPEN", Message: "no project is open", RecoveryHint: "Create or open a project first"}
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call get_state for current ids"}
	case errors.Is(err, project.ErrFileNotFound):
		return &APIError{Code: "FILE_NOT_FOUND", Message: "file not found", RecoveryHint: "Call get_state for current ids"}
	case errors.Is(err, assistant.ErrEmptyQuery):
		return &APIError{Code: "EMPTY_QUERY", Message: "query must not be empty", RecoveryHint: `Try "цикл в Python"`}
	default:
		return nil
	}
}
