package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrFileNotFound indicates the file doesn't exist in the project.
	ErrFileNotFound = errors.New("file not found")
	// ErrInvalidInput indicates invalid project or file input.
	ErrInvalidInput = errors.New("invalid project input")
)
