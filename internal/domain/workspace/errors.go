package workspace

import "errors"

// ErrNoProjectOpen indicates a command that needs an open project.
var ErrNoProjectOpen = errors.New("no project open")
