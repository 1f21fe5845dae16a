package assistant

import "errors"

// ErrEmptyQuery is returned when a query is blank after trimming.
var ErrEmptyQuery = errors.New("empty assistant query")
