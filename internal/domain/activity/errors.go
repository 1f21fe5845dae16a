package activity

import "errors"

// ErrInvalidInput indicates an entry without a type.
var ErrInvalidInput = errors.New("invalid activity input")
