package repository

import "errors"

// ErrCorrupt is returned when a stored value can't be decoded
var ErrCorrupt = errors.New("stored value is corrupt")
