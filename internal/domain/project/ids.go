package project

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rpggio/codepad/internal/clock"
)

// IDFunc produces a fresh identifier on every call.
type IDFunc func() string

// UUIDs generates random version 4 identifiers.
func UUIDs() IDFunc {
	return uuid.NewString
}

// Timestamps generates millisecond creation timestamps, the format stored by
// earlier versions of the notebook. Two calls within the same millisecond
// yield consecutive values rather than a duplicate.
func Timestamps(clk clock.Clock) IDFunc {
	var (
		mu   sync.Mutex
		last int64
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		now := clk.Now().UnixMilli()
		if now <= last {
			now = last + 1
		}
		last = now
		return strconv.FormatInt(now, 10)
	}
}

// Sequence generates prefix1, prefix2, ... and is meant for tests and fixtures.
func Sequence(prefix string) IDFunc {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + strconv.Itoa(n)
	}
}

// maxIDAttempts bounds the retry loop when a generator keeps colliding.
const maxIDAttempts = 64

func freshID(next IDFunc, taken func(string) bool) (string, bool) {
	for i := 0; i < maxIDAttempts; i++ {
		id := next()
		if id != "" && !taken(id) {
			return id, true
		}
	}
	return "", false
}
