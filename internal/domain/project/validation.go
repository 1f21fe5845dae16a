package project

import "strings"

// NormalizeName trims surrounding whitespace and rejects empty names.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidInput
	}
	return trimmed, nil
}
