package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// New returns a fresh entry id: a 21-character URL-safe NanoID.
// The keyspace makes reuse after deletion practically impossible.
func New() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return id, nil
}

// Valid reports whether s could be an id produced by New. Handlers use it to
// reject garbage before touching the store.
func Valid(s string) bool {
	if len(s) == 0 || len(s) > 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
