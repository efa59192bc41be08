package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrIndexUnavailable marks any failure of the external search engine;
	// the orchestrator recovers from it by serving the store path.
	ErrIndexUnavailable = errors.New("search index unavailable")
	ErrValidation       = errors.New("validation error")
)

// ValidationErrors maps field names to human-readable messages. It satisfies
// error and matches ErrValidation under errors.Is.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, msg := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool { return target == ErrValidation }
