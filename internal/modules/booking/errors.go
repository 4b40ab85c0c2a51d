package booking

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound       = errors.New("booking not found")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidRequest = errors.New("invalid request")
	ErrPersistence    = errors.New("failed to persist booking")
	ErrTimeout        = errors.New("storage did not respond in time")
	ErrConflict       = errors.New("booking conflicts with stored data")
	ErrUnavailable    = errors.New("booking store unavailable")
)

// ValidationError carries per-field messages keyed by json path.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}
