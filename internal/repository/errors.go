package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned by Find* methods when no record matches.
var ErrNotFound = errors.New("record not found")

// ValidationError carries field-level detail for a rejected save. The sync
// pass logs these in full and keeps going; HTTP handlers map them to 422.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
