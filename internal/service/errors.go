package service

import (
	"strings"
)

// ValidationError aggregates every field violation found in a payload, so a
// caller sees the full list in one round trip.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, ", ")
}
