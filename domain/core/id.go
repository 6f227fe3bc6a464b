package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// RequestID identifies a single encode request for log correlation.
type RequestID ID

func (id RequestID) String() string { return ID(id).String() }

// IsEmpty reports whether no request ID has been assigned yet
func (id RequestID) IsEmpty() bool { return ID(id).IsEmpty() }

// NewRequestID returns a fresh request identifier.
func NewRequestID() RequestID {
	return RequestID(NewID())
}

// ParseRequestID accepts a caller-supplied request ID, e.g. from an X-Request-ID header.
func ParseRequestID(s string) (RequestID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("request ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("request ID must be a UUID: %w", err)
	}
	return RequestID(s), nil
}
