// ABOUTME: Error types for backend responses including structured validation detail
// ABOUTME: Formats FastAPI-style field errors into human-readable messages

package api

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError is one entry of a structured validation failure,
// e.g. {"loc": ["body", "password"], "msg": "too short"}.
type FieldError struct {
	// Loc elements may be strings or array indices, so they stay untyped.
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func (f FieldError) String() string {
	parts := make([]string, len(f.Loc))
	for i, p := range f.Loc {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".") + ": " + f.Msg
}

// Error is a non-2xx backend response. Fields holds structured validation
// errors when the backend sent them; Detail holds a plain string detail.
type Error struct {
	Status int
	Detail string
	Fields []FieldError
}

func (e *Error) Error() string {
	if msg := e.describe(); msg != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Message returns a human-readable description suitable for a notice,
// joining field+message pairs when structured detail is present.
func (e *Error) Message() string {
	if msg := e.describe(); msg != "" {
		return msg
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *Error) describe() string {
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.String()
		}
		return strings.Join(parts, ", ")
	}
	return e.Detail
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 401
}
