package services

import (
	"fmt"
	"strings"
)

// Sentinel errors returned by the service layer. Controllers translate
// these into HTTP statuses; anything else is reported as an internal
// server error.
var (
	ErrNotFound           = fmt.Errorf("resource not found")
	ErrConflict           = fmt.Errorf("already exists")
	ErrUnauthorized       = fmt.Errorf("not authorized")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
)

// FieldError reports a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"msg"`
}

// ValidationError carries every violated field of a request, so the
// client sees the full list in one round trip.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
