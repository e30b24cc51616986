package services

import (
	"fmt"
	"strings"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects malformed input before any write. It carries every
// invalid field, not just the first one.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation error: " + strings.Join(msgs, "; ")
}

// NotFoundError means a referenced customer, project, template or user does
// not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ProjectRef identifies an existing project in a duplicate-number conflict so
// the caller can show a disambiguation message.
type ProjectRef struct {
	ID            string `json:"id"`
	ProjectNumber string `json:"projectNumber"`
	ProjectName   string `json:"projectName,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`
}

// ConflictError is a unique-constraint violation (duplicate project number or
// duplicate email).
type ConflictError struct {
	Message  string
	Existing *ProjectRef
}

func (e *ConflictError) Error() string {
	return e.Message
}

// PreconditionError means a business-rule gate was not met, such as sending an
// incomplete checklist to production or starting a timer that is already
// running.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}
