package services

import "fmt"

// FieldError ties a validation message to the offending input field so the
// caller can attach it to the right form control.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries user-correctable, field-level problems. It is
// returned, not panicked, so handlers can map it to a 400 with the field
// list intact.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Fields[0].Field, e.Fields[0].Message)
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ConflictError signals a uniqueness violation (duplicate department
// assignment, second schedule for a semester). Always surfaced to the user.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// BusinessRuleError signals an operation forbidden by lifecycle policy:
// editing a completed schedule, deleting a schedule with recorded reviews,
// shortening a deadline. Never retried silently.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string { return e.Message }

// NotFoundError signals a missing entity.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}
