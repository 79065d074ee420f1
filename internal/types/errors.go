// Package types provides type definitions for structured data used throughout the talent-match system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"
	"time"
)

// NotFoundError indicates an unknown record id
type NotFoundError struct {
	Kind RecordKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IncompatibleFeatureError indicates two feature sets whose embeddings have different dimensions
type IncompatibleFeatureError struct {
	Want int
	Got  int
}

func (e *IncompatibleFeatureError) Error() string {
	return fmt.Sprintf("incompatible feature sets: embedding dimension %d vs %d", e.Want, e.Got)
}

// ExtractionError indicates a malformed source record
type ExtractionError struct {
	RecordID string
	Field    string
	Message  string
	Cause    error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extraction error: record %s", e.RecordID)
	if e.Field != "" {
		msg += fmt.Sprintf(" field %s", e.Field)
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// DependencyTimeoutError indicates an external backend (embedding model) did not answer in time
type DependencyTimeoutError struct {
	Dependency string
	Timeout    time.Duration
	Cause      error
}

func (e *DependencyTimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dependency %s timed out after %v: %v", e.Dependency, e.Timeout, e.Cause)
	}
	return fmt.Sprintf("dependency %s timed out after %v", e.Dependency, e.Timeout)
}

func (e *DependencyTimeoutError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsDependencyTimeout reports whether err wraps a DependencyTimeoutError.
func IsDependencyTimeout(err error) bool {
	var dt *DependencyTimeoutError
	return errors.As(err, &dt)
}

// IsExtraction reports whether err wraps an ExtractionError.
func IsExtraction(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}
