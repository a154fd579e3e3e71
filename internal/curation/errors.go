// Package curation snapshots a raw corpus into a working directory and prunes
// images and items that do not meet the quality thresholds.
package curation

import "fmt"

// SourceMissingError means the raw corpus directory does not exist. The
// target directory is left untouched.
type SourceMissingError struct {
	Path  string
	Cause error
}

func (e *SourceMissingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source directory %s does not exist: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("source directory %s does not exist", e.Path)
}

func (e *SourceMissingError) Unwrap() error {
	return e.Cause
}

// Error represents a curation failure other than a missing source.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("curation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("curation error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
