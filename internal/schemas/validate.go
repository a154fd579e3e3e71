// Package schemas provides JSON Schema validation for the files the harvester
// reads and writes (credential sets and corpus manifests).
package schemas

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Known schema names.
const (
	Credentials = "credentials"
	Manifest    = "manifest"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s validation failed:\n", ve.Schema)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema or document
type SchemaLoadError struct {
	Schema  string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema %s: %s: %v", e.Schema, e.Message, e.Cause)
	}
	return fmt.Sprintf("schema %s: %s", e.Schema, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Names lists the embedded schemas.
func Names() []string {
	return []string{Credentials, Manifest}
}

// Source returns the raw text of an embedded schema.
func Source(name string) (string, error) {
	data, err := schemaFiles.ReadFile(name + ".schema.json")
	if err != nil {
		return "", &SchemaLoadError{Schema: name, Message: "unknown schema", Cause: err}
	}
	return string(data), nil
}

// Validate checks document against the named embedded schema.
func Validate(name string, document []byte) error {
	source, err := Source(name)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(source),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return &SchemaLoadError{Schema: name, Message: "failed to load document", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

// ValidateFile reads path and validates it against the named schema.
func ValidateFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &SchemaLoadError{Schema: name, Message: fmt.Sprintf("failed to read %s", path), Cause: err}
	}
	return Validate(name, data)
}
