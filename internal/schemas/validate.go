// Package schemas validates job and candidate JSON documents against the
// embedded record schemas and decodes them into records.
package schemas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jonathan/talent-match/internal/types"
	schemafiles "github.com/jonathan/talent-match/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

var (
	compiled     map[types.RecordKind]*gojsonschema.Schema
	compiledErr  error
	compiledOnce sync.Once
)

func schemaFor(kind types.RecordKind) (*gojsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiled = make(map[types.RecordKind]*gojsonschema.Schema, 2)
		for k, name := range map[types.RecordKind]string{
			types.KindJob:       schemafiles.JobSchema,
			types.KindCandidate: schemafiles.CandidateSchema,
		} {
			data, err := schemafiles.FS.ReadFile(name)
			if err != nil {
				compiledErr = &SchemaLoadError{Path: name, Message: "schema not embedded", Cause: err}
				return
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
			if err != nil {
				compiledErr = &SchemaLoadError{Path: name, Message: "invalid schema", Cause: err}
				return
			}
			compiled[k] = schema
		}
	})
	if compiledErr != nil {
		return nil, compiledErr
	}
	schema, ok := compiled[kind]
	if !ok {
		return nil, fmt.Errorf("no schema for record kind %q", kind)
	}
	return schema, nil
}

// ValidateRecord validates one JSON document of the given kind
func ValidateRecord(kind types.RecordKind, data []byte) error {
	schema, err := schemaFor(kind)
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to parse %s document: %w", kind, err)
	}
	return resultError(result, "")
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return resultError(result, "")
}

// DecodeJobs validates and decodes a job document or an array of them
func DecodeJobs(data []byte) ([]*types.JobRecord, error) {
	return decodeAll[types.JobRecord](types.KindJob, data)
}

// DecodeCandidates validates and decodes a candidate document or an array of them
func DecodeCandidates(data []byte) ([]*types.CandidateRecord, error) {
	return decodeAll[types.CandidateRecord](types.KindCandidate, data)
}

// DecodeJob validates and decodes a single job document
func DecodeJob(data []byte) (*types.JobRecord, error) {
	if err := ValidateRecord(types.KindJob, data); err != nil {
		return nil, err
	}
	var job types.JobRecord
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job: %w", err)
	}
	return &job, nil
}

// DecodeCandidate validates and decodes a single candidate document
func DecodeCandidate(data []byte) (*types.CandidateRecord, error) {
	if err := ValidateRecord(types.KindCandidate, data); err != nil {
		return nil, err
	}
	var c types.CandidateRecord
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode candidate: %w", err)
	}
	return &c, nil
}

// ReadJobs reads and decodes a job file
func ReadJobs(path string) ([]*types.JobRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DecodeJobs(data)
}

// ReadCandidates reads and decodes a candidate file
func ReadCandidates(path string) ([]*types.CandidateRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DecodeCandidates(data)
}

func decodeAll[T any](kind types.RecordKind, data []byte) ([]*T, error) {
	trimmed := bytes.TrimSpace(data)
	var docs []json.RawMessage
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("failed to parse %s array: %w", kind, err)
		}
	} else {
		docs = []json.RawMessage{trimmed}
	}

	schema, err := schemaFor(kind)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(docs))
	for i, doc := range docs {
		result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s document %d: %w", kind, i, err)
		}
		prefix := ""
		if len(docs) > 1 {
			prefix = fmt.Sprintf("[%d].", i)
		}
		if err := resultError(result, prefix); err != nil {
			return nil, err
		}
		var rec T
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s document %d: %w", kind, i, err)
		}
		out = append(out, &rec)
	}
	return out, nil
}

func resultError(result *gojsonschema.Result, prefix string) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   prefix + field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
