package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/talent-match/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name      string
		kind      types.RecordKind
		doc       string
		wantField string
	}{
		{"valid job", types.KindJob, `{"title": "Engineer", "keywords": ["go"], "minYearsExperience": 2}`, ""},
		{"job missing title", types.KindJob, `{"keywords": ["go"]}`, "(root)"},
		{"job wrong type", types.KindJob, `{"title": "Engineer", "minYearsExperience": "two"}`, "minYearsExperience"},
		{"job negative years", types.KindJob, `{"title": "Engineer", "minYearsExperience": -1}`, "minYearsExperience"},
		{"valid candidate", types.KindCandidate, `{"name": "Alex", "workExperience": [{"startDate": "2020-01"}]}`, ""},
		{"candidate missing start date", types.KindCandidate, `{"name": "Alex", "workExperience": [{"title": "Dev"}]}`, "workExperience.0"},
		{"candidate null years", types.KindCandidate, `{"name": "Alex", "yearsOfExperience": null}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.kind, []byte(tt.doc))
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "error should be ValidationError, got %v", err)
			require.NotEmpty(t, validationErr.Errors)
			assert.Equal(t, tt.wantField, validationErr.Errors[0].Field)
		})
	}
}

func TestValidateRecord_MalformedJSON(t *testing.T) {
	err := ValidateRecord(types.KindJob, []byte("{ invalid json }"))
	require.Error(t, err)
	var validationErr *ValidationError
	assert.False(t, errors.As(err, &validationErr))
}

func TestValidateRecord_UnknownKind(t *testing.T) {
	err := ValidateRecord("resume", []byte(`{}`))
	assert.Error(t, err)
}

func TestDecodeJobs(t *testing.T) {
	t.Run("single object", func(t *testing.T) {
		jobs, err := DecodeJobs([]byte(`{"id": "job-1", "title": "Engineer", "positionLevel": "Senior"}`))
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "job-1", jobs[0].ID)
		assert.Equal(t, types.LevelSenior, jobs[0].PositionLevel)
	})

	t.Run("array", func(t *testing.T) {
		jobs, err := DecodeJobs([]byte(` [{"title": "A"}, {"title": "B", "sponsorship": true}] `))
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.True(t, jobs[1].Sponsorship)
	})

	t.Run("array with invalid element", func(t *testing.T) {
		_, err := DecodeJobs([]byte(`[{"title": "A"}, {"title": 5}]`))
		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "[1].title", validationErr.Errors[0].Field)
	})
}

func TestDecodeCandidate(t *testing.T) {
	c, err := DecodeCandidate([]byte(`{"id": "c-1", "name": "Alex", "yearsOfExperience": 3.5}`))
	require.NoError(t, err)
	require.NotNil(t, c.YearsOfExperience)
	assert.Equal(t, 3.5, *c.YearsOfExperience)

	_, err = DecodeCandidate([]byte(`{"id": "c-1"}`))
	assert.Error(t, err)
}

func TestReadCandidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "A"}, {"name": "B"}]`), 0644))

	candidates, err := ReadCandidates(path)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)

	_, err = ReadCandidates(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidateJSONString(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["person"],
		"properties": {
			"person": {
				"type": "object",
				"required": ["name"],
				"properties": {"name": {"type": "string"}}
			}
		}
	}`

	assert.NoError(t, ValidateJSONString(schemaContent, `{"person": {"name": "x"}}`))

	err := ValidateJSONString(schemaContent, `{"person": {}}`)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "person", validationErr.Errors[0].Field)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "1. name: is required")
	assert.Contains(t, errorMsg, "2. age: must be a number")
}
