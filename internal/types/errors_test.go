package types

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("lookup: %w", &NotFoundError{Kind: KindJob, ID: "job-1"})

	assert.True(t, IsNotFound(err))
	assert.False(t, IsExtraction(err))
	assert.Equal(t, "lookup: job not found: job-1", err.Error())
}

func TestExtractionError(t *testing.T) {
	cause := errors.New("parsing time")
	err := &ExtractionError{RecordID: "cand-1", Field: "workExperience[0].startDate", Message: "invalid date", Cause: cause}

	assert.Equal(t, "extraction error: record cand-1 field workExperience[0].startDate: invalid date: parsing time", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsExtraction(fmt.Errorf("wrapped: %w", err)))

	noField := &ExtractionError{RecordID: "cand-2", Message: "end before start"}
	assert.Equal(t, "extraction error: record cand-2: end before start", noField.Error())
}

func TestDependencyTimeoutError(t *testing.T) {
	err := &DependencyTimeoutError{Dependency: "gemini", Timeout: 5 * time.Second, Cause: context.DeadlineExceeded}

	assert.Contains(t, err.Error(), "dependency gemini timed out after 5s")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, IsDependencyTimeout(fmt.Errorf("embed: %w", err)))
	assert.False(t, IsDependencyTimeout(context.DeadlineExceeded))

	bare := &DependencyTimeoutError{Dependency: "gemini", Timeout: time.Second}
	assert.Equal(t, "dependency gemini timed out after 1s", bare.Error())
}

func TestIncompatibleFeatureError(t *testing.T) {
	err := &IncompatibleFeatureError{Want: 256, Got: 768}
	assert.Equal(t, "incompatible feature sets: embedding dimension 256 vs 768", err.Error())
}
