package matching

import (
	"context"
	"testing"

	"github.com/jonathan/talent-match/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.GetJob(ctx, "job-1")
	var nf *types.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, types.KindJob, nf.Kind)

	require.NoError(t, repo.PutJob(ctx, &types.JobRecord{ID: "job-2", Title: "B"}))
	require.NoError(t, repo.PutJob(ctx, &types.JobRecord{ID: "job-1", Title: "A"}))

	jobs, err := repo.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-1", jobs[0].ID)

	// returned records are copies
	jobs[0].Title = "changed"
	stored, err := repo.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "A", stored.Title)

	require.NoError(t, repo.PutCandidate(ctx, &types.CandidateRecord{ID: "c-1", Name: "X"}))
	c, err := repo.GetCandidate(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "X", c.Name)

	_, err = repo.GetCandidate(ctx, "c-2")
	assert.True(t, types.IsNotFound(err))

	candidates, err := repo.ListCandidates(ctx)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}
