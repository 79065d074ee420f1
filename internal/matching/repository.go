package matching

import (
	"context"
	"sort"
	"sync"

	"github.com/jonathan/talent-match/internal/types"
)

// Repository stores canonical records. Get methods return *types.NotFoundError
// for unknown ids. List methods return records ordered by id.
type Repository interface {
	GetJob(ctx context.Context, id string) (*types.JobRecord, error)
	GetCandidate(ctx context.Context, id string) (*types.CandidateRecord, error)
	ListJobs(ctx context.Context) ([]*types.JobRecord, error)
	ListCandidates(ctx context.Context) ([]*types.CandidateRecord, error)
	PutJob(ctx context.Context, job *types.JobRecord) error
	PutCandidate(ctx context.Context, candidate *types.CandidateRecord) error
}

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu         sync.RWMutex
	jobs       map[string]*types.JobRecord
	candidates map[string]*types.CandidateRecord
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		jobs:       make(map[string]*types.JobRecord),
		candidates: make(map[string]*types.CandidateRecord),
	}
}

// GetJob returns a copy of the stored job.
func (m *MemoryRepository) GetJob(_ context.Context, id string) (*types.JobRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.KindJob, ID: id}
	}
	cp := *job
	return &cp, nil
}

// GetCandidate returns a copy of the stored candidate.
func (m *MemoryRepository) GetCandidate(_ context.Context, id string) (*types.CandidateRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.candidates[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.KindCandidate, ID: id}
	}
	cp := *c
	return &cp, nil
}

// ListJobs returns all jobs ordered by id.
func (m *MemoryRepository) ListJobs(_ context.Context) ([]*types.JobRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*types.JobRecord, 0, len(m.jobs))
	for _, j := range m.jobs {
		cp := *j
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

// ListCandidates returns all candidates ordered by id.
func (m *MemoryRepository) ListCandidates(_ context.Context) ([]*types.CandidateRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*types.CandidateRecord, 0, len(m.candidates))
	for _, c := range m.candidates {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

// PutJob stores a copy of job, replacing any record with the same id.
func (m *MemoryRepository) PutJob(_ context.Context, job *types.JobRecord) error {
	cp := *job
	m.mu.Lock()
	m.jobs[job.ID] = &cp
	m.mu.Unlock()
	return nil
}

// PutCandidate stores a copy of candidate, replacing any record with the same id.
func (m *MemoryRepository) PutCandidate(_ context.Context, candidate *types.CandidateRecord) error {
	cp := *candidate
	m.mu.Lock()
	m.candidates[candidate.ID] = &cp
	m.mu.Unlock()
	return nil
}
