// Package matching is the service layer: it loads records from a Repository,
// extracts their feature sets and serves ranking, summary and comparison requests.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-match/internal/comparison"
	"github.com/jonathan/talent-match/internal/features"
	"github.com/jonathan/talent-match/internal/insights"
	"github.com/jonathan/talent-match/internal/ranking"
	"github.com/jonathan/talent-match/internal/skills"
	"github.com/jonathan/talent-match/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent feature extraction within one request.
const DefaultWorkers = 8

const warmTimeout = 30 * time.Second

// ErrSelfComparison is returned when a candidate is compared with itself.
var ErrSelfComparison = errors.New("cannot compare a candidate with itself")

// SearchOptions configures a ranking request. Limit <= 0 selects the ranker's default top K.
type SearchOptions struct {
	Limit   int
	Filters *types.SearchFilters
}

// SearchResponse is a ranked result list. Degraded is set when embeddings were
// unavailable and scoring fell back to lexical features only.
type SearchResponse[T any] struct {
	Results     []types.MatchResult[T] `json:"results"`
	Diagnostics []types.Diagnostic     `json:"diagnostics"`
	Degraded    bool                   `json:"degraded"`
}

// ComparisonResponse holds one result per resolved peer, in request order.
type ComparisonResponse struct {
	Results     []types.ComparisonResult `json:"results"`
	Diagnostics []types.Diagnostic       `json:"diagnostics"`
	Degraded    bool                     `json:"degraded"`
}

// HeatmapResponse holds the heatmap cells, skills outer and entities inner.
type HeatmapResponse struct {
	Cells       []types.HeatmapCell `json:"cells"`
	Diagnostics []types.Diagnostic  `json:"diagnostics"`
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithWorkers bounds concurrent extraction per request.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRanker replaces the default ranker.
func WithRanker(r *ranking.Ranker) Option {
	return func(s *Service) {
		s.ranker = r
	}
}

// WithBuilder replaces the default comparison builder.
func WithBuilder(b *comparison.Builder) Option {
	return func(s *Service) {
		s.builder = b
	}
}

// WithTaxonomy sets the taxonomy used for keyword filters.
func WithTaxonomy(t *skills.Taxonomy) Option {
	return func(s *Service) {
		s.taxonomy = t
	}
}

// WithWarmOnWrite precomputes feature sets in the background after each write.
func WithWarmOnWrite(enabled bool) Option {
	return func(s *Service) {
		s.warmOnWrite = enabled
	}
}

// Service implements the matching operations. It is safe for concurrent use.
type Service struct {
	repo        Repository
	source      features.Source
	ranker      *ranking.Ranker
	builder     *comparison.Builder
	summarizer  *insights.Summarizer
	taxonomy    *skills.Taxonomy
	logger      *zap.Logger
	workers     int
	warmOnWrite bool
}

// NewService creates a Service over repo and source.
func NewService(repo Repository, source features.Source, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		source:     source,
		summarizer: insights.NewSummarizer(),
		logger:     zap.NewNop(),
		workers:    DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.taxonomy == nil {
		s.taxonomy = skills.Default()
	}
	if s.ranker == nil {
		s.ranker = ranking.NewRanker(nil, ranking.Options{})
	}
	if s.builder == nil {
		s.builder = comparison.NewBuilder(s.ranker.Scorer(), s.taxonomy, comparison.DefaultOptions())
	}
	return s
}

// Repository returns the underlying record store.
func (s *Service) Repository() Repository {
	return s.repo
}

// SearchJobsForApplicant ranks jobs for a candidate.
func (s *Service) SearchJobsForApplicant(ctx context.Context, candidateID string, opts SearchOptions) (*SearchResponse[types.JobRecord], error) {
	flt, err := compileFilters(opts.Filters, s.taxonomy)
	if err != nil {
		return nil, err
	}
	candidate, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	query, lexical, err := s.extractQuery(ctx, candidate)
	if err != nil {
		return nil, err
	}

	jobs, err := s.repo.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	byID := make(map[string]*types.JobRecord, len(jobs))
	pool := make([]types.Record, 0, len(jobs))
	for _, j := range jobs {
		if flt.matchJob(j, s.taxonomy) {
			byID[j.ID] = j
			pool = append(pool, j)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch, err := s.extractAll(ctx, pool, lexical)
	if err != nil {
		return nil, err
	}
	lexical = lexical || batch.lexical

	ranker := s.rankerFor(lexical)
	ranked, err := ranker.RankJobs(withoutEmbedding(query, lexical), batch.candidates(lexical, nil), opts.Limit)
	if err != nil {
		return nil, err
	}

	resp := &SearchResponse[types.JobRecord]{
		Results:     make([]types.MatchResult[types.JobRecord], 0, len(ranked)),
		Diagnostics: batch.diagnostics,
		Degraded:    lexical,
	}
	for _, r := range ranked {
		resp.Results = append(resp.Results, matchResult(*byID[r.ID], r))
	}

	s.logger.Info("ranked jobs for applicant",
		zap.String("candidate_id", candidateID),
		zap.Int("pool", len(pool)),
		zap.Int("results", len(resp.Results)),
		zap.Int("excluded", len(batch.diagnostics)),
		zap.Bool("degraded", lexical),
	)
	return resp, nil
}

// SearchCandidatesForJob ranks candidates for a job.
func (s *Service) SearchCandidatesForJob(ctx context.Context, jobID string, opts SearchOptions) (*SearchResponse[types.CandidateRecord], error) {
	flt, err := compileFilters(opts.Filters, s.taxonomy)
	if err != nil {
		return nil, err
	}
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	query, lexical, err := s.extractQuery(ctx, job)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repo.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	byID := make(map[string]*types.CandidateRecord, len(candidates))
	pool := make([]types.Record, 0, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
		pool = append(pool, c)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch, err := s.extractAll(ctx, pool, lexical)
	if err != nil {
		return nil, err
	}
	lexical = lexical || batch.lexical

	keep := func(id string, fs *types.FeatureSet) bool {
		return flt.matchCandidate(byID[id], fs)
	}
	ranker := s.rankerFor(lexical)
	ranked, err := ranker.RankCandidates(withoutEmbedding(query, lexical), batch.candidates(lexical, keep), opts.Limit)
	if err != nil {
		return nil, err
	}

	resp := &SearchResponse[types.CandidateRecord]{
		Results:     make([]types.MatchResult[types.CandidateRecord], 0, len(ranked)),
		Diagnostics: batch.diagnostics,
		Degraded:    lexical,
	}
	for _, r := range ranked {
		resp.Results = append(resp.Results, matchResult(*byID[r.ID], r))
	}

	s.logger.Info("ranked candidates for job",
		zap.String("job_id", jobID),
		zap.Int("pool", len(pool)),
		zap.Int("results", len(resp.Results)),
		zap.Int("excluded", len(batch.diagnostics)),
		zap.Bool("degraded", lexical),
	)
	return resp, nil
}

// GetApplicantSummary summarizes a candidate against the skill demand of the job pool.
func (s *Service) GetApplicantSummary(ctx context.Context, candidateID string) (*types.Summary, error) {
	candidate, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	fs, err := s.source.ExtractLexical(ctx, candidate)
	if err != nil {
		return nil, err
	}

	jobs, err := s.repo.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	sets := make([][]string, len(jobs))
	for i, j := range jobs {
		sets[i] = s.taxonomy.NormalizeSet(j.Keywords)
	}
	var ref *insights.Reference
	if len(jobs) > 0 {
		ref = &insights.Reference{Targets: skills.BuildSkillTargets(sets...)}
	}

	summary := s.summarizer.Summarize(fs, types.KindCandidate, insights.Context{Title: latestTitle(candidate)}, ref)
	return &summary, nil
}

// GetJobSummary summarizes a job posting.
func (s *Service) GetJobSummary(ctx context.Context, jobID string) (*types.Summary, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	fs, err := s.source.ExtractLexical(ctx, job)
	if err != nil {
		return nil, err
	}
	summary := s.summarizer.Summarize(fs, types.KindJob, insights.Context{
		Title:         job.Title,
		Company:       job.Company,
		PositionLevel: string(job.PositionLevel),
	}, nil)
	return &summary, nil
}

// CompareApplicantWithPeers compares a candidate with each peer. Unknown or
// unextractable peers are skipped and reported as diagnostics.
func (s *Service) CompareApplicantWithPeers(ctx context.Context, candidateID string, peerIDs []string) (*ComparisonResponse, error) {
	set, err := s.resolvePeers(ctx, candidateID, peerIDs, false)
	if err != nil {
		return nil, err
	}

	builder := s.builder
	if set.lexical {
		builder = builder.WithScorer(builder.Scorer().WithoutSemantic())
	}
	results, err := builder.Compare(set.subject, set.peers)
	if err != nil {
		return nil, err
	}

	s.logger.Info("compared applicant with peers",
		zap.String("candidate_id", candidateID),
		zap.Int("peers", len(set.peers)),
		zap.Int("skipped", len(set.diagnostics)),
		zap.Bool("degraded", set.lexical),
	)
	return &ComparisonResponse{Results: results, Diagnostics: set.diagnostics, Degraded: set.lexical}, nil
}

// CompareApplicants compares two candidates. Unlike CompareApplicantWithPeers
// it fails when either candidate is unknown or cannot be extracted.
func (s *Service) CompareApplicants(ctx context.Context, candidateID, peerID string) (*ComparisonResponse, error) {
	if candidateID == peerID {
		return nil, ErrSelfComparison
	}
	subject, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	peer, err := s.repo.GetCandidate(ctx, peerID)
	if err != nil {
		return nil, err
	}
	subjectFS, subjectLexical, err := s.extractQuery(ctx, subject)
	if err != nil {
		return nil, err
	}
	peerFS, peerLexical, err := s.extractQuery(ctx, peer)
	if err != nil {
		return nil, err
	}
	lexical := subjectLexical || peerLexical

	builder := s.builder
	if lexical {
		builder = builder.WithScorer(builder.Scorer().WithoutSemantic())
	}
	results, err := builder.Compare(withoutEmbedding(subjectFS, lexical), []comparison.Peer{
		{ID: peer.ID, Features: withoutEmbedding(peerFS, lexical)},
	})
	if err != nil {
		return nil, err
	}
	return &ComparisonResponse{Results: results, Diagnostics: []types.Diagnostic{}, Degraded: lexical}, nil
}

// GetComparisonHeatmap builds the skill heatmap of a candidate and peers.
func (s *Service) GetComparisonHeatmap(ctx context.Context, candidateID string, peerIDs []string) (*HeatmapResponse, error) {
	set, err := s.resolvePeers(ctx, candidateID, peerIDs, true)
	if err != nil {
		return nil, err
	}
	cells := s.builder.Heatmap(set.subject, set.peers, nil)
	return &HeatmapResponse{Cells: cells, Diagnostics: set.diagnostics}, nil
}

// Warm precomputes feature sets for the given ids, or for every record of kind
// when ids is empty. Records that cannot be loaded or extracted are reported.
func (s *Service) Warm(ctx context.Context, kind types.RecordKind, ids []string) ([]types.Diagnostic, error) {
	var records []types.Record
	var diagnostics []types.Diagnostic
	switch kind {
	case types.KindJob:
		if len(ids) == 0 {
			jobs, err := s.repo.ListJobs(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list jobs: %w", err)
			}
			for _, j := range jobs {
				records = append(records, j)
			}
		}
		for _, id := range ids {
			j, err := s.repo.GetJob(ctx, id)
			if err != nil {
				if !types.IsNotFound(err) {
					return nil, err
				}
				diagnostics = append(diagnostics, diagnostic(kind, id, err))
				continue
			}
			records = append(records, j)
		}
	case types.KindCandidate:
		if len(ids) == 0 {
			candidates, err := s.repo.ListCandidates(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list candidates: %w", err)
			}
			for _, c := range candidates {
				records = append(records, c)
			}
		}
		for _, id := range ids {
			c, err := s.repo.GetCandidate(ctx, id)
			if err != nil {
				if !types.IsNotFound(err) {
					return nil, err
				}
				diagnostics = append(diagnostics, diagnostic(kind, id, err))
				continue
			}
			records = append(records, c)
		}
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}

	batch, err := s.extractAll(ctx, records, false)
	if err != nil {
		return nil, err
	}
	diagnostics = append(diagnostics, batch.diagnostics...)
	s.logger.Info("warmed feature sets",
		zap.String("kind", string(kind)),
		zap.Int("records", len(records)),
		zap.Int("failed", len(diagnostics)),
		zap.Bool("degraded", batch.lexical),
	)
	return diagnostics, nil
}

// CreateJob stores a job. An empty id is assigned; an existing id bumps the version.
func (s *Service) CreateJob(ctx context.Context, job *types.JobRecord) (*types.JobRecord, error) {
	if job.ID == "" {
		job.ID = "job-" + uuid.NewString()
	} else if prev, err := s.repo.GetJob(ctx, job.ID); err == nil {
		job.Version = prev.Version + 1
	} else if !types.IsNotFound(err) {
		return nil, err
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}
	if err := s.repo.PutJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to store job: %w", err)
	}
	s.afterWrite(types.KindJob, job.ID)
	return job, nil
}

// CreateCandidate stores a candidate. An empty id is assigned; an existing id bumps the version.
func (s *Service) CreateCandidate(ctx context.Context, candidate *types.CandidateRecord) (*types.CandidateRecord, error) {
	if candidate.ID == "" {
		candidate.ID = "candidate-" + uuid.NewString()
	} else if prev, err := s.repo.GetCandidate(ctx, candidate.ID); err == nil {
		candidate.Version = prev.Version + 1
	} else if !types.IsNotFound(err) {
		return nil, err
	}
	if err := candidate.Validate(); err != nil {
		return nil, fmt.Errorf("invalid candidate: %w", err)
	}
	if err := s.repo.PutCandidate(ctx, candidate); err != nil {
		return nil, fmt.Errorf("failed to store candidate: %w", err)
	}
	s.afterWrite(types.KindCandidate, candidate.ID)
	return candidate, nil
}

func (s *Service) afterWrite(kind types.RecordKind, id string) {
	if !s.warmOnWrite {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
		defer cancel()
		if _, err := s.Warm(ctx, kind, []string{id}); err != nil {
			s.logger.Warn("failed to warm feature set",
				zap.String("kind", string(kind)),
				zap.String("id", id),
				zap.Error(err),
			)
		}
	}()
}

// extractQuery extracts the subject of a request. Extraction errors fail the
// request; an embedder timeout falls back to lexical features.
func (s *Service) extractQuery(ctx context.Context, record types.Record) (*types.FeatureSet, bool, error) {
	fs, err := s.source.Extract(ctx, record)
	if err == nil {
		return fs, false, nil
	}
	if !types.IsDependencyTimeout(err) || ctx.Err() != nil {
		return nil, false, err
	}
	s.logger.Warn("embedding unavailable, using lexical features",
		zap.String("record_id", record.RecordID()),
		zap.Error(err),
	)
	fs, err = s.source.ExtractLexical(ctx, record)
	if err != nil {
		return nil, false, err
	}
	return fs, true, nil
}

// batch is the result of extracting a pool of records.
type batch struct {
	ids         []string
	features    []*types.FeatureSet // nil for excluded records
	diagnostics []types.Diagnostic
	lexical     bool
}

func (b *batch) candidates(lexical bool, keep func(id string, fs *types.FeatureSet) bool) []ranking.Candidate {
	out := make([]ranking.Candidate, 0, len(b.features))
	for i, fs := range b.features {
		if fs == nil {
			continue
		}
		if keep != nil && !keep(b.ids[i], fs) {
			continue
		}
		out = append(out, ranking.Candidate{ID: b.ids[i], Features: withoutEmbedding(fs, lexical)})
	}
	return out
}

// extractAll extracts records in parallel. Records failing extraction are
// excluded with a diagnostic. After the first embedder timeout the remaining
// records are extracted lexically and the batch is marked lexical.
func (s *Service) extractAll(ctx context.Context, records []types.Record, lexical bool) (*batch, error) {
	out := &batch{
		ids:         make([]string, len(records)),
		features:    make([]*types.FeatureSet, len(records)),
		diagnostics: []types.Diagnostic{},
	}
	failures := make([]error, len(records))
	var degraded atomic.Bool
	degraded.Store(lexical)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, rec := range records {
		out.ids[i] = rec.RecordID()
		g.Go(func() error {
			fs, err := s.extractOne(gctx, rec, &degraded)
			switch {
			case err == nil:
				out.features[i] = fs
				return nil
			case types.IsExtraction(err):
				failures[i] = err
				return nil
			default:
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	for i, err := range failures {
		if err == nil {
			continue
		}
		out.diagnostics = append(out.diagnostics, diagnostic(records[i].Kind(), out.ids[i], err))
		s.logger.Debug("excluded record from pool",
			zap.String("record_id", out.ids[i]),
			zap.Error(err),
		)
	}
	out.lexical = degraded.Load()
	return out, nil
}

func (s *Service) extractOne(ctx context.Context, rec types.Record, degraded *atomic.Bool) (*types.FeatureSet, error) {
	if degraded.Load() {
		return s.source.ExtractLexical(ctx, rec)
	}
	fs, err := s.source.Extract(ctx, rec)
	if err == nil || !types.IsDependencyTimeout(err) || ctx.Err() != nil {
		return fs, err
	}
	if !degraded.Swap(true) {
		s.logger.Warn("embedding unavailable, using lexical features",
			zap.String("record_id", rec.RecordID()),
			zap.Error(err),
		)
	}
	return s.source.ExtractLexical(ctx, rec)
}

// peerSet is a resolved comparison subject and its peers.
type peerSet struct {
	subject     *types.FeatureSet
	peers       []comparison.Peer
	diagnostics []types.Diagnostic
	lexical     bool
}

// resolvePeers loads and extracts the subject and peers. Peers are labeled by
// their position in the request, so labels stay stable when some are skipped.
func (s *Service) resolvePeers(ctx context.Context, candidateID string, peerIDs []string, lexicalOnly bool) (*peerSet, error) {
	candidate, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	set := &peerSet{diagnostics: []types.Diagnostic{}}
	if lexicalOnly {
		set.subject, err = s.source.ExtractLexical(ctx, candidate)
		set.lexical = true
	} else {
		set.subject, set.lexical, err = s.extractQuery(ctx, candidate)
	}
	if err != nil {
		return nil, err
	}

	labels := make(map[string]string, len(peerIDs))
	records := make([]types.Record, 0, len(peerIDs))
	for i, id := range peerIDs {
		id = strings.TrimSpace(id)
		if _, dup := labels[id]; dup || id == "" {
			continue
		}
		labels[id] = fmt.Sprintf("Peer %d", i+1)
		if id == candidateID {
			set.diagnostics = append(set.diagnostics, types.Diagnostic{
				RecordID: id,
				Kind:     string(types.KindCandidate),
				Message:  "peer is the subject",
			})
			continue
		}
		peer, err := s.repo.GetCandidate(ctx, id)
		if err != nil {
			if !types.IsNotFound(err) {
				return nil, err
			}
			set.diagnostics = append(set.diagnostics, diagnostic(types.KindCandidate, id, err))
			continue
		}
		records = append(records, peer)
	}

	b, err := s.extractAll(ctx, records, set.lexical)
	if err != nil {
		return nil, err
	}
	set.lexical = set.lexical || b.lexical
	set.diagnostics = append(set.diagnostics, b.diagnostics...)
	set.subject = withoutEmbedding(set.subject, set.lexical)
	for _, c := range b.candidates(set.lexical, nil) {
		set.peers = append(set.peers, comparison.Peer{ID: c.ID, Label: labels[c.ID], Features: c.Features})
	}
	return set, nil
}

func (s *Service) rankerFor(lexical bool) *ranking.Ranker {
	if !lexical {
		return s.ranker
	}
	return s.ranker.WithScorer(s.ranker.Scorer().WithoutSemantic())
}

func matchResult[T any](item T, r ranking.Ranked) types.MatchResult[T] {
	breakdown := r.Score.Breakdown
	return types.MatchResult[T]{
		Item:       item,
		Score:      r.Score.Overall,
		Highlights: r.Highlights,
		Breakdown:  &breakdown,
	}
}

// withoutEmbedding returns a copy of fs without its embedding when lexical is set.
// Cached feature sets are shared and never modified.
func withoutEmbedding(fs *types.FeatureSet, lexical bool) *types.FeatureSet {
	if !lexical || fs.Embedding == nil {
		return fs
	}
	cp := *fs
	cp.Embedding = nil
	return &cp
}

func latestTitle(c *types.CandidateRecord) string {
	if c.LastPosition != "" {
		return c.LastPosition
	}
	if len(c.WorkExperience) > 0 {
		return c.WorkExperience[0].Title
	}
	return ""
}

func diagnostic(kind types.RecordKind, id string, err error) types.Diagnostic {
	return types.Diagnostic{RecordID: id, Kind: string(kind), Message: err.Error()}
}
