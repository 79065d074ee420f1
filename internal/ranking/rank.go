package ranking

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/jonathan/talent-match/internal/types"
)

// Defaults for ranking
const (
	DefaultTopK               = 10
	DefaultMaxHighlightSkills = 5
	DefaultNotableThreshold   = 0.8
)

// Highlight fields
const (
	FieldSkills     = "skills"
	FieldExperience = "experience"
	FieldEducation  = "education"
	FieldSemantic   = "semantic"
)

// Candidate is one member of a ranking pool.
type Candidate struct {
	ID       string
	Features *types.FeatureSet
}

// Ranked is one ranked pool member.
type Ranked struct {
	ID         string
	Score      types.Score
	Highlights []types.Highlight
}

// Options configures a Ranker. Zero values select the defaults.
type Options struct {
	TopK               int
	MaxHighlightSkills int
	NotableThreshold   float64
}

// Ranker selects the top-K pool members for a query. It is safe for concurrent use.
type Ranker struct {
	scorer *Scorer
	opts   Options
}

// NewRanker creates a Ranker. A nil scorer selects DefaultScorer.
func NewRanker(scorer *Scorer, opts Options) *Ranker {
	if scorer == nil {
		scorer = DefaultScorer()
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.MaxHighlightSkills <= 0 {
		opts.MaxHighlightSkills = DefaultMaxHighlightSkills
	}
	if opts.NotableThreshold <= 0 {
		opts.NotableThreshold = DefaultNotableThreshold
	}
	return &Ranker{scorer: scorer, opts: opts}
}

// Scorer returns the ranker's scorer.
func (r *Ranker) Scorer() *Scorer {
	return r.scorer
}

// WithScorer returns a copy of the ranker using scorer.
func (r *Ranker) WithScorer(scorer *Scorer) *Ranker {
	return &Ranker{scorer: scorer, opts: r.opts}
}

// RankJobs ranks job feature sets for a candidate.
func (r *Ranker) RankJobs(candidate *types.FeatureSet, jobs []Candidate, topK int) ([]Ranked, error) {
	return r.rank(jobs, topK, func(job *types.FeatureSet) (types.Score, error) {
		return r.scorer.Score(candidate, job)
	}, func(job *types.FeatureSet, s types.Score) []types.Highlight {
		return r.highlights(candidate, job, s)
	})
}

// RankCandidates ranks candidate feature sets for a job.
func (r *Ranker) RankCandidates(job *types.FeatureSet, candidates []Candidate, topK int) ([]Ranked, error) {
	return r.rank(candidates, topK, func(c *types.FeatureSet) (types.Score, error) {
		return r.scorer.Score(c, job)
	}, func(c *types.FeatureSet, s types.Score) []types.Highlight {
		return r.highlights(c, job, s)
	})
}

// rank scores every pool member and keeps the best topK in a bounded min-heap,
// O(N log K). Duplicate ids keep their first occurrence. An empty pool yields
// an empty, non-nil result.
func (r *Ranker) rank(
	pool []Candidate,
	topK int,
	score func(*types.FeatureSet) (types.Score, error),
	highlight func(*types.FeatureSet, types.Score) []types.Highlight,
) ([]Ranked, error) {
	if topK <= 0 {
		topK = r.opts.TopK
	}

	h := make(rankHeap, 0, min(topK, len(pool))+1)
	seen := make(map[string]struct{}, len(pool))
	for _, c := range pool {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		s, err := score(c.Features)
		if err != nil {
			return nil, fmt.Errorf("failed to score %s: %w", c.ID, err)
		}

		entry := heapEntry{id: c.ID, features: c.Features, score: s}
		if h.Len() < topK {
			heap.Push(&h, entry)
			continue
		}
		if worse(h[0], entry) {
			h[0] = entry
			heap.Fix(&h, 0)
		}
	}

	out := make([]Ranked, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		e := heap.Pop(&h).(heapEntry)
		out[i] = Ranked{ID: e.id, Score: e.score, Highlights: highlight(e.features, e.score)}
	}
	return out, nil
}

type heapEntry struct {
	id       string
	features *types.FeatureSet
	score    types.Score
}

// worse reports whether a ranks below b: lower score, or equal score and larger id.
func worse(a, b heapEntry) bool {
	if a.score.Overall != b.score.Overall {
		return a.score.Overall < b.score.Overall
	}
	return a.id > b.id
}

// rankHeap is a min-heap with the worst entry on top.
type rankHeap []heapEntry

func (h rankHeap) Len() int           { return len(h) }
func (h rankHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h rankHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *rankHeap) Push(x any)        { *h = append(*h, x.(heapEntry)) }
func (h *rankHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// highlights explains a match: shared skills first, then one entry per notable sub-score.
func (r *Ranker) highlights(candidate, job *types.FeatureSet, s types.Score) []types.Highlight {
	out := make([]types.Highlight, 0, 4)

	if shared := SharedSkills(candidate.Skills, job.Skills); len(shared) > 0 {
		if len(shared) > r.opts.MaxHighlightSkills {
			shared = shared[:r.opts.MaxHighlightSkills]
		}
		out = append(out, types.Highlight{Field: FieldSkills, Matches: shared})
	}

	b := s.Breakdown
	if b.Experience > r.opts.NotableThreshold {
		out = append(out, types.Highlight{
			Field:   FieldExperience,
			Matches: []string{describeExperience(candidate.ExperienceYears, job.ExperienceYears)},
		})
	}
	if b.Education > r.opts.NotableThreshold {
		out = append(out, types.Highlight{
			Field:   FieldEducation,
			Matches: []string{describeEducation(candidate, job)},
		})
	}
	if b.Semantic > r.opts.NotableThreshold {
		out = append(out, types.Highlight{
			Field:   FieldSemantic,
			Matches: []string{fmt.Sprintf("%d%% text similarity", int(math.Round(b.Semantic*100)))},
		})
	}

	return out
}

func describeExperience(have, need float64) string {
	if need <= 0 {
		return fmt.Sprintf("%.1f years of experience", have)
	}
	return fmt.Sprintf("%.1f years of experience (%.0f required)", have, need)
}

func describeEducation(candidate, job *types.FeatureSet) string {
	tier := effectiveTier(candidate.EducationTier, candidate.UnknownEducation, job.EducationTier)
	desc := tier.String()
	if candidate.UnknownEducation && tier != candidate.EducationTier {
		desc = "unverified degree"
	}
	if job.EducationTier == types.TierNone {
		return desc
	}
	return fmt.Sprintf("%s (%s required)", desc, job.EducationTier)
}
