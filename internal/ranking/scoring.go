// Package ranking provides similarity scoring between feature sets and top-K ranking of pools.
package ranking

import (
	"fmt"
	"math"

	"github.com/jonathan/talent-match/internal/types"
)

// Default weights for scoring components
const (
	DefaultSkillsWeight     = 0.4
	DefaultSemanticWeight   = 0.3
	DefaultExperienceWeight = 0.2
	DefaultEducationWeight  = 0.1

	// DefaultEducationPenalty is the score lost per missing education tier
	DefaultEducationPenalty = 0.25

	weightSumTolerance = 1e-6
)

// Weights are the sub-score weights of the overall score. They must sum to 1.
type Weights struct {
	Skills     float64 `json:"skills" mapstructure:"skills_weight"`
	Semantic   float64 `json:"semantic" mapstructure:"semantic_weight"`
	Experience float64 `json:"experience" mapstructure:"experience_weight"`
	Education  float64 `json:"education" mapstructure:"education_weight"`
}

// DefaultWeights returns the documented default weights.
func DefaultWeights() Weights {
	return Weights{
		Skills:     DefaultSkillsWeight,
		Semantic:   DefaultSemanticWeight,
		Experience: DefaultExperienceWeight,
		Education:  DefaultEducationWeight,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Skills + w.Semantic + w.Experience + w.Education
}

// Validate checks that every weight is non-negative and the weights sum to 1.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"skills": w.Skills, "semantic": w.Semantic, "experience": w.Experience, "education": w.Education,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%s weight must be >= 0, got %v", name, v)
		}
	}
	if math.Abs(w.Sum()-1) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1, got %v", w.Sum())
	}
	return nil
}

// Scorer computes relevance scores between feature sets. It is immutable and
// safe for concurrent use.
type Scorer struct {
	weights          Weights
	educationPenalty float64
}

// NewScorer creates a Scorer. A non-positive penalty selects DefaultEducationPenalty.
func NewScorer(weights Weights, educationPenalty float64) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring weights: %w", err)
	}
	if educationPenalty <= 0 {
		educationPenalty = DefaultEducationPenalty
	}
	return &Scorer{weights: weights, educationPenalty: educationPenalty}, nil
}

// DefaultScorer returns a Scorer with the default weights and penalty.
func DefaultScorer() *Scorer {
	return &Scorer{weights: DefaultWeights(), educationPenalty: DefaultEducationPenalty}
}

// Weights returns the scorer's weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// WithoutSemantic returns a lexical-only Scorer: the semantic weight is zeroed
// and the remaining weights are rescaled to sum to 1.
func (s *Scorer) WithoutSemantic() *Scorer {
	w := s.weights
	rest := w.Skills + w.Experience + w.Education
	if rest <= 0 {
		return &Scorer{weights: Weights{Skills: 1}, educationPenalty: s.educationPenalty}
	}
	return &Scorer{
		weights: Weights{
			Skills:     w.Skills / rest,
			Experience: w.Experience / rest,
			Education:  w.Education / rest,
		},
		educationPenalty: s.educationPenalty,
	}
}

// Score compares a candidate feature set with a job feature set.
func (s *Scorer) Score(candidate, job *types.FeatureSet) (types.Score, error) {
	semantic, err := s.semantic(candidate, job)
	if err != nil {
		return types.Score{}, err
	}

	b := types.Breakdown{
		Skills:     clamp(Jaccard(candidate.Skills, job.Skills)),
		Experience: clamp(experienceScore(candidate.ExperienceYears, job.ExperienceYears)),
		Education: clamp(educationScore(
			candidate.EducationTier, candidate.UnknownEducation, job.EducationTier, s.educationPenalty,
		)),
		Semantic: semantic,
	}

	overall := s.weights.Skills*b.Skills +
		s.weights.Semantic*b.Semantic +
		s.weights.Experience*b.Experience +
		s.weights.Education*b.Education

	return types.Score{Overall: clamp(overall), Breakdown: b}, nil
}

// ScorePeers compares two candidate feature sets. Experience and education are
// replaced by seniority proximity, which takes their combined weight. The
// result is symmetric in a and b.
func (s *Scorer) ScorePeers(a, b *types.FeatureSet) (types.Score, error) {
	semantic, err := s.semantic(a, b)
	if err != nil {
		return types.Score{}, err
	}

	bd := types.Breakdown{
		Skills:    clamp(Jaccard(a.Skills, b.Skills)),
		Semantic:  semantic,
		Seniority: clamp(seniorityScore(a.ExperienceYears, b.ExperienceYears)),
		Peer:      true,
	}

	overall := s.weights.Skills*bd.Skills +
		s.weights.Semantic*bd.Semantic +
		(s.weights.Experience+s.weights.Education)*bd.Seniority

	return types.Score{Overall: clamp(overall), Breakdown: bd}, nil
}

// semantic returns the rescaled cosine similarity. Missing embeddings are only
// tolerated when the semantic weight is zero.
func (s *Scorer) semantic(a, b *types.FeatureSet) (float64, error) {
	if a.Embedding == nil || b.Embedding == nil {
		if s.weights.Semantic == 0 {
			return 0, nil
		}
		return 0, &types.IncompatibleFeatureError{Want: len(a.Embedding), Got: len(b.Embedding)}
	}
	if len(a.Embedding) != len(b.Embedding) {
		return 0, &types.IncompatibleFeatureError{Want: len(a.Embedding), Got: len(b.Embedding)}
	}
	return clamp((Cosine(a.Embedding, b.Embedding) + 1) / 2), nil
}

// Jaccard returns |A∩B| / |A∪B| for two sorted, de-duplicated sets. Two empty sets score 0.
func Jaccard(a, b []string) float64 {
	inter := len(SharedSkills(a, b))
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// SharedSkills returns the sorted intersection of two sorted sets.
func SharedSkills(a, b []string) []string {
	shared := make([]string, 0)
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			shared = append(shared, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return shared
}

// Cosine returns the cosine similarity of two equal-length vectors, or 0 when either has zero norm.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// experienceScore is 1 when the requirement is met, otherwise the linear ratio have/need.
func experienceScore(have, need float64) float64 {
	if need <= 0 || have >= need {
		return 1
	}
	if have <= 0 {
		return 0
	}
	return have / need
}

// seniorityScore is 1 - |a-b| / max(a, b, 1).
func seniorityScore(a, b float64) float64 {
	return 1 - math.Abs(a-b)/math.Max(math.Max(a, b), 1)
}

// clamp bounds v to [0,1]; NaN becomes 0.
func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
