package ranking

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/jonathan/talent-match/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fs(id string, skills []string, years float64, tier types.EducationTier, emb ...float32) *types.FeatureSet {
	if emb == nil {
		emb = []float32{1, 0, 0}
	}
	return &types.FeatureSet{
		RecordID:        id,
		Skills:          skills,
		ExperienceYears: years,
		EducationTier:   tier,
		Embedding:       emb,
	}
}

func TestScore_SkillsAndExperienceScenario(t *testing.T) {
	candidate := fs("c", []string{"node.js", "react"}, 6, types.TierBachelor)
	job := fs("j", []string{"react", "typescript"}, 3, types.TierNone)

	score, err := DefaultScorer().Score(candidate, job)
	require.NoError(t, err)

	assert.InDelta(t, 1.0/3.0, score.Breakdown.Skills, 1e-9)
	assert.Equal(t, 1.0, score.Breakdown.Experience)
	assert.Equal(t, 1.0, score.Breakdown.Education)
	assert.Equal(t, 1.0, score.Breakdown.Semantic)
	assert.False(t, score.Breakdown.Peer)

	expected := 0.4*(1.0/3.0) + 0.3 + 0.2 + 0.1
	assert.InDelta(t, expected, score.Overall, 1e-9)
}

func TestScore_ExperienceLinearDecay(t *testing.T) {
	candidate := fs("c", nil, 1, types.TierNone)
	job := fs("j", nil, 4, types.TierNone)

	score, err := DefaultScorer().Score(candidate, job)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, score.Breakdown.Experience, 1e-9)
}

func TestExperienceScore(t *testing.T) {
	assert.Equal(t, 1.0, experienceScore(0, 0))
	assert.Equal(t, 1.0, experienceScore(5, 5))
	assert.Equal(t, 0.5, experienceScore(2, 4))
	assert.Equal(t, 0.0, experienceScore(0, 4))
	assert.Equal(t, 0.0, experienceScore(-1, 4))
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard(nil, nil))
	assert.Equal(t, 0.0, Jaccard([]string{"go"}, nil))
	assert.Equal(t, 1.0, Jaccard([]string{"go", "sql"}, []string{"go", "sql"}))
	assert.InDelta(t, 0.5, Jaccard([]string{"aws", "go"}, []string{"go"}), 1e-9)
}

func TestSharedSkills(t *testing.T) {
	assert.Equal(t, []string{"go", "sql"}, SharedSkills([]string{"aws", "go", "sql"}, []string{"go", "rust", "sql"}))
	assert.Empty(t, SharedSkills(nil, []string{"go"}))
}

func TestSemantic(t *testing.T) {
	s := DefaultScorer()

	t.Run("opposite vectors", func(t *testing.T) {
		score, err := s.Score(fs("c", nil, 0, 0, 1, 0), fs("j", nil, 0, 0, -1, 0))
		require.NoError(t, err)
		assert.Equal(t, 0.0, score.Breakdown.Semantic)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		score, err := s.Score(fs("c", nil, 0, 0, 1, 0), fs("j", nil, 0, 0, 0, 1))
		require.NoError(t, err)
		assert.InDelta(t, 0.5, score.Breakdown.Semantic, 1e-9)
	})

	t.Run("zero norm is neutral", func(t *testing.T) {
		score, err := s.Score(fs("c", nil, 0, 0, 0, 0), fs("j", nil, 0, 0, 1, 0))
		require.NoError(t, err)
		assert.Equal(t, 0.5, score.Breakdown.Semantic)
	})
}

func TestScore_IncompatibleDimensions(t *testing.T) {
	_, err := DefaultScorer().Score(fs("c", nil, 0, 0, 1, 0), fs("j", nil, 0, 0, 1, 0, 0))

	var inc *types.IncompatibleFeatureError
	require.True(t, errors.As(err, &inc))
	assert.Equal(t, 2, inc.Want)
	assert.Equal(t, 3, inc.Got)
}

func TestScore_MissingEmbedding(t *testing.T) {
	candidate := &types.FeatureSet{RecordID: "c", Skills: []string{"go"}}
	job := fs("j", []string{"go"}, 0, types.TierNone)

	_, err := DefaultScorer().Score(candidate, job)
	assert.Error(t, err)

	score, err := DefaultScorer().WithoutSemantic().Score(candidate, job)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score.Breakdown.Semantic)
	assert.InDelta(t, 1.0, score.Overall, 1e-9)
}

func TestWithoutSemantic(t *testing.T) {
	w := DefaultScorer().WithoutSemantic().Weights()
	assert.Equal(t, 0.0, w.Semantic)
	assert.InDelta(t, 0.4/0.7, w.Skills, 1e-9)
	assert.InDelta(t, 0.2/0.7, w.Experience, 1e-9)
	assert.InDelta(t, 0.1/0.7, w.Education, 1e-9)
	assert.NoError(t, w.Validate())

	onlySemantic, err := NewScorer(Weights{Semantic: 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, Weights{Skills: 1}, onlySemantic.WithoutSemantic().Weights())
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.Error(t, Weights{Skills: 0.5, Semantic: 0.5, Experience: 0.5}.Validate())
	assert.Error(t, Weights{Skills: 1.2, Semantic: -0.2}.Validate())

	_, err := NewScorer(Weights{Skills: 0.9}, 0)
	assert.Error(t, err)
}

func TestScorePeers(t *testing.T) {
	a := fs("a", []string{"aws", "go"}, 2, types.TierBachelor)
	b := fs("b", []string{"go"}, 4, types.TierMaster)

	score, err := DefaultScorer().ScorePeers(a, b)
	require.NoError(t, err)

	assert.True(t, score.Breakdown.Peer)
	assert.InDelta(t, 0.5, score.Breakdown.Skills, 1e-9)
	assert.InDelta(t, 0.5, score.Breakdown.Seniority, 1e-9)
	assert.Equal(t, 0.0, score.Breakdown.Experience)
	assert.Equal(t, 0.0, score.Breakdown.Education)

	expected := 0.4*0.5 + 0.3*1.0 + 0.3*0.5
	assert.InDelta(t, expected, score.Overall, 1e-9)
}

func TestSeniorityScore(t *testing.T) {
	assert.Equal(t, 1.0, seniorityScore(0, 0))
	assert.Equal(t, 1.0, seniorityScore(3, 3))
	assert.InDelta(t, 0.5, seniorityScore(0.5, 0), 1e-9)
	assert.Equal(t, 0.0, seniorityScore(0, 10))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(math.NaN()))
	assert.Equal(t, 0.0, clamp(-0.1))
	assert.Equal(t, 1.0, clamp(1.5))
	assert.Equal(t, 0.3, clamp(0.3))
}

func randomFeatureSet(r *rand.Rand, id string) *types.FeatureSet {
	vocab := []string{"aws", "docker", "go", "java", "kubernetes", "python", "react", "sql"}
	var skills []string
	for _, s := range vocab {
		if r.Intn(2) == 0 {
			skills = append(skills, s)
		}
	}
	emb := make([]float32, 8)
	for i := range emb {
		emb[i] = float32(r.NormFloat64())
	}
	return &types.FeatureSet{
		RecordID:         id,
		Skills:           skills,
		ExperienceYears:  r.Float64() * 20,
		EducationTier:    types.EducationTier(r.Intn(6)),
		UnknownEducation: r.Intn(5) == 0,
		Embedding:        emb,
	}
}

func TestScore_BoundsAndPeerSymmetry(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	s := DefaultScorer()

	inRange := func(v float64) bool { return v >= 0 && v <= 1 }

	for i := 0; i < 200; i++ {
		a := randomFeatureSet(r, "a")
		b := randomFeatureSet(r, "b")

		score, err := s.Score(a, b)
		require.NoError(t, err)
		bd := score.Breakdown
		for _, v := range []float64{score.Overall, bd.Skills, bd.Experience, bd.Education, bd.Semantic, bd.Seniority} {
			assert.True(t, inRange(v), "value out of range: %v", v)
		}

		ab, err := s.ScorePeers(a, b)
		require.NoError(t, err)
		ba, err := s.ScorePeers(b, a)
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
		assert.True(t, inRange(ab.Overall))
	}
}
