package ranking

import (
	"testing"

	"github.com/jonathan/talent-match/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestEducationScore(t *testing.T) {
	tests := []struct {
		name     string
		have     types.EducationTier
		unknown  bool
		need     types.EducationTier
		expected float64
	}{
		{"meets requirement", types.TierMaster, false, types.TierBachelor, 1.0},
		{"exact", types.TierBachelor, false, types.TierBachelor, 1.0},
		{"no requirement", types.TierNone, false, types.TierNone, 1.0},
		{"one tier short", types.TierBachelor, false, types.TierMaster, 0.75},
		{"two tiers short", types.TierAssociate, false, types.TierMaster, 0.5},
		{"unknown degree meets requirement", types.TierNone, true, types.TierDoctorate, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := educationScore(tt.have, tt.unknown, tt.need, DefaultEducationPenalty)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestEducationScore_ClampedThroughScorer(t *testing.T) {
	candidate := fs("c", nil, 0, types.TierNone)
	job := fs("j", nil, 0, types.TierDoctorate)

	score, err := DefaultScorer().Score(candidate, job)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, score.Breakdown.Education)
}

func TestEffectiveTier(t *testing.T) {
	assert.Equal(t, types.TierMaster, effectiveTier(types.TierNone, true, types.TierMaster))
	assert.Equal(t, types.TierBachelor, effectiveTier(types.TierBachelor, false, types.TierMaster))
	assert.Equal(t, types.TierDoctorate, effectiveTier(types.TierDoctorate, true, types.TierMaster))
}
