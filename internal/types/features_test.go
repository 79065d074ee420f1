package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEducationTier_Text(t *testing.T) {
	assert.Equal(t, "bachelor", TierBachelor.String())
	assert.Equal(t, "tier(9)", EducationTier(9).String())
	assert.True(t, TierHighSchool < TierAssociate && TierMaster < TierDoctorate)

	data, err := json.Marshal(struct {
		Tier EducationTier `json:"tier"`
	}{TierMaster})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tier":"master"}`, string(data))

	var tier EducationTier
	require.NoError(t, tier.UnmarshalText([]byte(" Doctorate ")))
	assert.Equal(t, TierDoctorate, tier)
	assert.Error(t, tier.UnmarshalText([]byte("wizard")))
}

func TestFeatureSet_HasSkill(t *testing.T) {
	fs := &FeatureSet{Skills: []string{"docker", "go", "sql"}}

	assert.True(t, fs.HasSkill("go"))
	assert.True(t, fs.HasSkill("sql"))
	assert.False(t, fs.HasSkill("rust"))
	assert.False(t, (&FeatureSet{}).HasSkill("go"))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "candidate:cand-1:2", CacheKey(KindCandidate, "cand-1", 2))

	fs := &FeatureSet{RecordID: "job-1", Kind: KindJob, Version: 0}
	assert.Equal(t, "job:job-1:0", fs.Key())
}
