package insights

import (
	"strings"
	"testing"

	"github.com/jonathan/talent-match/internal/skills"
	"github.com/jonathan/talent-match/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExperienceBand(t *testing.T) {
	tests := []struct {
		years    float64
		expected types.PositionLevel
	}{
		{0, types.LevelEntry},
		{1.9, types.LevelEntry},
		{2, types.LevelMid},
		{4.9, types.LevelMid},
		{5, types.LevelSenior},
		{7.99, types.LevelSenior},
		{8, types.LevelLead},
		{20, types.LevelLead},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExperienceBand(tt.years), "years=%v", tt.years)
	}
}

func TestSummarize_Candidate(t *testing.T) {
	fs := &types.FeatureSet{
		RecordID:        "candidate-1",
		Kind:            types.KindCandidate,
		Skills:          []string{"aws", "docker", "go", "kubernetes", "python", "sql"},
		ExperienceYears: 3.5,
		EducationTier:   types.TierBachelor,
	}

	s := NewSummarizer().Summarize(fs, types.KindCandidate, Context{Title: "Backend Engineer"}, nil)

	assert.Equal(t, "candidate-1", s.RecordID)
	assert.Equal(t, types.KindCandidate, s.Kind)
	assert.Equal(t,
		"Mid-level profile with 3.5 years of experience, most recently as Backend Engineer. "+
			"Core skills: aws, docker, go, kubernetes, python.",
		s.Summary)
	assert.Equal(t, []string{
		"Top skills: aws, docker, go, kubernetes, python",
		"Experience level: Mid (3.5 years)",
		"Highest education: bachelor",
	}, s.Insights)
}

func TestSummarize_CandidateUnknownEducationAndGaps(t *testing.T) {
	fs := &types.FeatureSet{
		RecordID:         "candidate-2",
		Skills:           []string{"go"},
		ExperienceYears:  0.5,
		UnknownEducation: true,
	}
	ref := &Reference{Targets: skills.BuildSkillTargets(
		[]string{"aws", "go", "sql"},
		[]string{"aws", "docker"},
		[]string{"aws", "sql"},
	)}

	s := NewSummarizer().Summarize(fs, types.KindCandidate, Context{}, ref)

	require.Len(t, s.Insights, 5)
	assert.Equal(t, "Highest education: none specified", s.Insights[2])
	assert.Contains(t, s.Insights[3], "could not be classified")
	assert.Equal(t, "In-demand skills to develop: aws, sql, docker", s.Insights[4])
}

func TestSummarize_CandidateCoversMarket(t *testing.T) {
	fs := &types.FeatureSet{RecordID: "c", Skills: []string{"aws", "go"}}
	ref := &Reference{Targets: skills.BuildSkillTargets([]string{"aws"}, []string{"go"})}

	s := NewSummarizer().Summarize(fs, types.KindCandidate, Context{}, ref)
	assert.Contains(t, s.Insights, "Covers the most requested skills in the current job pool")
}

func TestSummarize_Job(t *testing.T) {
	fs := &types.FeatureSet{
		RecordID:        "job-1",
		Kind:            types.KindJob,
		Skills:          []string{"react", "typescript"},
		ExperienceYears: 5,
		EducationTier:   types.TierBachelor,
	}

	s := NewSummarizer().Summarize(fs, types.KindJob, Context{
		Title:         "Frontend Engineer",
		Company:       "Acme",
		PositionLevel: "Senior-level",
	}, nil)

	assert.Equal(t,
		"Frontend Engineer at Acme: Senior-level role requiring 5+ years of experience and a bachelor degree or higher. "+
			"Key skills: react, typescript.",
		s.Summary)
	assert.Equal(t, []string{
		"Key skills: react, typescript",
		"Position level: Senior (5+ years required)",
		"Minimum education: bachelor",
	}, s.Insights)
}

func TestSummarize_JobLevelFromExperience(t *testing.T) {
	fs := &types.FeatureSet{RecordID: "job-2", ExperienceYears: 0}
	s := NewSummarizer().Summarize(fs, types.KindJob, Context{}, nil)

	assert.Equal(t, "Entry-level role.", s.Summary)
	assert.Equal(t, []string{
		"No required skills listed",
		"Position level: Entry (no minimum experience)",
		"Minimum education: none specified",
	}, s.Insights)
}

func TestSummarize_Deterministic(t *testing.T) {
	fs := &types.FeatureSet{RecordID: "c", Skills: []string{"go", "sql"}, ExperienceYears: 9}
	a := NewSummarizer().Summarize(fs, types.KindCandidate, Context{}, nil)
	b := NewSummarizer().Summarize(fs, types.KindCandidate, Context{}, nil)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a.Summary, "Lead-level"))
}
