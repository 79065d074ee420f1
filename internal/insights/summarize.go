// Package insights produces deterministic, template-based summaries and bullet
// insights for job and candidate feature sets.
package insights

import (
	"fmt"
	"strings"

	"github.com/jonathan/talent-match/internal/skills"
	"github.com/jonathan/talent-match/internal/types"
)

// Defaults for summaries
const (
	DefaultMaxTopSkills = 5
	DefaultMaxGaps      = 3
)

// Experience bands, in years
const (
	midYears    = 2
	seniorYears = 5
	leadYears   = 8
)

// Context carries the non-personal record fields a summary may mention.
// Names, countries, work authorization and URLs are never part of it.
type Context struct {
	Title         string
	Company       string
	PositionLevel string
}

// Reference is a demand profile to compare a candidate against, typically the
// skill targets of the current job pool.
type Reference struct {
	Targets []skills.Target
}

// Summarizer builds summaries. It is stateless and safe for concurrent use.
type Summarizer struct {
	maxTopSkills int
	maxGaps      int
}

// NewSummarizer creates a Summarizer with the default limits.
func NewSummarizer() *Summarizer {
	return &Summarizer{maxTopSkills: DefaultMaxTopSkills, maxGaps: DefaultMaxGaps}
}

// ExperienceBand maps years of experience to Entry, Mid, Senior or Lead.
func ExperienceBand(years float64) types.PositionLevel {
	switch {
	case years >= leadYears:
		return types.LevelLead
	case years >= seniorYears:
		return types.LevelSenior
	case years >= midYears:
		return types.LevelMid
	default:
		return types.LevelEntry
	}
}

// Summarize builds the summary for a feature set of the given kind. ref is optional.
func (s *Summarizer) Summarize(fs *types.FeatureSet, kind types.RecordKind, rc Context, ref *Reference) types.Summary {
	var summary string
	var insights []string
	if kind == types.KindJob {
		summary, insights = s.summarizeJob(fs, rc)
	} else {
		summary, insights = s.summarizeCandidate(fs, rc, ref)
	}
	return types.Summary{
		RecordID: fs.RecordID,
		Kind:     kind,
		Summary:  summary,
		Insights: insights,
	}
}

func (s *Summarizer) summarizeCandidate(fs *types.FeatureSet, rc Context, ref *Reference) (string, []string) {
	band := ExperienceBand(fs.ExperienceYears)
	top := s.topSkills(fs.Skills)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s-level profile with %.1f years of experience", band, fs.ExperienceYears)
	if rc.Title != "" {
		fmt.Fprintf(&sb, ", most recently as %s", rc.Title)
	}
	sb.WriteString(".")
	if len(top) > 0 {
		fmt.Fprintf(&sb, " Core skills: %s.", strings.Join(top, ", "))
	}

	insights := make([]string, 0, 5)
	if len(top) > 0 {
		insights = append(insights, fmt.Sprintf("Top skills: %s", strings.Join(top, ", ")))
	} else {
		insights = append(insights, "No skills listed")
	}
	insights = append(insights, fmt.Sprintf("Experience level: %s (%.1f years)", band, fs.ExperienceYears))
	insights = append(insights, educationInsight(fs.EducationTier, "Highest education"))
	if fs.UnknownEducation {
		insights = append(insights, "Some education entries could not be classified; verify degree details")
	}

	if ref != nil && len(ref.Targets) > 0 {
		missing := skills.Missing(ref.Targets, fs.Skills)
		if len(missing) > s.maxGaps {
			missing = missing[:s.maxGaps]
		}
		if len(missing) > 0 {
			names := make([]string, len(missing))
			for i, m := range missing {
				names[i] = m.Skill
			}
			insights = append(insights, fmt.Sprintf("In-demand skills to develop: %s", strings.Join(names, ", ")))
		} else {
			insights = append(insights, "Covers the most requested skills in the current job pool")
		}
	}

	return sb.String(), insights
}

func (s *Summarizer) summarizeJob(fs *types.FeatureSet, rc Context) (string, []string) {
	level, ok := types.ParsePositionLevel(rc.PositionLevel)
	if !ok {
		level = ExperienceBand(fs.ExperienceYears)
	}
	top := s.topSkills(fs.Skills)

	var sb strings.Builder
	if rc.Title != "" {
		sb.WriteString(rc.Title)
		if rc.Company != "" {
			fmt.Fprintf(&sb, " at %s", rc.Company)
		}
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "%s-level role", level)
	if fs.ExperienceYears > 0 {
		fmt.Fprintf(&sb, " requiring %.0f+ years of experience", fs.ExperienceYears)
	}
	if fs.EducationTier > types.TierNone {
		fmt.Fprintf(&sb, " and a %s degree or higher", fs.EducationTier)
	}
	sb.WriteString(".")
	if len(top) > 0 {
		fmt.Fprintf(&sb, " Key skills: %s.", strings.Join(top, ", "))
	}

	insights := make([]string, 0, 4)
	if len(top) > 0 {
		insights = append(insights, fmt.Sprintf("Key skills: %s", strings.Join(top, ", ")))
	} else {
		insights = append(insights, "No required skills listed")
	}
	if fs.ExperienceYears > 0 {
		insights = append(insights, fmt.Sprintf("Position level: %s (%.0f+ years required)", level, fs.ExperienceYears))
	} else {
		insights = append(insights, fmt.Sprintf("Position level: %s (no minimum experience)", level))
	}
	insights = append(insights, educationInsight(fs.EducationTier, "Minimum education"))
	if fs.UnknownEducation {
		insights = append(insights, "Education requirement could not be classified; treated as no minimum")
	}

	return sb.String(), insights
}

func (s *Summarizer) topSkills(all []string) []string {
	if len(all) > s.maxTopSkills {
		return all[:s.maxTopSkills]
	}
	return all
}

func educationInsight(tier types.EducationTier, prefix string) string {
	if tier == types.TierNone {
		return prefix + ": none specified"
	}
	return fmt.Sprintf("%s: %s", prefix, tier)
}
