package ranking

import (
	"sort"

	"github.com/jonathan/talent-match/internal/skills"
)

// DefaultPartialCredit is the membership value of a skill matched only through a related skill.
const DefaultPartialCredit = 0.5

// ScoreSkillMembership returns how well a sorted canonical skill set covers one
// skill: 1.0 when present, partialCredit when a related skill from the
// taxonomy is present, 0.0 otherwise.
func ScoreSkillMembership(skill string, set []string, taxonomy *skills.Taxonomy, partialCredit float64) float64 {
	if skill == "" {
		return 0.0
	}

	if i := sort.SearchStrings(set, skill); i < len(set) && set[i] == skill {
		return 1.0
	}

	if taxonomy != nil && taxonomy.HasRelated(skill, set) {
		return clamp(partialCredit)
	}

	return 0.0
}
