package skills

import "sort"

// Target is a skill with the number of skill sets that contain it.
type Target struct {
	Skill  string  `json:"skill"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight"` // Count / number of sets
}

// BuildSkillTargets counts, for each skill, how many of the given sets contain it.
// Sets are expected to be canonical and de-duplicated; repeats within a set are
// counted once. The result is sorted by count descending, then skill ascending.
func BuildSkillTargets(sets ...[]string) []Target {
	counts := make(map[string]int)
	for _, set := range sets {
		seen := make(map[string]struct{}, len(set))
		for _, skill := range set {
			if skill == "" {
				continue
			}
			if _, dup := seen[skill]; dup {
				continue
			}
			seen[skill] = struct{}{}
			counts[skill]++
		}
	}

	targets := make([]Target, 0, len(counts))
	for skill, n := range counts {
		targets = append(targets, Target{
			Skill:  skill,
			Count:  n,
			Weight: float64(n) / float64(len(sets)),
		})
	}

	sort.Slice(targets, func(i, j int) bool {
		if targets[i].Count != targets[j].Count {
			return targets[i].Count > targets[j].Count
		}
		return targets[i].Skill < targets[j].Skill
	})

	return targets
}

// Missing returns the targets whose skill is not in have, preserving order.
func Missing(targets []Target, have []string) []Target {
	owned := make(map[string]struct{}, len(have))
	for _, s := range have {
		owned[s] = struct{}{}
	}
	out := make([]Target, 0, len(targets))
	for _, t := range targets {
		if _, ok := owned[t.Skill]; !ok {
			out = append(out, t)
		}
	}
	return out
}
