package ranking

import "github.com/jonathan/talent-match/internal/types"

// educationScore is 1 when the candidate tier meets the required tier, and
// loses penalty per missing tier otherwise. An unrecognized candidate degree is
// given the benefit of the doubt and treated as meeting the requirement; the
// caller surfaces the uncertainty through UnknownEducation.
func educationScore(have types.EducationTier, unknown bool, need types.EducationTier, penalty float64) float64 {
	if have >= need || unknown {
		return 1
	}
	gap := float64(need - have)
	return 1 - penalty*gap
}

// effectiveTier is the tier used when describing an education match.
func effectiveTier(have types.EducationTier, unknown bool, need types.EducationTier) types.EducationTier {
	if unknown && have < need {
		return need
	}
	return have
}
