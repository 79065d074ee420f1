package features

import (
	"strings"
	"unicode"

	"github.com/jonathan/talent-match/internal/types"
)

// degreeKeywords is checked in order; the first match wins, so higher tiers come
// first. Graduate diplomas follow "undergraduate" and precede the plain "diploma".
var degreeKeywords = []struct {
	keyword string
	tier    types.EducationTier
}{
	{"phd", types.TierDoctorate},
	{"ph.d", types.TierDoctorate},
	{"doctor", types.TierDoctorate},
	{"dphil", types.TierDoctorate},
	{"master", types.TierMaster},
	{"msc", types.TierMaster},
	{"m.sc", types.TierMaster},
	{"mba", types.TierMaster},
	{"m.s.", types.TierMaster},
	{"meng", types.TierMaster},
	{"bachelor", types.TierBachelor},
	{"bsc", types.TierBachelor},
	{"b.sc", types.TierBachelor},
	{"b.s.", types.TierBachelor},
	{"b.a.", types.TierBachelor},
	{"beng", types.TierBachelor},
	{"undergraduate", types.TierBachelor},
	{"postgraduate", types.TierMaster},
	{"graduate diploma", types.TierMaster},
	{"graduate certificate", types.TierMaster},
	{"associate", types.TierAssociate},
	{"high school", types.TierHighSchool},
	{"secondary", types.TierHighSchool},
	{"diploma", types.TierHighSchool},
	{"none", types.TierNone},
	{"no degree", types.TierNone},
}

// exactDegrees are short abbreviations matched only as the whole string.
var exactDegrees = map[string]types.EducationTier{
	"ba": types.TierBachelor,
	"bs": types.TierBachelor,
	"ma": types.TierMaster,
	"ms": types.TierMaster,
	"aa": types.TierAssociate,
	"as": types.TierAssociate,
	"hs": types.TierHighSchool,
}

// wordDegrees are matched only as whole words of the degree string.
var wordDegrees = map[string]types.EducationTier{
	"ged": types.TierHighSchool,
}

// TierFromDegree maps a free-form degree string onto an education tier.
// known is false for a non-empty string no keyword recognizes; the tier is then TierNone.
func TierFromDegree(degree string) (tier types.EducationTier, known bool) {
	lower := strings.ToLower(strings.TrimSpace(degree))
	if lower == "" {
		return types.TierNone, true
	}
	if t, ok := exactDegrees[lower]; ok {
		return t, true
	}
	for _, dk := range degreeKeywords {
		if strings.Contains(lower, dk.keyword) {
			return dk.tier, true
		}
	}
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if t, ok := wordDegrees[w]; ok {
			return t, true
		}
	}
	return types.TierNone, false
}
