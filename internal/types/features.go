// Package types provides type definitions for structured data used throughout the talent-match system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"sort"
	"strings"
)

// EducationTier is an ordinal education level used for threshold comparisons.
type EducationTier int

// Education tiers in ascending order
const (
	TierNone EducationTier = iota
	TierHighSchool
	TierAssociate
	TierBachelor
	TierMaster
	TierDoctorate
)

var tierNames = []string{"none", "high_school", "associate", "bachelor", "master", "doctorate"}

// String returns the canonical tier name.
func (t EducationTier) String() string {
	if t < TierNone || int(t) >= len(tierNames) {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// MarshalText encodes the tier by name.
func (t EducationTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name produced by MarshalText.
func (t *EducationTier) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range tierNames {
		if n == name {
			*t = EducationTier(i)
			return nil
		}
	}
	return fmt.Errorf("unknown education tier %q", string(text))
}

// FeatureSet is the normalized, derived representation of a record used for scoring.
// For jobs, ExperienceYears and EducationTier hold the minimum requirements.
type FeatureSet struct {
	RecordID         string        `json:"recordId"`
	Kind             RecordKind    `json:"kind"`
	Version          int           `json:"version"`
	Skills           []string      `json:"skills"` // sorted, canonical, unique
	ExperienceYears  float64       `json:"experienceYears"`
	EducationTier    EducationTier `json:"educationTier"`
	UnknownEducation bool          `json:"unknownEducation,omitempty"`
	Embedding        []float32     `json:"embedding"`
}

// HasSkill reports whether the canonical skill is in the set.
func (f *FeatureSet) HasSkill(skill string) bool {
	i := sort.SearchStrings(f.Skills, skill)
	return i < len(f.Skills) && f.Skills[i] == skill
}

// CacheKey returns the identity used to cache a feature set: kind, id and version.
func CacheKey(kind RecordKind, id string, version int) string {
	return fmt.Sprintf("%s:%s:%d", kind, id, version)
}

// Key returns CacheKey for this feature set.
func (f *FeatureSet) Key() string {
	return CacheKey(f.Kind, f.RecordID, f.Version)
}
