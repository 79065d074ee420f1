// Package types provides type definitions for structured data used throughout the talent-match system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Breakdown holds the sub-scores behind an overall relevance score.
// In peer mode Experience and Education are unused and Seniority is set.
type Breakdown struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
	Semantic   float64 `json:"semantic"`
	Seniority  float64 `json:"seniority"`
	Peer       bool    `json:"peer,omitempty"`
}

// Score is the result of comparing two feature sets.
type Score struct {
	Overall   float64   `json:"overall"`
	Breakdown Breakdown `json:"breakdown"`
}

// Highlight is a reported reason (field + matched values) explaining why an item scored well.
type Highlight struct {
	Field   string   `json:"field"`
	Matches []string `json:"matches"`
}

// MatchResult is one ranked item. Lists are sorted by Score descending, ties by item id ascending.
type MatchResult[T any] struct {
	Item       T           `json:"item"`
	Score      float64     `json:"score"`
	Highlights []Highlight `json:"highlights"`
	Breakdown  *Breakdown  `json:"breakdown,omitempty"`
}

// ComparisonResult compares a subject applicant with one peer.
type ComparisonResult struct {
	SubjectID       string    `json:"subjectId"`
	PeerID          string    `json:"peerId"`
	SimilarityScore float64   `json:"similarityScore"`
	SkillGaps       []string  `json:"skillGaps"`
	Recommendations []string  `json:"recommendations"`
	Breakdown       Breakdown `json:"breakdown"`
}

// HeatmapCell is one (skill, entity) value of the comparison heatmap.
type HeatmapCell struct {
	Skill        string  `json:"skill"`
	SubjectLabel string  `json:"subjectLabel"`
	Value        float64 `json:"value"`
}

// Summary is the deterministic textual summary of a record.
type Summary struct {
	RecordID string     `json:"recordId"`
	Kind     RecordKind `json:"kind"`
	Summary  string     `json:"summary"`
	Insights []string   `json:"insights"`
}

// Diagnostic reports a record excluded from a batch operation.
type Diagnostic struct {
	RecordID string `json:"recordId"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// SearchFilters narrows a ranking pool before scoring. Empty fields do not filter.
type SearchFilters struct {
	Keywords           []string `json:"keywords,omitempty"`
	MinYearsExperience *float64 `json:"minYearsExperience,omitempty"`
	MaxYearsExperience *float64 `json:"maxYearsExperience,omitempty"`
	Education          []string `json:"education,omitempty"`
	Country            []string `json:"country,omitempty"`
	PositionLevel      []string `json:"positionLevel,omitempty"`
	Sponsorship        *bool    `json:"sponsorship,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f *SearchFilters) IsEmpty() bool {
	if f == nil {
		return true
	}
	return len(f.Keywords) == 0 && f.MinYearsExperience == nil && f.MaxYearsExperience == nil &&
		len(f.Education) == 0 && len(f.Country) == 0 && len(f.PositionLevel) == 0 && f.Sponsorship == nil
}
