package matching

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/talent-match/internal/features"
	"github.com/jonathan/talent-match/internal/insights"
	"github.com/jonathan/talent-match/internal/skills"
	"github.com/jonathan/talent-match/internal/types"
)

// ErrInvalidFilter is returned for search filters that can never match.
var ErrInvalidFilter = errors.New("invalid search filter")

// filter is a compiled types.SearchFilters.
type filter struct {
	keywords    []string // normalized skills
	terms       []string // lowercased raw keywords for title matching
	minYears    *float64
	maxYears    *float64
	tiers       map[types.EducationTier]struct{}
	countries   map[string]struct{}
	levels      map[types.PositionLevel]struct{}
	sponsorship *bool
}

func compileFilters(f *types.SearchFilters, taxonomy *skills.Taxonomy) (*filter, error) {
	if f.IsEmpty() {
		return nil, nil
	}
	c := &filter{
		keywords:    taxonomy.NormalizeSet(f.Keywords),
		minYears:    f.MinYearsExperience,
		maxYears:    f.MaxYearsExperience,
		sponsorship: f.Sponsorship,
	}
	for _, k := range f.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			c.terms = append(c.terms, k)
		}
	}
	if c.minYears != nil && c.maxYears != nil && *c.minYears > *c.maxYears {
		return nil, fmt.Errorf("%w: min years %.1f exceeds max years %.1f", ErrInvalidFilter, *c.minYears, *c.maxYears)
	}

	if len(f.Education) > 0 {
		c.tiers = make(map[types.EducationTier]struct{}, len(f.Education))
		for _, e := range f.Education {
			var tier types.EducationTier
			if err := tier.UnmarshalText([]byte(e)); err != nil {
				t, known := features.TierFromDegree(e)
				if !known {
					return nil, fmt.Errorf("%w: unknown education %q", ErrInvalidFilter, e)
				}
				tier = t
			}
			c.tiers[tier] = struct{}{}
		}
	}
	if len(f.Country) > 0 {
		c.countries = make(map[string]struct{}, len(f.Country))
		for _, country := range f.Country {
			c.countries[strings.ToLower(strings.TrimSpace(country))] = struct{}{}
		}
	}
	if len(f.PositionLevel) > 0 {
		c.levels = make(map[types.PositionLevel]struct{}, len(f.PositionLevel))
		for _, l := range f.PositionLevel {
			level, ok := types.ParsePositionLevel(l)
			if !ok {
				return nil, fmt.Errorf("%w: unknown position level %q", ErrInvalidFilter, l)
			}
			c.levels[level] = struct{}{}
		}
	}
	return c, nil
}

// matchJob filters on the job record. Keywords match a required skill or the title.
func (c *filter) matchJob(job *types.JobRecord, taxonomy *skills.Taxonomy) bool {
	if c == nil {
		return true
	}
	if len(c.terms) > 0 {
		title := strings.ToLower(job.Title)
		hit := anyShared(c.keywords, taxonomy.NormalizeSet(job.Keywords))
		for _, t := range c.terms {
			if hit {
				break
			}
			hit = strings.Contains(title, t)
		}
		if !hit {
			return false
		}
	}
	if !c.yearsInRange(float64(job.MinYearsExperience)) {
		return false
	}
	if c.tiers != nil {
		tier, _ := features.TierFromDegree(job.MinEducation)
		if _, ok := c.tiers[tier]; !ok {
			return false
		}
	}
	if !c.countryMatches(job.Country) {
		return false
	}
	if c.levels != nil {
		level, ok := types.ParsePositionLevel(string(job.PositionLevel))
		if !ok {
			level = insights.ExperienceBand(float64(job.MinYearsExperience))
		}
		if _, ok := c.levels[level]; !ok {
			return false
		}
	}
	if c.sponsorship != nil && job.Sponsorship != *c.sponsorship {
		return false
	}
	return true
}

// matchCandidate filters on extracted candidate features and country of origin.
// Sponsorship does not apply to candidates.
func (c *filter) matchCandidate(candidate *types.CandidateRecord, fs *types.FeatureSet) bool {
	if c == nil {
		return true
	}
	if len(c.terms) > 0 && !anyShared(c.keywords, fs.Skills) {
		return false
	}
	if !c.yearsInRange(fs.ExperienceYears) {
		return false
	}
	if c.tiers != nil {
		if _, ok := c.tiers[fs.EducationTier]; !ok {
			return false
		}
	}
	if !c.countryMatches(candidate.CountryOfOrigin) {
		return false
	}
	if c.levels != nil {
		level, ok := types.ParsePositionLevel(candidate.LastPositionLevel)
		if !ok {
			level = insights.ExperienceBand(fs.ExperienceYears)
		}
		if _, ok := c.levels[level]; !ok {
			return false
		}
	}
	return true
}

func (c *filter) yearsInRange(years float64) bool {
	if c.minYears != nil && years < *c.minYears {
		return false
	}
	if c.maxYears != nil && years > *c.maxYears {
		return false
	}
	return true
}

func (c *filter) countryMatches(country string) bool {
	if c.countries == nil {
		return true
	}
	_, ok := c.countries[strings.ToLower(strings.TrimSpace(country))]
	return ok
}

// anyShared reports whether two sorted sets intersect.
func anyShared(a, b []string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			return true
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return false
}
