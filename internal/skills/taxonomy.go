// Package skills provides skill normalization, the synonym/related-skill taxonomy,
// and skill demand tables built from groups of skill sets.
package skills

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.yaml.in/yaml/v4"
)

//go:embed taxonomy.yaml
var defaultTaxonomyYAML []byte

// taxonomyFile is the on-disk YAML shape of a taxonomy.
type taxonomyFile struct {
	Synonyms        map[string][]string `yaml:"synonyms"`
	Related         [][]string          `yaml:"related"`
	Recommendations map[string]string   `yaml:"recommendations"`
}

// Taxonomy is a read-only table of synonyms, related skill groups and
// recommendation rules. It is safe for concurrent use.
type Taxonomy struct {
	canonical       map[string]string // alias or canonical -> canonical
	related         map[string]map[string]struct{}
	recommendations map[string]string
}

var (
	defaultTaxonomy     *Taxonomy
	defaultTaxonomyOnce sync.Once
)

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	defaultTaxonomyOnce.Do(func() {
		t, err := ParseTaxonomy(defaultTaxonomyYAML)
		if err != nil {
			panic(fmt.Sprintf("skills: invalid built-in taxonomy: %v", err))
		}
		defaultTaxonomy = t
	})
	return defaultTaxonomy
}

// LoadTaxonomy reads a taxonomy YAML file. An empty path returns the built-in taxonomy.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file %s: %w", path, err)
	}
	t, err := ParseTaxonomy(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy file %s: %w", path, err)
	}
	return t, nil
}

// ParseTaxonomy builds a Taxonomy from YAML. An alias mapped to two different
// canonical skills is rejected.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	t := &Taxonomy{
		canonical:       make(map[string]string),
		related:         make(map[string]map[string]struct{}),
		recommendations: make(map[string]string),
	}

	// Sorted iteration keeps conflict errors stable.
	names := make([]string, 0, len(file.Synonyms))
	for name := range file.Synonyms {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		canon := clean(name)
		if canon == "" {
			continue
		}
		if err := t.addAlias(canon, canon); err != nil {
			return nil, err
		}
		for _, alias := range file.Synonyms[name] {
			if err := t.addAlias(clean(alias), canon); err != nil {
				return nil, err
			}
		}
	}

	for _, group := range file.Related {
		members := make([]string, 0, len(group))
		for _, s := range group {
			if n := t.Normalize(s); n != "" {
				members = append(members, n)
			}
		}
		for _, a := range members {
			for _, b := range members {
				if a == b {
					continue
				}
				if t.related[a] == nil {
					t.related[a] = make(map[string]struct{})
				}
				t.related[a][b] = struct{}{}
			}
		}
	}

	for skill, text := range file.Recommendations {
		if n := t.Normalize(skill); n != "" && strings.TrimSpace(text) != "" {
			t.recommendations[n] = strings.TrimSpace(text)
		}
	}

	return t, nil
}

func (t *Taxonomy) addAlias(alias, canon string) error {
	if alias == "" {
		return nil
	}
	if existing, ok := t.canonical[alias]; ok && existing != canon {
		return fmt.Errorf("alias %q maps to both %q and %q", alias, existing, canon)
	}
	t.canonical[alias] = canon
	return nil
}

// clean lowercases, trims and collapses inner whitespace.
func clean(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Normalize returns the canonical form of a skill name: lowercased, whitespace
// collapsed and mapped through the synonym table. Returns "" for blank input.
func (t *Taxonomy) Normalize(skill string) string {
	c := clean(skill)
	if c == "" {
		return ""
	}
	if canon, ok := t.canonical[c]; ok {
		return canon
	}
	return c
}

// NormalizeSet normalizes every value and returns the sorted, de-duplicated result.
func (t *Taxonomy) NormalizeSet(values ...[]string) []string {
	seen := make(map[string]struct{})
	for _, list := range values {
		for _, v := range list {
			if n := t.Normalize(v); n != "" {
				seen[n] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// IsRelated reports whether two canonical skills belong to the same related group.
func (t *Taxonomy) IsRelated(a, b string) bool {
	_, ok := t.related[a][b]
	return ok
}

// HasRelated reports whether any skill in set is related to skill.
func (t *Taxonomy) HasRelated(skill string, set []string) bool {
	rel := t.related[skill]
	if len(rel) == 0 {
		return false
	}
	for _, s := range set {
		if _, ok := rel[s]; ok {
			return true
		}
	}
	return false
}

// Recommendation returns the advisory text configured for a missing skill.
func (t *Taxonomy) Recommendation(skill string) (string, bool) {
	text, ok := t.recommendations[skill]
	return text, ok
}
