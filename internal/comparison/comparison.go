// Package comparison compares an applicant with peers: pairwise similarity,
// ranked skill gaps, rule-based recommendations and the skill heatmap.
package comparison

import (
	"fmt"
	"sort"

	"github.com/jonathan/talent-match/internal/ranking"
	"github.com/jonathan/talent-match/internal/skills"
	"github.com/jonathan/talent-match/internal/types"
)

// SubjectLabel labels the subject's heatmap cells.
const SubjectLabel = "You"

// Defaults for comparison
const (
	DefaultMaxSkillGaps = 5
	// DefaultMaxHeatmapSkills of 0 keeps the whole skill universe
	DefaultMaxHeatmapSkills = 0
)

// Peer is one applicant compared against the subject.
type Peer struct {
	ID       string
	Label    string // heatmap label; "Peer N" when empty
	Features *types.FeatureSet
}

// Options configures a Builder.
type Options struct {
	MaxSkillGaps     int
	PartialCredit    float64 // value for a related-skill match; 0 disables partial credit
	MaxHeatmapSkills int
}

// DefaultOptions returns the default comparison options.
func DefaultOptions() Options {
	return Options{
		MaxSkillGaps:     DefaultMaxSkillGaps,
		PartialCredit:    ranking.DefaultPartialCredit,
		MaxHeatmapSkills: DefaultMaxHeatmapSkills,
	}
}

// Builder produces comparison results and heatmaps. It is safe for concurrent use.
type Builder struct {
	scorer   *ranking.Scorer
	taxonomy *skills.Taxonomy
	opts     Options
}

// NewBuilder creates a Builder. Nil scorer and taxonomy select the defaults.
func NewBuilder(scorer *ranking.Scorer, taxonomy *skills.Taxonomy, opts Options) *Builder {
	if scorer == nil {
		scorer = ranking.DefaultScorer()
	}
	if taxonomy == nil {
		taxonomy = skills.Default()
	}
	if opts.MaxSkillGaps <= 0 {
		opts.MaxSkillGaps = DefaultMaxSkillGaps
	}
	return &Builder{scorer: scorer, taxonomy: taxonomy, opts: opts}
}

// Scorer returns the scorer used for pairwise similarity.
func (b *Builder) Scorer() *ranking.Scorer {
	return b.scorer
}

// WithScorer returns a copy of the builder using scorer.
func (b *Builder) WithScorer(scorer *ranking.Scorer) *Builder {
	return &Builder{scorer: scorer, taxonomy: b.taxonomy, opts: b.opts}
}

// Compare scores the subject against each peer in peer order. Skill gaps are
// the peer's skills the subject lacks, ranked by how many peers have them, then
// alphabetically.
func (b *Builder) Compare(subject *types.FeatureSet, peers []Peer) ([]types.ComparisonResult, error) {
	sets := make([][]string, len(peers))
	for i, p := range peers {
		sets[i] = p.Features.Skills
	}
	frequency := make(map[string]int)
	for _, t := range skills.BuildSkillTargets(sets...) {
		frequency[t.Skill] = t.Count
	}

	results := make([]types.ComparisonResult, 0, len(peers))
	for _, p := range peers {
		score, err := b.scorer.ScorePeers(subject, p.Features)
		if err != nil {
			return nil, fmt.Errorf("failed to compare %s with %s: %w", subject.RecordID, p.ID, err)
		}

		gaps := b.skillGaps(subject, p.Features, frequency)
		results = append(results, types.ComparisonResult{
			SubjectID:       subject.RecordID,
			PeerID:          p.ID,
			SimilarityScore: score.Overall,
			SkillGaps:       gaps,
			Recommendations: b.Recommendations(gaps),
			Breakdown:       score.Breakdown,
		})
	}
	return results, nil
}

func (b *Builder) skillGaps(subject, peer *types.FeatureSet, frequency map[string]int) []string {
	gaps := make([]string, 0)
	for _, s := range peer.Skills {
		if !subject.HasSkill(s) {
			gaps = append(gaps, s)
		}
	}
	sort.Slice(gaps, func(i, j int) bool {
		if frequency[gaps[i]] != frequency[gaps[j]] {
			return frequency[gaps[i]] > frequency[gaps[j]]
		}
		return gaps[i] < gaps[j]
	})
	if len(gaps) > b.opts.MaxSkillGaps {
		gaps = gaps[:b.opts.MaxSkillGaps]
	}
	return gaps
}

// Recommendations maps gaps, in order, to their configured advice. Skills without
// a rule produce nothing; identical advice appears once.
func (b *Builder) Recommendations(gaps []string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, g := range gaps {
		text, ok := b.taxonomy.Recommendation(g)
		if !ok {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}

// Heatmap emits one cell per (skill, entity) pair, skills outer and entities
// inner with the subject first. A nil universe selects the union of all skills
// ordered by how many entities have them, then alphabetically, capped at
// MaxHeatmapSkills when set.
func (b *Builder) Heatmap(subject *types.FeatureSet, peers []Peer, universe []string) []types.HeatmapCell {
	if universe == nil {
		universe = b.defaultUniverse(subject, peers)
	} else {
		universe = dedupe(universe)
	}

	type entity struct {
		label  string
		skills []string
	}
	entities := make([]entity, 0, len(peers)+1)
	entities = append(entities, entity{label: SubjectLabel, skills: subject.Skills})
	for i, p := range peers {
		label := p.Label
		if label == "" {
			label = fmt.Sprintf("Peer %d", i+1)
		}
		entities = append(entities, entity{label: label, skills: p.Features.Skills})
	}

	cells := make([]types.HeatmapCell, 0, len(universe)*len(entities))
	for _, skill := range universe {
		for _, e := range entities {
			cells = append(cells, types.HeatmapCell{
				Skill:        skill,
				SubjectLabel: e.label,
				Value:        ranking.ScoreSkillMembership(skill, e.skills, b.taxonomy, b.opts.PartialCredit),
			})
		}
	}
	return cells
}

func (b *Builder) defaultUniverse(subject *types.FeatureSet, peers []Peer) []string {
	sets := make([][]string, 0, len(peers)+1)
	sets = append(sets, subject.Skills)
	for _, p := range peers {
		sets = append(sets, p.Features.Skills)
	}

	targets := skills.BuildSkillTargets(sets...)
	if b.opts.MaxHeatmapSkills > 0 && len(targets) > b.opts.MaxHeatmapSkills {
		targets = targets[:b.opts.MaxHeatmapSkills]
	}
	universe := make([]string, len(targets))
	for i, t := range targets {
		universe[i] = t.Skill
	}
	return universe
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
