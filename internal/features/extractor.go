// Package features converts job and candidate records into normalized feature sets.
package features

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/talent-match/internal/skills"
	"github.com/jonathan/talent-match/internal/types"
)

// Extractor derives FeatureSets from records. Apart from the embedder and the
// clock used for open-ended employment, extraction is a pure function of the record.
type Extractor struct {
	taxonomy *skills.Taxonomy
	embedder Embedder
	now      func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the clock used to close open-ended work experience.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// NewExtractor creates an Extractor. A nil taxonomy selects skills.Default and a
// nil embedder selects a HashingEmbedder of DefaultDimension.
func NewExtractor(taxonomy *skills.Taxonomy, embedder Embedder, opts ...Option) *Extractor {
	if taxonomy == nil {
		taxonomy = skills.Default()
	}
	if embedder == nil {
		embedder = NewHashingEmbedder(DefaultDimension)
	}
	e := &Extractor{
		taxonomy: taxonomy,
		embedder: embedder,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Taxonomy returns the taxonomy used for skill normalization.
func (e *Extractor) Taxonomy() *skills.Taxonomy {
	return e.taxonomy
}

// Dimension returns the embedding dimension of produced feature sets.
func (e *Extractor) Dimension() int {
	return e.embedder.Dimension()
}

// Extract dispatches on the record kind.
func (e *Extractor) Extract(ctx context.Context, record types.Record) (*types.FeatureSet, error) {
	return e.extract(ctx, record, true)
}

// ExtractLexical derives the feature set without an embedding. It never calls
// the embedder and is used when the embedding backend is unavailable.
func (e *Extractor) ExtractLexical(ctx context.Context, record types.Record) (*types.FeatureSet, error) {
	return e.extract(ctx, record, false)
}

func (e *Extractor) extract(ctx context.Context, record types.Record, embed bool) (*types.FeatureSet, error) {
	switch r := record.(type) {
	case *types.JobRecord:
		return e.job(ctx, r, embed)
	case *types.CandidateRecord:
		return e.candidate(ctx, r, embed)
	default:
		return nil, fmt.Errorf("unsupported record type %T", record)
	}
}

// ExtractJob derives the feature set of a job: skills from keywords and the
// minimum experience and education requirements.
func (e *Extractor) ExtractJob(ctx context.Context, job *types.JobRecord) (*types.FeatureSet, error) {
	return e.job(ctx, job, true)
}

func (e *Extractor) job(ctx context.Context, job *types.JobRecord, embed bool) (*types.FeatureSet, error) {
	if err := job.Validate(); err != nil {
		return nil, validationToExtraction(job.ID, err)
	}

	tier, known := TierFromDegree(job.MinEducation)
	fs := &types.FeatureSet{
		RecordID:         job.ID,
		Kind:             types.KindJob,
		Version:          job.Version,
		Skills:           e.taxonomy.NormalizeSet(job.Keywords),
		ExperienceYears:  float64(job.MinYearsExperience),
		EducationTier:    tier,
		UnknownEducation: !known,
	}

	if !embed {
		return fs, nil
	}
	parts := []string{job.Title, CleanText(job.Description), strings.Join(job.Keywords, " ")}
	vec, err := e.embed(ctx, job.ID, parts)
	if err != nil {
		return nil, err
	}
	fs.Embedding = vec
	return fs, nil
}

// ExtractCandidate derives the feature set of a candidate. Experience is the
// explicit yearsOfExperience when present, otherwise the merged span of work history.
func (e *Extractor) ExtractCandidate(ctx context.Context, c *types.CandidateRecord) (*types.FeatureSet, error) {
	return e.candidate(ctx, c, true)
}

func (e *Extractor) candidate(ctx context.Context, c *types.CandidateRecord, embed bool) (*types.FeatureSet, error) {
	if err := c.Validate(); err != nil {
		return nil, validationToExtraction(c.ID, err)
	}

	years, err := e.candidateYears(c)
	if err != nil {
		return nil, err
	}

	tier, unknown := candidateTier(c.Education)

	skillLists := make([][]string, 0, len(c.WorkExperience)+len(c.Projects))
	for _, w := range c.WorkExperience {
		skillLists = append(skillLists, w.Skills)
	}
	for _, p := range c.Projects {
		skillLists = append(skillLists, p.Technologies)
	}

	fs := &types.FeatureSet{
		RecordID:         c.ID,
		Kind:             types.KindCandidate,
		Version:          c.Version,
		Skills:           e.taxonomy.NormalizeSet(skillLists...),
		ExperienceYears:  years,
		EducationTier:    tier,
		UnknownEducation: unknown,
	}

	if !embed {
		return fs, nil
	}
	parts := []string{c.PersonalStatement}
	for _, w := range c.WorkExperience {
		parts = append(parts, w.Title, CleanText(w.Description))
	}
	for _, p := range c.Projects {
		parts = append(parts, p.Name, CleanText(p.Description))
	}
	parts = append(parts, strings.Join(fs.Skills, " "))

	vec, err := e.embed(ctx, c.ID, parts)
	if err != nil {
		return nil, err
	}
	fs.Embedding = vec
	return fs, nil
}

func (e *Extractor) candidateYears(c *types.CandidateRecord) (float64, error) {
	intervals := make([]interval, 0, len(c.WorkExperience))
	now := e.now().UTC()
	for i, w := range c.WorkExperience {
		start, err := parseDate(w.StartDate)
		if err != nil {
			return 0, &types.ExtractionError{
				RecordID: c.ID,
				Field:    fmt.Sprintf("workExperience[%d].startDate", i),
				Message:  "invalid date",
				Cause:    err,
			}
		}
		end := now
		if !isOpenEnded(w.EndDate) {
			end, err = parseDate(w.EndDate)
			if err != nil {
				return 0, &types.ExtractionError{
					RecordID: c.ID,
					Field:    fmt.Sprintf("workExperience[%d].endDate", i),
					Message:  "invalid date",
					Cause:    err,
				}
			}
		}
		if end.Before(start) {
			return 0, &types.ExtractionError{
				RecordID: c.ID,
				Field:    fmt.Sprintf("workExperience[%d]", i),
				Message:  fmt.Sprintf("end date %s is before start date %s", w.EndDate, w.StartDate),
			}
		}
		intervals = append(intervals, interval{start: start, end: end})
	}

	if c.YearsOfExperience != nil {
		return *c.YearsOfExperience, nil
	}
	return totalYears(intervals), nil
}

// candidateTier returns the highest recognized tier and whether any degree was unrecognized.
func candidateTier(education []types.Education) (types.EducationTier, bool) {
	best := types.TierNone
	unknown := false
	for _, ed := range education {
		tier, known := TierFromDegree(ed.Degree)
		if !known {
			unknown = true
			continue
		}
		if tier > best {
			best = tier
		}
	}
	return best, unknown
}

func (e *Extractor) embed(ctx context.Context, recordID string, parts []string) ([]float32, error) {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}

	vec, err := e.embedder.Embed(ctx, strings.Join(nonEmpty, "\n"))
	switch {
	case err == nil:
	case types.IsDependencyTimeout(err), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("failed to embed record %s: %w", recordID, err)
	default:
		// Any other embedder failure excludes only this record
		return nil, &types.ExtractionError{RecordID: recordID, Field: "embedding", Message: "embedding failed", Cause: err}
	}
	if len(vec) != e.embedder.Dimension() {
		return nil, &types.IncompatibleFeatureError{Want: e.embedder.Dimension(), Got: len(vec)}
	}
	return vec, nil
}

func validationToExtraction(recordID string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &types.ExtractionError{
			RecordID: recordID,
			Field:    fe.Namespace(),
			Message:  fmt.Sprintf("failed validation %q", fe.Tag()),
			Cause:    err,
		}
	}
	return &types.ExtractionError{RecordID: recordID, Message: "invalid record", Cause: err}
}
