// Package types provides type definitions for structured data used throughout the talent-match system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// RecordKind distinguishes the two record families the engine scores.
type RecordKind string

// Record kinds
const (
	KindJob       RecordKind = "job"
	KindCandidate RecordKind = "candidate"
)

// PositionLevel is the seniority of a job posting.
type PositionLevel string

// Position levels accepted on job records
const (
	LevelEntry  PositionLevel = "Entry"
	LevelMid    PositionLevel = "Mid"
	LevelSenior PositionLevel = "Senior"
	LevelLead   PositionLevel = "Lead"
)

// ParsePositionLevel maps free-form level strings ("Entry-level", "mid level",
// "Executive") onto a PositionLevel. The second return is false for unknown input.
func ParsePositionLevel(s string) (PositionLevel, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	lower = strings.TrimSuffix(strings.TrimSuffix(lower, "-level"), " level")
	switch lower {
	case "entry", "junior", "intern", "graduate":
		return LevelEntry, true
	case "mid", "middle", "intermediate":
		return LevelMid, true
	case "senior", "sr", "sr.":
		return LevelSenior, true
	case "lead", "principal", "staff", "executive", "manager":
		return LevelLead, true
	default:
		return "", false
	}
}

// JobRecord represents a canonical job posting. Records are immutable; an edit
// is stored as a new record version.
type JobRecord struct {
	ID                 string        `json:"id" validate:"required"`
	Version            int           `json:"version" validate:"gte=0"`
	URL                string        `json:"url,omitempty"`
	Title              string        `json:"title" validate:"required"`
	Company            string        `json:"company"`
	Country            string        `json:"country"`
	Description        string        `json:"description"`
	Keywords           []string      `json:"keywords"`
	MinYearsExperience int           `json:"minYearsExperience" validate:"gte=0"`
	MinEducation       string        `json:"minEducation"`
	PositionLevel      PositionLevel `json:"positionLevel" validate:"omitempty,position_level"`
	Sponsorship        bool          `json:"sponsorship"`
	PostedDate         string        `json:"date,omitempty"`
	RecruiterID        string        `json:"recruiterId,omitempty"`
}

// CandidateRecord represents a canonical applicant profile.
type CandidateRecord struct {
	ID                string           `json:"id" validate:"required"`
	Version           int              `json:"version" validate:"gte=0"`
	Name              string           `json:"name" validate:"required"`
	YearsOfExperience *float64         `json:"yearsOfExperience,omitempty" validate:"omitempty,gte=0"`
	WorkAuthorization string           `json:"workAuthorization,omitempty"`
	CountryOfOrigin   string           `json:"countryOfOrigin,omitempty"`
	PersonalStatement string           `json:"personalStatement"`
	LastPosition      string           `json:"lastPosition,omitempty"`
	LastPositionLevel string           `json:"lastPositionLevel,omitempty"`
	WorkExperience    []WorkExperience `json:"workExperience" validate:"dive"`
	Education         []Education      `json:"education" validate:"dive"`
	Projects          []Project        `json:"projects,omitempty" validate:"dive"`
	URLs              []string         `json:"urls,omitempty"`
}

// WorkExperience is one position held by a candidate.
type WorkExperience struct {
	Company     string   `json:"company"`
	Title       string   `json:"title"`
	StartDate   string   `json:"startDate" validate:"required"`
	EndDate     string   `json:"endDate,omitempty"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// Education is one degree or program attended by a candidate.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

// Project is a side or portfolio project listed by a candidate.
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	URL          string   `json:"url,omitempty"`
	Technologies []string `json:"technologies"`
}

// Record is implemented by JobRecord and CandidateRecord.
type Record interface {
	RecordID() string
	RecordVersion() int
	Kind() RecordKind
}

// RecordID returns the job id.
func (j *JobRecord) RecordID() string { return j.ID }

// RecordVersion returns the job version.
func (j *JobRecord) RecordVersion() int { return j.Version }

// Kind returns KindJob.
func (j *JobRecord) Kind() RecordKind { return KindJob }

// RecordID returns the candidate id.
func (c *CandidateRecord) RecordID() string { return c.ID }

// RecordVersion returns the candidate version.
func (c *CandidateRecord) RecordVersion() int { return c.Version }

// Kind returns KindCandidate.
func (c *CandidateRecord) Kind() RecordKind { return KindCandidate }

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("position_level", func(fl validator.FieldLevel) bool {
			_, ok := ParsePositionLevel(fl.Field().String())
			return ok
		})
	})
	return validate
}

// Validate validates the JobRecord using the validator.
func (j *JobRecord) Validate() error {
	return recordValidator().Struct(j)
}

// Validate validates the CandidateRecord using the validator.
func (c *CandidateRecord) Validate() error {
	return recordValidator().Struct(c)
}
