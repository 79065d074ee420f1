// Package schemas holds the JSON Schemas for job and candidate records.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names
const (
	JobSchema       = "job.schema.json"
	CandidateSchema = "candidate.schema.json"
)
