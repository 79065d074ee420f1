package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/talent-match/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const testJobs = `[
  {"id": "job-a", "title": "Backend Engineer", "company": "Acme", "country": "USA",
   "description": "Build services in Go", "keywords": ["Go", "SQL"],
   "minYearsExperience": 3, "positionLevel": "Senior"},
  {"id": "job-b", "title": "Frontend Engineer", "company": "Globex", "country": "Canada",
   "description": "Build React apps", "keywords": ["React", "TypeScript"],
   "positionLevel": "Entry"}
]`

const testCandidates = `[
  {"id": "cand-1", "name": "Ada", "yearsOfExperience": 5, "countryOfOrigin": "Canada",
   "personalStatement": "Backend developer building APIs in Go",
   "workExperience": [{"title": "Backend Engineer", "startDate": "2019-01", "endDate": "Present",
                       "skills": ["Go", "SQL", "Docker"]}],
   "education": [{"degree": "Bachelor of Science"}]},
  {"id": "cand-2", "name": "Grace", "yearsOfExperience": 1,
   "personalStatement": "Frontend developer",
   "workExperience": [{"title": "Frontend Engineer", "startDate": "2023-01",
                       "skills": ["React", "TypeScript"]}]}
]`

// writeFile writes content to name under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// setupCLI points the CLI at fixture files with the default config and
// restores the package state after the test.
func setupCLI(t *testing.T, format string) {
	t.Helper()
	dir := t.TempDir()

	jobsPath = writeFile(t, dir, "jobs.json", testJobs)
	candidatesPath = writeFile(t, dir, "candidates.json", testCandidates)
	outputFormat = format
	outputPath = ""
	defaults := config.Default()
	cfg = &defaults

	t.Cleanup(resetGlobals)
}

func resetGlobals() {
	configPath, jobsPath, candidatesPath = "", "", ""
	outputFormat, outputPath = "text", ""
	flagCfg = config.Config{}
	cfg = nil
	extractLexical = false
}

// run invokes fn with a fresh command capturing stdout.
func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(""))
	err := fn(cmd, args)
	return out.String(), err
}
