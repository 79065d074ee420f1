package main

import (
	"context"
	"fmt"

	"github.com/jonathan/talent-match/internal/observability"
	"github.com/jonathan/talent-match/internal/schemas"
	"github.com/jonathan/talent-match/internal/types"
	"github.com/spf13/cobra"
)

var (
	extractLexical bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import job and candidate files into the database",
	Long: `Validates every record in the --jobs and --candidates files and stores it in
the database. Records without an id are assigned one; re-importing an existing
id stores a new version.`,
	RunE: runImport,
}

var extractCmd = &cobra.Command{
	Use:       "extract <job|candidate> <id>",
	Short:     "Print the derived features of a record",
	Long:      "Extracts, or reads from the feature cache, the normalized skills, experience, education and embedding of one record.",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(types.KindJob), string(types.KindCandidate)},
	RunE:      runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractLexical, "lexical", false, "Skip the embedding and extract lexical features only")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(extractCmd)
}

// commandContext returns the command's context, or a background context when
// the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseKind validates a record kind argument.
func parseKind(arg string) (types.RecordKind, error) {
	switch kind := types.RecordKind(arg); kind {
	case types.KindJob, types.KindCandidate:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown record kind %q: expected job or candidate", arg)
	}
}

func runImport(cmd *cobra.Command, _ []string) error {
	if jobsPath == "" && candidatesPath == "" {
		return fmt.Errorf("import requires --jobs or --candidates")
	}

	ctx := commandContext(cmd)
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireDB("import"); err != nil {
		return err
	}

	// Decode both files before writing anything
	var jobs []*types.JobRecord
	if jobsPath != "" {
		if jobs, err = schemas.ReadJobs(jobsPath); err != nil {
			return fmt.Errorf("failed to load jobs: %w", err)
		}
	}
	var candidates []*types.CandidateRecord
	if candidatesPath != "" {
		if candidates, err = schemas.ReadCandidates(candidatesPath); err != nil {
			return fmt.Errorf("failed to load candidates: %w", err)
		}
	}

	for _, job := range jobs {
		stored, err := a.service.CreateJob(ctx, job)
		if err != nil {
			return fmt.Errorf("failed to import job %s: %w", job.ID, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "job %s v%d\n", stored.ID, stored.Version)
	}
	for _, c := range candidates {
		stored, err := a.service.CreateCandidate(ctx, c)
		if err != nil {
			return fmt.Errorf("failed to import candidate %s: %w", c.ID, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "candidate %s v%d\n", stored.ID, stored.Version)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d jobs and %d candidates\n", len(jobs), len(candidates))
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var record types.Record
	if kind == types.KindJob {
		record, err = a.repo.GetJob(ctx, args[1])
	} else {
		record, err = a.repo.GetCandidate(ctx, args[1])
	}
	if err != nil {
		return err
	}

	var fs *types.FeatureSet
	if extractLexical {
		fs, err = a.source.ExtractLexical(ctx, record)
	} else {
		fs, err = a.source.Extract(ctx, record)
	}
	if err != nil {
		return err
	}

	return writeOutput(cmd, fs, func(p *observability.Printer) {
		p.PrintFeatureSet(fs)
	})
}
