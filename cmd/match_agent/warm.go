package main

import (
	"github.com/jonathan/talent-match/internal/features"
	"github.com/jonathan/talent-match/internal/observability"
	"github.com/jonathan/talent-match/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var warmCmd = &cobra.Command{
	Use:       "warm <job|candidate> [id...]",
	Short:     "Precompute feature sets",
	Long:      "Extracts and caches features for the given records, or for every record of the kind when no ids are given.",
	Args:      cobra.MinimumNArgs(1),
	ValidArgs: []string{string(types.KindJob), string(types.KindCandidate)},
	RunE:      runWarm,
}

func init() {
	rootCmd.AddCommand(warmCmd)
}

// warmReport is the JSON output of warm.
type warmReport struct {
	Kind        types.RecordKind    `json:"kind"`
	Cache       features.CacheStats `json:"cache"`
	Diagnostics []types.Diagnostic  `json:"diagnostics"`
}

func runWarm(cmd *cobra.Command, args []string) error {
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

	diagnostics, err := a.service.Warm(ctx, kind, args[1:])
	if err != nil {
		return err
	}
	if diagnostics == nil {
		diagnostics = []types.Diagnostic{}
	}

	report := warmReport{Kind: kind, Cache: a.source.Stats(), Diagnostics: diagnostics}
	a.logger.Info("warm complete",
		zap.String("kind", string(kind)),
		zap.Int64("extracted", report.Cache.Misses),
		zap.Int("skipped", len(diagnostics)),
	)

	return writeOutput(cmd, report, func(p *observability.Printer) {
		p.PrintWarm(kind, report.Cache.Hits, report.Cache.Misses, diagnostics)
	})
}
