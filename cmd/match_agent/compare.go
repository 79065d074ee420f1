package main

import (
	"github.com/jonathan/talent-match/internal/matching"
	"github.com/jonathan/talent-match/internal/observability"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <candidate-id> <peer-id>...",
	Short: "Compare an applicant with peers",
	Long: `Scores the applicant's similarity to each peer and lists the skills the
applicant lacks with recommendations. With a single peer the comparison fails
if either applicant cannot be loaded; with several, unknown peers are reported
as diagnostics.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCompare,
}

var heatmapCmd = &cobra.Command{
	Use:   "heatmap <candidate-id> <peer-id>...",
	Short: "Print the skill heatmap for an applicant and peers",
	Long:  "Prints one row per skill and one column per applicant, with 1 for a held skill, partial credit for a related skill and 0 otherwise.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runHeatmap,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(heatmapCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var resp *matching.ComparisonResponse
	if len(args) == 2 {
		resp, err = a.service.CompareApplicants(ctx, args[0], args[1])
	} else {
		resp, err = a.service.CompareApplicantWithPeers(ctx, args[0], args[1:])
	}
	if err != nil {
		return err
	}

	return writeOutput(cmd, resp, func(p *observability.Printer) {
		p.PrintComparisons(resp.Results)
		p.PrintDiagnostics(resp.Diagnostics)
	})
}

func runHeatmap(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.service.GetComparisonHeatmap(ctx, args[0], args[1:])
	if err != nil {
		return err
	}

	return writeOutput(cmd, resp, func(p *observability.Printer) {
		p.PrintHeatmap(resp.Cells)
		p.PrintDiagnostics(resp.Diagnostics)
	})
}
