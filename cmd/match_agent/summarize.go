package main

import (
	"github.com/jonathan/talent-match/internal/observability"
	"github.com/jonathan/talent-match/internal/types"
	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:       "summarize <job|candidate> <id>",
	Short:     "Summarize a job or applicant",
	Long:      "Prints a short template-based summary of the record with insights on experience, education and skills.",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(types.KindJob), string(types.KindCandidate)},
	RunE:      runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
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

	var summary *types.Summary
	if kind == types.KindJob {
		summary, err = a.service.GetJobSummary(ctx, args[1])
	} else {
		summary, err = a.service.GetApplicantSummary(ctx, args[1])
	}
	if err != nil {
		return err
	}

	return writeOutput(cmd, summary, func(p *observability.Printer) {
		p.PrintSummary(summary)
	})
}
