package main

import (
	"github.com/jonathan/talent-match/internal/matching"
	"github.com/jonathan/talent-match/internal/observability"
	"github.com/jonathan/talent-match/internal/types"
	"github.com/spf13/cobra"
)

// searchFlags holds the ranking limit and filter flags shared by the rank commands.
type searchFlags struct {
	limit       int
	keywords    []string
	minYears    float64
	maxYears    float64
	education   []string
	country     []string
	level       []string
	sponsorship bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVarP(&f.limit, "limit", "n", 0, "Maximum results (defaults to the configured top K)")
	flags.StringSliceVar(&f.keywords, "keyword", nil, "Require at least one of these skills")
	flags.Float64Var(&f.minYears, "min-years", 0, "Minimum years of experience")
	flags.Float64Var(&f.maxYears, "max-years", 0, "Maximum years of experience")
	flags.StringSliceVar(&f.education, "education", nil, "Allowed education levels")
	flags.StringSliceVar(&f.country, "country", nil, "Allowed countries")
	flags.StringSliceVar(&f.level, "level", nil, "Allowed position levels")
	flags.BoolVar(&f.sponsorship, "sponsorship", false, "Require (true) or exclude (false) visa sponsorship")
}

// options builds search options; numeric and bool filters apply only when given.
func (f *searchFlags) options(cmd *cobra.Command) matching.SearchOptions {
	flags := cmd.Flags()
	filters := &types.SearchFilters{
		Keywords:      f.keywords,
		Education:     f.education,
		Country:       f.country,
		PositionLevel: f.level,
	}
	if flags.Changed("min-years") {
		v := f.minYears
		filters.MinYearsExperience = &v
	}
	if flags.Changed("max-years") {
		v := f.maxYears
		filters.MaxYearsExperience = &v
	}
	if flags.Changed("sponsorship") {
		v := f.sponsorship
		filters.Sponsorship = &v
	}

	opts := matching.SearchOptions{Limit: f.limit}
	if !filters.IsEmpty() {
		opts.Filters = filters
	}
	return opts
}

var (
	rankJobsSearch       searchFlags
	rankCandidatesSearch searchFlags
)

var rankJobsCmd = &cobra.Command{
	Use:   "rank-jobs <candidate-id>",
	Short: "Rank jobs for an applicant",
	Long:  "Scores every job matching the filters against the applicant and prints the top results with highlights and score breakdowns.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRankJobs,
}

var rankCandidatesCmd = &cobra.Command{
	Use:   "rank-candidates <job-id>",
	Short: "Rank applicants for a job",
	Long:  "Scores every applicant matching the filters against the job and prints the top results with highlights and score breakdowns.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRankCandidates,
}

func init() {
	rankJobsSearch.register(rankJobsCmd)
	rankCandidatesSearch.register(rankCandidatesCmd)

	rootCmd.AddCommand(rankJobsCmd)
	rootCmd.AddCommand(rankCandidatesCmd)
}

func runRankJobs(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.service.SearchJobsForApplicant(ctx, args[0], rankJobsSearch.options(cmd))
	if err != nil {
		return err
	}

	return writeOutput(cmd, resp, func(p *observability.Printer) {
		p.PrintJobMatches(resp.Results, resp.Degraded)
		p.PrintDiagnostics(resp.Diagnostics)
	})
}

func runRankCandidates(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.service.SearchCandidatesForJob(ctx, args[0], rankCandidatesSearch.options(cmd))
	if err != nil {
		return err
	}

	return writeOutput(cmd, resp, func(p *observability.Printer) {
		p.PrintCandidateMatches(resp.Results, resp.Degraded)
		p.PrintDiagnostics(resp.Diagnostics)
	})
}
