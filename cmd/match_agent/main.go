// Package main provides the match_agent CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/talent-match/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "match_agent",
	Short: "Profile-to-job matching engine",
	Long: `match_agent ranks jobs for applicants and applicants for jobs, summarizes
records and compares applicants with their peers. Records come from a Postgres
database when --database-url is set, otherwise from the --jobs and --candidates files.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	configPath     string
	jobsPath       string
	candidatesPath string
	outputFormat   string
	outputPath     string

	// flagCfg receives CLI overrides; unset fields fall back to the loaded config
	flagCfg config.Config
	cfg     *config.Config
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Path to a YAML or JSON config file")
	pf.StringVar(&jobsPath, "jobs", "", "Path to a jobs JSON file (object or array), used without a database")
	pf.StringVar(&candidatesPath, "candidates", "", "Path to a candidates JSON file (object or array), used without a database")
	pf.StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	pf.StringVarP(&outputPath, "out", "o", "", "Write output to this file instead of stdout")

	pf.StringVar(&flagCfg.DatabaseURL, "database-url", "", "Postgres connection URL")
	pf.StringVar(&flagCfg.RedisURL, "redis-url", "", "Redis URL for the shared feature cache")
	pf.StringVar(&flagCfg.TaxonomyPath, "taxonomy", "", "Path to a skill taxonomy YAML file")
	pf.StringVar(&flagCfg.EmbeddingProvider, "embedding-provider", "", "Embedding provider: hashing or gemini")
	pf.StringVar(&flagCfg.EmbeddingModel, "embedding-model", "", "Embedding model name")
	pf.IntVar(&flagCfg.EmbeddingDim, "embedding-dim", 0, "Embedding dimension")
	pf.IntVar(&flagCfg.TopK, "top-k", 0, "Default number of ranked results")
	pf.IntVar(&flagCfg.ExtractWorkers, "workers", 0, "Concurrent feature extractions")
	pf.BoolVar(&flagCfg.WarmOnWrite, "warm-on-write", false, "Precompute features after each write")
	pf.BoolVar(&flagCfg.LogJSON, "log-json", false, "Emit JSON logs")
	pf.BoolVar(&flagCfg.Debug, "debug", false, "Enable debug logging")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("unknown output format %q: expected text or json", outputFormat)
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Flags override the config file; bool flags only when given
	merged := flagCfg.MergeWithDefaults(*loaded)
	flags := cmd.Flags()
	if !flags.Changed("warm-on-write") {
		merged.WarmOnWrite = loaded.WarmOnWrite
	}
	if !flags.Changed("log-json") {
		merged.LogJSON = loaded.LogJSON
	}
	if !flags.Changed("debug") {
		merged.Debug = loaded.Debug
	}

	if err := merged.Validate(); err != nil {
		return err
	}
	cfg = &merged
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
