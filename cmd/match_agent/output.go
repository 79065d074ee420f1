package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/talent-match/internal/observability"
	"github.com/spf13/cobra"
)

// writeOutput writes v as indented JSON or renders it with text, to --out or stdout.
func writeOutput(cmd *cobra.Command, v any, text func(p *observability.Printer)) error {
	var w io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		outputDir := filepath.Dir(outputPath)
		if outputDir != "" && outputDir != "." {
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to write JSON output: %w", err)
		}
		return nil
	}

	text(observability.NewPrinter(w))
	return nil
}
