// csv-unique-count reports per-column cardinality of a CSV file: the total
// record count, then each field with its distinct-value count, sorted by
// descending distinct count.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/numetricbi/api-samples/internal/config"
	"github.com/numetricbi/api-samples/internal/extract"
	"github.com/numetricbi/api-samples/internal/logging"
	"github.com/numetricbi/api-samples/internal/report"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "csv-unique-count <filename>",
		Short:         "Report per-column distinct value counts of a CSV file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}
}

func run(cmd *cobra.Command, filename string) error {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ex, err := extract.New(expandUser(filename), extract.Options{
		MaxFieldSize: cfg.Upload.MaxFieldSize,
	})
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	r, err := report.Build(cmd.Context(), ex)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	return r.Write(os.Stdout)
}

// expandUser resolves a leading ~ to the user's home directory.
func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
