// csv-upload uploads a CSV file to a Numetric dataset via the API.
//
// The file's encoding is auto-detected, field names are normalized, and rows
// are sent in bounded batches. Without --dataset-id a new dataset is created;
// with --dataset-id and --fields the dataset's field definitions are updated
// first.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/numetricbi/api-samples/internal/config"
	"github.com/numetricbi/api-samples/internal/logging"
	"github.com/numetricbi/api-samples/internal/numetric"
	"github.com/numetricbi/api-samples/internal/uploader"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type flags struct {
	filename    string
	server      string
	apiKey      string
	datasetID   string
	primaryKey  string
	batchSize   int
	incremental bool
	clear       bool
	fieldsPath  string
	name        string
	categories  []string
	private     bool
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "csv-upload",
		Short:         "Upload a CSV file to Numetric using the API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &f)
		},
	}

	cmd.Flags().StringVarP(&f.filename, "filename", "i", "", "CSV file to upload")
	cmd.Flags().StringVarP(&f.server, "server", "s", "", "server to upload to (default from NUMETRIC_SERVER)")
	cmd.Flags().StringVarP(&f.apiKey, "api-key", "k", "", "API key (default from NUMETRIC_API_KEY)")
	cmd.Flags().StringVarP(&f.datasetID, "dataset-id", "d", "", "existing dataset to upload into")
	cmd.Flags().StringVarP(&f.primaryKey, "primary-key", "p", "",
		fmt.Sprintf("primary key field (%s for auto-generated IDs)", uploader.AutoPrimaryKey))
	cmd.Flags().IntVarP(&f.batchSize, "batch-size", "b", 0, "number of rows to send in each batch")
	cmd.Flags().BoolVarP(&f.incremental, "index", "x", false,
		"perform incremental indexing instead of indexing after upload completes")
	cmd.Flags().BoolVar(&f.clear, "clear", false, "clear all rows from the dataset before uploading")
	cmd.Flags().StringVarP(&f.fieldsPath, "fields", "j", "", "path to a JSON file with field definitions")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "name of the created dataset")
	cmd.Flags().StringArrayVarP(&f.categories, "category", "c", nil, "category of the created dataset (repeatable)")
	cmd.Flags().BoolVarP(&f.private, "private", "y", false,
		"do not share the created dataset with everyone")

	cmd.MarkFlagRequired("filename")
	cmd.MarkFlagRequired("primary-key")

	return cmd
}

func run(cmd *cobra.Command, f *flags) error {
	// Load .env if present; real environment variables win.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	// Flags override config.
	if f.server == "" {
		f.server = cfg.Server.URL
	}
	if f.apiKey == "" {
		f.apiKey = cfg.Server.APIKey
	}
	if f.apiKey == "" {
		return fmt.Errorf("an API key is required (--api-key or NUMETRIC_API_KEY)")
	}
	if !cmd.Flags().Changed("batch-size") {
		f.batchSize = cfg.Upload.BatchSize
	}

	var fieldDefs []numetric.FieldDef
	if f.fieldsPath != "" {
		fieldDefs, err = numetric.LoadFieldDefs(expandUser(f.fieldsPath))
		if err != nil {
			return err
		}
	}

	client := numetric.NewClient(f.server, f.apiKey, numetric.RetryPolicy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
	}, slog.Default())
	client.SetHTTPClient(&http.Client{Timeout: cfg.Server.Timeout})

	filename := expandUser(f.filename)
	logger := logging.WithFields("file", filepath.Base(filename))

	res, err := uploader.Run(cmd.Context(), client, uploader.Options{
		Filename:         filename,
		DatasetID:        f.datasetID,
		Name:             f.name,
		PrimaryKey:       f.primaryKey,
		BatchSize:        f.batchSize,
		IncrementalIndex: f.incremental,
		Clear:            f.clear,
		FieldDefs:        fieldDefs,
		Categories:       f.categories,
		Everyone:         !f.private,
		MaxFieldSize:     cfg.Upload.MaxFieldSize,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", f.filename, err)
	}

	fmt.Printf("Dataset ID: %s\n", res.DatasetID)
	fmt.Printf("Uploaded %d rows in %d batches\n", res.Rows, res.Batches)
	return nil
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
