// Package uploader drives a full CSV upload: resolve the target dataset,
// optionally clear it, then stream the file's records to the API in bounded
// batches.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/numetricbi/api-samples/internal/extract"
	"github.com/numetricbi/api-samples/internal/ident"
	"github.com/numetricbi/api-samples/internal/numetric"
)

// AutoPrimaryKey is the sentinel primary-key name that selects auto-generated
// row identifiers instead of a column from the file.
const AutoPrimaryKey = "_AUTO_"

// datasetDescription is attached to every dataset this tool creates.
const datasetDescription = "Uploaded using the CSV uploader tool"

// ErrPrimaryKeyMissing means the requested primary key is not one of the
// file's field names. Detected before any request is sent.
var ErrPrimaryKeyMissing = errors.New("primary key not present in file")

// Client is the slice of the Numetric API the uploader needs. *numetric.Client
// satisfies it; tests substitute a recorder.
type Client interface {
	CreateDataset(ctx context.Context, req numetric.CreateDatasetRequest) (*numetric.CreateDatasetResponse, error)
	UpdateFields(ctx context.Context, datasetID string, fields []numetric.FieldDef) (bool, error)
	AppendRows(ctx context.Context, datasetID string, rows []map[string]any, incremental bool) error
	ClearRows(ctx context.Context, datasetID string) error
	Index(ctx context.Context, datasetID string) error
}

// Options configure one upload run.
type Options struct {
	// Filename is the path of the CSV file to upload.
	Filename string

	// DatasetID targets an existing dataset. Empty means create a new one.
	DatasetID string

	// Name of a created dataset; defaults to the file's base name without
	// extension.
	Name string

	// PrimaryKey is the field identifying a row, or AutoPrimaryKey.
	PrimaryKey string

	// BatchSize bounds the number of rows per upload request.
	BatchSize int

	// IncrementalIndex indexes each batch as it lands instead of issuing one
	// index request after the upload completes.
	IncrementalIndex bool

	// Clear deletes all existing rows before uploading.
	Clear bool

	// FieldDefs, when non-nil, declares the dataset schema. With a DatasetID
	// they are pushed as a field update; without one they are used verbatim
	// on create.
	FieldDefs []numetric.FieldDef

	// Categories and Everyone are dataset-level metadata applied on create.
	Categories []string
	Everyone   bool

	// MaxFieldSize caps a single CSV cell (0 means the extractor default).
	MaxFieldSize int

	// IDs supplies auto-generated identifiers. Defaults to a fresh random
	// generator when PrimaryKey is AutoPrimaryKey.
	IDs *ident.Generator

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Result summarizes a completed upload.
type Result struct {
	DatasetID string
	Rows      int
	Batches   int
}

// Run performs the upload and returns a summary. Batches already sent stay
// applied remotely if a later batch fails; there is no cross-batch rollback.
func Run(ctx context.Context, client Client, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}

	var explicitNames []string
	if opts.FieldDefs != nil {
		if err := numetric.ValidateFieldDefs(opts.FieldDefs); err != nil {
			return nil, err
		}
		explicitNames = make([]string, len(opts.FieldDefs))
		for i, def := range opts.FieldDefs {
			explicitNames[i] = def.Field
		}
	}

	ids := opts.IDs
	if ids == nil && opts.PrimaryKey == AutoPrimaryKey {
		ids = ident.NewRandom()
	}

	ex, err := extract.New(opts.Filename, extract.Options{
		FieldNames:   explicitNames,
		AutoID:       ids,
		MaxFieldSize: opts.MaxFieldSize,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	datasetID, err := resolveDataset(ctx, client, ex, opts, logger)
	if err != nil {
		return nil, err
	}

	if opts.Clear {
		logger.Info("clearing all rows", "dataset_id", datasetID)
		if err := client.ClearRows(ctx, datasetID); err != nil {
			return nil, err
		}
	}

	logger.Info("uploading rows", "dataset_id", datasetID, "batch_size", opts.BatchSize)
	rows, batches, err := streamRows(ctx, client, ex, datasetID, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("upload complete", "dataset_id", datasetID, "rows", rows, "batches", batches)

	if !opts.IncrementalIndex {
		logger.Info("sending index request", "dataset_id", datasetID)
		if err := client.Index(ctx, datasetID); err != nil {
			return nil, err
		}
	}

	return &Result{DatasetID: datasetID, Rows: rows, Batches: batches}, nil
}

// resolveDataset creates the dataset, or pushes a field update onto an
// existing one, and returns the dataset to upload into.
func resolveDataset(ctx context.Context, client Client, ex *extract.Extractor, opts Options, logger *slog.Logger) (string, error) {
	if opts.DatasetID != "" {
		if opts.FieldDefs != nil {
			ok, err := client.UpdateFields(ctx, opts.DatasetID, opts.FieldDefs)
			if err != nil {
				return "", err
			}
			logger.Info("dataset fields updated", "dataset_id", opts.DatasetID, "success", ok)
		}
		return opts.DatasetID, nil
	}

	name := opts.Name
	if name == "" {
		base := filepath.Base(opts.Filename)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	req := numetric.CreateDatasetRequest{
		Name:        name,
		PrimaryKey:  opts.PrimaryKey,
		Description: datasetDescription,
		Everyone:    opts.Everyone,
		Categories:  opts.Categories,
	}

	fields := opts.FieldDefs
	if fields == nil {
		// Infer one string-typed field per extracted column, in column order.
		for _, f := range ex.FieldNames() {
			fields = append(fields, numetric.StringField(f))
		}
	}

	if opts.PrimaryKey == AutoPrimaryKey {
		// Rows carry a synthetic id; make it the primary key.
		req.PrimaryKey = "id"
		fields = append(fields, numetric.StringField("id"))
	} else if !fieldExists(ex.FieldNames(), opts.PrimaryKey) {
		return "", fmt.Errorf("primary key (%s) does not appear in %s: %w", opts.PrimaryKey, opts.Filename, ErrPrimaryKeyMissing)
	}

	req.Fields = fields

	logger.Info("creating a new dataset", "name", name)
	res, err := client.CreateDataset(ctx, req)
	if err != nil {
		return "", err
	}
	logger.Info("dataset created", "dataset_id", res.ID)
	return res.ID, nil
}

// streamRows drains the extractor, coercing stringified lists and flushing a
// batch whenever it fills. The trailing partial batch is flushed last.
func streamRows(ctx context.Context, client Client, ex *extract.Extractor, datasetID string, opts Options) (rows, batches int, err error) {
	reader, err := ex.Records(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer reader.Close()

	batch := make([]map[string]any, 0, opts.BatchSize)
	flush := func() error {
		if err := client.AppendRows(ctx, datasetID, batch, opts.IncrementalIndex); err != nil {
			return err
		}
		rows += len(batch)
		batches++
		batch = make([]map[string]any, 0, opts.BatchSize)
		return nil
	}

	for {
		rec, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return rows, batches, err
		}

		for field, value := range rec {
			if s, ok := value.(string); ok {
				rec[field] = numetric.CoerceValue(s)
			}
		}

		batch = append(batch, rec)
		if len(batch) >= opts.BatchSize {
			if err := flush(); err != nil {
				return rows, batches, err
			}
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return rows, batches, err
		}
	}
	return rows, batches, nil
}

func fieldExists(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
