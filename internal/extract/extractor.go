// Package extract parses delimited text files into normalized records.
//
// An Extractor is built in two passes. Construction runs a probing pass that
// fully parses the file once per candidate encoding until one decodes the
// whole file; the committed encoding and the normalized field names are then
// reused by Records, which reopens the file from the start for the real
// extraction pass.
package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/numetricbi/api-samples/internal/ident"
	"golang.org/x/text/encoding"
)

// DefaultMaxFieldSize bounds a single CSV cell at 1MB.
const DefaultMaxFieldSize = 1 << 20

// ContextCheckInterval is how often (in rows) Next checks for context
// cancellation. Checking every row would be wasteful.
var ContextCheckInterval = 100

// Record is one data row: normalized field name to raw string value, or nil
// for fields a short row did not provide.
type Record map[string]any

// Options configure an Extractor.
type Options struct {
	// FieldNames, when non-nil, replaces the file's header row as the source
	// of field names. The header row is still skipped during extraction.
	FieldNames []string

	// AutoID, when non-nil, augments every record with an "id" field holding
	// a time-ordered unique string.
	AutoID *ident.Generator

	// MaxFieldSize is the maximum accepted size of a single cell in bytes
	// (default: DefaultMaxFieldSize).
	MaxFieldSize int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Extractor reads a delimited file with a committed encoding and normalized
// field names.
type Extractor struct {
	path         string
	enc          Encoding
	fieldNames   []string
	maxFieldSize int
	autoID       *ident.Generator
	logger       *slog.Logger
}

// New probes path with each candidate encoding in order and commits the first
// one that decodes the entire file. Field names come from opts.FieldNames or
// the file's header row and are normalized exactly once.
//
// Returns *EncodingError if no candidate succeeds. Errors other than decode
// failures (unreadable file, oversized cell) abort the probe immediately.
func New(path string, opts Options) (*Extractor, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxFieldSize := opts.MaxFieldSize
	if maxFieldSize <= 0 {
		maxFieldSize = DefaultMaxFieldSize
	}

	e := &Extractor{
		path:         path,
		maxFieldSize: maxFieldSize,
		autoID:       opts.AutoID,
		logger:       logger,
	}

	header, err := e.probe(Candidates)
	if err != nil {
		return nil, err
	}

	names := opts.FieldNames
	if names == nil {
		names = header
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: file has no header row", path)
	}
	e.fieldNames = NormalizeFieldNames(names)

	return e, nil
}

// probe trial-parses the whole file once per candidate, discarding rows, and
// commits the first candidate that decodes without error. The header row of
// the winning pass is returned for field-name derivation.
func (e *Extractor) probe(candidates []Encoding) ([]string, error) {
	var lastErr error
	for _, enc := range candidates {
		header, err := e.trialParse(enc)
		if err == nil {
			e.enc = enc
			if enc.Name != "utf-8" {
				e.logger.Info("using fallback encoding", "file", e.path, "encoding", enc.Name)
			}
			return header, nil
		}
		if !isDecodeError(err) {
			return nil, err
		}
		e.logger.Warn("encoding failed", "file", e.path, "encoding", enc.Name, "error", err)
		lastErr = err
	}
	return nil, &EncodingError{Filename: e.path, Last: lastErr}
}

// trialParse reads the entire file through enc, returning the first row.
func (e *Extractor) trialParse(enc Encoding) ([]string, error) {
	f, err := os.Open(e.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", e.path, err)
	}
	defer f.Close()

	r := newCSVReader(enc.Reader(f))
	var header []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			return header, nil
		}
		if err != nil {
			return nil, err
		}
		if err := checkFieldSizes(row, e.maxFieldSize); err != nil {
			return nil, err
		}
		if header == nil {
			header = row
		}
	}
}

// FieldNames returns the normalized field names in column order.
func (e *Extractor) FieldNames() []string {
	return e.fieldNames
}

// EncodingName returns the name of the committed encoding.
func (e *Extractor) EncodingName() string {
	return e.enc.Name
}

// Records reopens the file with the committed encoding and returns a reader
// over its data rows. The header row is skipped. Each call starts a fresh
// pass over the file.
func (e *Extractor) Records(ctx context.Context) (*RecordReader, error) {
	f, err := os.Open(e.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", e.path, err)
	}

	r := &RecordReader{
		ctx:          ctx,
		extractor:    e,
		file:         f,
		csv:          newCSVReader(e.enc.Reader(f)),
		maxFieldSize: e.maxFieldSize,
	}

	// Skip the header row. An empty file simply yields no records.
	if _, err := r.csv.Read(); err != nil {
		r.done = true
		f.Close()
		if err != io.EOF {
			return nil, fmt.Errorf("read %s: %w", e.path, err)
		}
	}

	return r, nil
}

// RecordReader yields records one data row at a time, in file order.
type RecordReader struct {
	ctx          context.Context
	extractor    *Extractor
	file         *os.File
	csv          *csv.Reader
	maxFieldSize int
	row          int
	done         bool
}

// Next returns the next record, or io.EOF after the last data row.
// Short rows fill missing fields with nil; extra cells beyond the known
// field names are dropped.
func (r *RecordReader) Next() (Record, error) {
	if r.done {
		return nil, io.EOF
	}

	if r.row%ContextCheckInterval == 0 {
		if err := r.ctx.Err(); err != nil {
			return nil, err
		}
	}

	row, err := r.csv.Read()
	if err == io.EOF {
		r.done = true
		r.file.Close()
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.extractor.path, err)
	}
	if err := checkFieldSizes(row, r.maxFieldSize); err != nil {
		return nil, err
	}
	r.row++

	rec := make(Record, len(r.extractor.fieldNames)+1)
	for i, name := range r.extractor.fieldNames {
		if i < len(row) {
			rec[name] = row[i]
		} else {
			rec[name] = nil
		}
	}

	if r.extractor.autoID != nil {
		rec["id"] = r.extractor.autoID.Next()
	}

	return rec, nil
}

// Close releases the underlying file. Safe to call after io.EOF.
func (r *RecordReader) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	return r.file.Close()
}

// newCSVReader builds a csv.Reader configured to be as lenient about row
// shape as the probing contract requires: ragged rows and stray quotes are
// data problems, not encoding problems.
func newCSVReader(r io.Reader) *csv.Reader {
	c := csv.NewReader(r)
	c.FieldsPerRecord = -1
	c.LazyQuotes = true
	return c
}

// checkFieldSizes enforces the per-cell size cap.
func checkFieldSizes(row []string, max int) error {
	for i, cell := range row {
		if len(cell) > max {
			return fmt.Errorf("field %d larger than field limit (%d bytes)", i, max)
		}
	}
	return nil
}

// isDecodeError reports whether err came from a candidate encoding rejecting
// the file's bytes, as opposed to an I/O or data-shape problem.
func isDecodeError(err error) bool {
	return errors.Is(err, encoding.ErrInvalidUTF8) || errors.Is(err, ErrNonASCII)
}
