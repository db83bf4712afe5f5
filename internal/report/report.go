// Package report computes per-column cardinality statistics for a delimited
// file. Everything is held in memory; there is no batching and no network.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/numetricbi/api-samples/internal/extract"
)

// ColumnCount is the number of distinct observed values in one column.
type ColumnCount struct {
	Field    string
	Distinct int
}

// Report holds the total record count and per-column distinct counts,
// sorted by descending distinct count. Ties keep column order.
type Report struct {
	Total   int
	Columns []ColumnCount
}

// Build reads every record from the extractor and counts distinct values per
// field. Absent values on short rows count as one distinct value per column.
func Build(ctx context.Context, ex *extract.Extractor) (*Report, error) {
	reader, err := ex.Records(ctx)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	seen := make(map[string]map[string]struct{}, len(ex.FieldNames()))
	for _, f := range ex.FieldNames() {
		seen[f] = make(map[string]struct{})
	}

	total := 0
	for {
		rec, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		for field, value := range rec {
			m, ok := seen[field]
			if !ok {
				continue
			}
			s, _ := value.(string)
			if value == nil {
				// Missing cells still form one distinct bucket.
				s = "\x00missing"
			}
			m[s] = struct{}{}
		}
		total++
	}

	r := &Report{Total: total}
	for _, f := range ex.FieldNames() {
		r.Columns = append(r.Columns, ColumnCount{Field: f, Distinct: len(seen[f])})
	}
	sort.SliceStable(r.Columns, func(i, j int) bool {
		return r.Columns[i].Distinct > r.Columns[j].Distinct
	})
	return r, nil
}

// Write renders the report in the tool's text format: the total record count
// followed by one "field: distinct" line per column.
func (r *Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Total: %d\n", r.Total); err != nil {
		return err
	}
	for _, col := range r.Columns {
		if _, err := fmt.Fprintf(w, "%s: %d\n", col.Field, col.Distinct); err != nil {
			return err
		}
	}
	return nil
}
