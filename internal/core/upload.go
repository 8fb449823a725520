package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// HeaderRow is the line number of the header; the first data row is
// reported as HeaderRow+1.
const HeaderRow = 1

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV decodes an uploaded file into rows keyed by the header names.
//
// The file must be UTF-8 (a leading BOM is dropped). Decoding is checked for
// the whole file before any row is produced, so an encoding problem never
// turns into per-row errors. Quoting is strict: a bare quote inside an
// unquoted cell, stray text after a closing quote or a quote left open at the
// end of the file rejects the whole file with ErrMalformedCSV. Blank lines are
// skipped, short rows carry only the columns they have and cells past the
// header are ignored. An empty file or a header without data yields zero rows
// and no error.
func ParseCSV(data []byte) ([]RawRow, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	// Well-formed quoting always pairs up; an odd count means a field was
	// left open and would swallow the rest of the file.
	if bytes.Count(data, []byte{'"'})%2 != 0 {
		return nil, fmt.Errorf("%w: unterminated quoted field", ErrMalformedCSV)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []RawRow
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}

		row := make(RawRow, len(header))
		for i, name := range header {
			if i >= len(record) {
				break
			}
			if name == "" {
				continue
			}
			row[name] = record[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Pipeline validates rows and upserts the valid ones into a Store.
type Pipeline struct {
	store     Store
	validator *RowValidator
}

// NewPipeline creates a pipeline writing to store.
func NewPipeline(store Store, validator *RowValidator) *Pipeline {
	if validator == nil {
		validator = NewRowValidator()
	}
	return &Pipeline{store: store, validator: validator}
}

// rowOutcome is the final result for one data row.
type rowOutcome struct {
	line     int
	raw      RawRow
	product  *Product
	messages []string
}

// Ingest processes rows strictly in order. Each valid row is written and
// committed before the next one starts; a rejected or failed row is recorded
// and processing moves on. An empty slice yields a zero outcome.
func (p *Pipeline) Ingest(ctx context.Context, rows []RawRow) IngestionOutcome {
	outcome := IngestionOutcome{Errors: []RowError{}}

	for i, raw := range rows {
		outcome.add(p.processRow(ctx, HeaderRow+i+1, raw))
	}

	return outcome
}

// processRow validates one row and, if valid, upserts it.
func (p *Pipeline) processRow(ctx context.Context, line int, raw RawRow) rowOutcome {
	result := p.validator.Validate(raw)
	if !result.Valid() {
		return rowOutcome{line: line, raw: raw, messages: result.Messages()}
	}

	stored, err := p.store.Upsert(ctx, *result.Product)
	if err != nil {
		slog.Debug("row upsert failed", "row", line, "sku", result.Product.SKU, "error", err)
		return rowOutcome{line: line, raw: raw, messages: []string{err.Error()}}
	}

	return rowOutcome{line: line, raw: raw, product: &stored}
}

// add folds one row outcome into the aggregate.
func (o *IngestionOutcome) add(r rowOutcome) {
	o.TotalRows++
	if r.product != nil {
		o.ValidRows++
		return
	}
	o.InvalidRows++
	o.Errors = append(o.Errors, RowError{
		Row:    r.line,
		Data:   r.raw,
		Errors: r.messages,
	})
}
