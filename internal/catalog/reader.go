package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Origin names one of the supported external data shapes.
type Origin string

const (
	OriginDelimited   Origin = "csv"
	OriginJSON        Origin = "json"
	OriginWooCommerce Origin = "woocommerce"
)

// Batch is the ordered output of the Source Reader.
type Batch struct {
	Origin  Origin
	Records []RawRecord

	// TotalAvailable is the number of records the remote side reports.
	// Local origins set it to len(Records).
	TotalAvailable int

	// Warnings carries non-fatal read problems (e.g. malformed CSV lines).
	Warnings []string
}

// Source obtains raw records from one origin.
//
// Implementations:
//   - DelimitedSource (this file) - CSV text with a header row
//   - JSONSource (this file) - a JSON array of objects or a single object
//   - woocommerce.Source - the paginated WooCommerce product API
type Source interface {
	Origin() Origin
	Read(ctx context.Context) (*Batch, error)
}

// DelimitedSource reads delimited text whose first line is the header row.
//
// Parsing uses encoding/csv, so a separator inside a double-quoted field is
// kept as part of the value. Lines with a different number of cells than the
// header are accepted; missing cells read as empty.
type DelimitedSource struct {
	Content   []byte
	Delimiter rune
}

// NewDelimitedSource creates a comma-separated source.
func NewDelimitedSource(content []byte) *DelimitedSource {
	return &DelimitedSource{Content: content, Delimiter: ','}
}

func (s *DelimitedSource) Origin() Origin { return OriginDelimited }

func (s *DelimitedSource) Read(ctx context.Context) (*Batch, error) {
	content := bytes.TrimPrefix(s.Content, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true
	if s.Delimiter != 0 {
		reader.Comma = s.Delimiter
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: no header line", ErrInvalidSourceFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrInvalidSourceFormat, err)
	}

	names := make([]string, len(header))
	hasName := false
	for i, h := range header {
		names[i] = cleanCell(h)
		if names[i] != "" {
			hasName = true
		}
	}
	if !hasName {
		return nil, fmt.Errorf("%w: empty header line", ErrInvalidSourceFormat)
	}

	batch := &Batch{Origin: OriginDelimited}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				batch.Warnings = append(batch.Warnings, fmt.Sprintf("Line %d: %v", parseErr.StartLine, parseErr.Err))
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidSourceFormat, err)
		}

		rec := make(RawRecord, len(names))
		for i, name := range names {
			if name == "" {
				continue
			}
			cell := ""
			if i < len(row) {
				cell = cleanCell(row[i])
			}
			rec[name] = String(cell)
		}
		batch.Records = append(batch.Records, rec)
	}

	batch.TotalAvailable = len(batch.Records)
	return batch, nil
}

// cleanCell trims whitespace and any stray wrapping quote characters.
func cleanCell(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
}

// JSONSource reads a JSON document holding either an array of objects or a
// single object.
type JSONSource struct {
	Content []byte
}

// NewJSONSource creates a JSON source from file content.
func NewJSONSource(content []byte) *JSONSource {
	return &JSONSource{Content: content}
}

func (s *JSONSource) Origin() Origin { return OriginJSON }

func (s *JSONSource) Read(ctx context.Context) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(s.Content))
	decoder.UseNumber()

	var parsed any
	if err := decoder.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSourceFormat, err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidSourceFormat)
	}

	batch := &Batch{Origin: OriginJSON}

	switch v := parsed.(type) {
	case []any:
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				// Non-object elements cannot carry a title; they surface as
				// empty records and are rejected downstream.
				batch.Warnings = append(batch.Warnings, fmt.Sprintf("Element %d: not an object", i))
				batch.Records = append(batch.Records, RawRecord{})
				continue
			}
			batch.Records = append(batch.Records, RecordFromMap(obj))
		}
	case map[string]any:
		batch.Records = []RawRecord{RecordFromMap(v)}
	default:
		return nil, fmt.Errorf("%w: expected a JSON array or object", ErrInvalidSourceFormat)
	}

	batch.TotalAvailable = len(batch.Records)
	return batch, nil
}

// Compile-time interface checks
var (
	_ Source = (*DelimitedSource)(nil)
	_ Source = (*JSONSource)(nil)
)
