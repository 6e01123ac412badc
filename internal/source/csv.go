// Package source reads the retail order batch from a CSV file.
package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vvka-141/dvload/pkg/dvload"
)

// CSVReader reads batches from CSV files with a header row.
type CSVReader struct{}

// NewCSVReader creates a CSVReader.
func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

// ReadBatch reads the CSV file at path.
func (r *CSVReader) ReadBatch(path string) (*dvload.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, dvload.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Parse(path, bytes.NewReader(text))
}

// Parse reads a CSV batch from rd. origin names the batch in errors.
//
// Header names are trimmed. Every record must have as many fields as the
// header. Empty cells are null; numeric columns must otherwise parse.
func Parse(origin string, rd io.Reader) (*dvload.Batch, error) {
	reader := csv.NewReader(rd)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s has no header row: %w", origin, dvload.ErrEmptyBatch)
		}
		return nil, fmt.Errorf("%s: failed to read header: %v: %w", origin, err, dvload.ErrInvalidSource)
	}

	cols, err := newLayout(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}

	batch := &dvload.Batch{Origin: origin, Columns: cols.names}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", origin, err, dvload.ErrInvalidSource)
		}

		row, err := cols.row(record)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%s line %d: %w", origin, line, err)
		}
		batch.Rows = append(batch.Rows, row)
	}

	if batch.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", origin, dvload.ErrEmptyBatch)
	}
	return batch, nil
}

type columnKind int

const (
	kindText columnKind = iota
	kindFloat
	kindInt
)

var numericColumns = map[string]columnKind{
	dvload.ColumnSales:    kindFloat,
	dvload.ColumnQuantity: kindInt,
	dvload.ColumnDiscount: kindFloat,
	dvload.ColumnProfit:   kindFloat,
}

// layout maps header positions to column names and value kinds.
type layout struct {
	names []string
	kinds []columnKind
	index map[string]int
}

func newLayout(header []string) (*layout, error) {
	l := &layout{
		names: make([]string, len(header)),
		kinds: make([]columnKind, len(header)),
		index: make(map[string]int, len(header)),
	}

	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, dup := l.index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q: %w", name, dvload.ErrInvalidSource)
		}
		l.names[i] = name
		l.kinds[i] = numericColumns[name]
		l.index[name] = i
	}

	var missing []string
	for _, c := range dvload.RequiredColumns {
		if _, ok := l.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s: %w", strings.Join(missing, ", "), dvload.ErrInvalidSource)
	}
	return l, nil
}

func (l *layout) row(record []string) (dvload.Row, error) {
	values := make([]any, len(record))
	for i, cell := range record {
		v, err := parseCell(l.kinds[i], cell)
		if err != nil {
			return dvload.Row{}, fmt.Errorf("column %q: %w", l.names[i], err)
		}
		values[i] = v
	}

	at := func(name string) any { return values[l.index[name]] }
	return dvload.Row{
		Segment:     at(dvload.ColumnSegment).(pgtype.Text),
		City:        at(dvload.ColumnCity).(pgtype.Text),
		State:       at(dvload.ColumnState).(pgtype.Text),
		PostalCode:  at(dvload.ColumnPostalCode).(pgtype.Text),
		Region:      at(dvload.ColumnRegion).(pgtype.Text),
		Category:    at(dvload.ColumnCategory).(pgtype.Text),
		SubCategory: at(dvload.ColumnSubCategory).(pgtype.Text),
		ShipMode:    at(dvload.ColumnShipMode).(pgtype.Text),
		Sales:       at(dvload.ColumnSales).(pgtype.Float8),
		Quantity:    at(dvload.ColumnQuantity).(pgtype.Int8),
		Discount:    at(dvload.ColumnDiscount).(pgtype.Float8),
		Profit:      at(dvload.ColumnProfit).(pgtype.Float8),
		Values:      values,
		Cells:       record,
	}, nil
}

func parseCell(kind columnKind, cell string) (any, error) {
	switch kind {
	case kindFloat:
		s := strings.TrimSpace(cell)
		if s == "" {
			return pgtype.Float8{}, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%q is not a number: %w", cell, dvload.ErrInvalidSource)
		}
		if math.IsNaN(f) {
			return pgtype.Float8{}, nil
		}
		return pgtype.Float8{Float64: f, Valid: true}, nil

	case kindInt:
		s := strings.TrimSpace(cell)
		if s == "" {
			return pgtype.Int8{}, nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return pgtype.Int8{Int64: n, Valid: true}, nil
		}
		// Spreadsheet exports write integers as "3.0".
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return nil, fmt.Errorf("%q is not an integer: %w", cell, dvload.ErrInvalidSource)
		}
		return pgtype.Int8{Int64: int64(f), Valid: true}, nil

	default:
		if cell == "" {
			return pgtype.Text{}, nil
		}
		return pgtype.Text{String: cell, Valid: true}, nil
	}
}
