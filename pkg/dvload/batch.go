package dvload

import "github.com/jackc/pgx/v5/pgtype"

// Source column names. Values are matched against the trimmed CSV header.
const (
	ColumnSegment     = "Segment"
	ColumnCity        = "City"
	ColumnState       = "State"
	ColumnPostalCode  = "Postal Code"
	ColumnRegion      = "Region"
	ColumnCategory    = "Category"
	ColumnSubCategory = "Sub-Category"
	ColumnShipMode    = "Ship Mode"
	ColumnSales       = "Sales"
	ColumnQuantity    = "Quantity"
	ColumnDiscount    = "Discount"
	ColumnProfit      = "Profit"
)

// RequiredColumns lists the columns every source batch must carry.
var RequiredColumns = []string{
	ColumnSegment, ColumnCity, ColumnState, ColumnPostalCode, ColumnRegion,
	ColumnCategory, ColumnSubCategory, ColumnShipMode,
	ColumnSales, ColumnQuantity, ColumnDiscount, ColumnProfit,
}

// Batch is one rectangular in-memory table of source rows.
type Batch struct {
	// Origin identifies where the batch came from (usually the file path)
	Origin string

	// Columns are the header names in source order
	Columns []string

	// Rows are kept in source order; iteration order decides first-seen ties
	Rows []Row
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// Row is one retail order record.
//
// The named fields are the attributes the vault model reads. Values holds every
// source column, named or not, in header order and drives the full-row order
// fingerprint. Cells keeps the raw text of the same columns; it is nil for rows
// that were not read from text.
type Row struct {
	Segment     pgtype.Text
	City        pgtype.Text
	State       pgtype.Text
	PostalCode  pgtype.Text
	Region      pgtype.Text
	Category    pgtype.Text
	SubCategory pgtype.Text
	ShipMode    pgtype.Text

	Sales    pgtype.Float8
	Quantity pgtype.Int8
	Discount pgtype.Float8
	Profit   pgtype.Float8

	Values []any
	Cells  []string
}

// BatchSource supplies the batch for a load run.
type BatchSource interface {
	// ReadBatch reads the batch at path.
	// Returns ErrSourceNotFound if the path does not exist and ErrEmptyBatch if
	// it holds a header but no rows.
	ReadBatch(path string) (*Batch, error)
}
