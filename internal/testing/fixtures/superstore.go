package fixtures

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
)

// SuperstoreHeader is the column layout of the retail order export.
var SuperstoreHeader = []string{
	"Row ID", "Order ID", "Ship Mode", "Segment", "Country", "City", "State",
	"Postal Code", "Region", "Category", "Sub-Category",
	"Sales", "Quantity", "Discount", "Profit",
}

// OrderRow is one source record. Zero-valued fields are written as empty cells.
type OrderRow struct {
	RowID       string
	OrderID     string
	ShipMode    string
	Segment     string
	Country     string
	City        string
	State       string
	PostalCode  string
	Region      string
	Category    string
	SubCategory string
	Sales       string
	Quantity    string
	Discount    string
	Profit      string
}

func (r OrderRow) record() []string {
	return []string{
		r.RowID, r.OrderID, r.ShipMode, r.Segment, r.Country, r.City, r.State,
		r.PostalCode, r.Region, r.Category, r.SubCategory,
		r.Sales, r.Quantity, r.Discount, r.Profit,
	}
}

// SuperstoreBuilder provides a fluent API for building source batches.
//
// Example usage:
//
//	csv := NewSuperstoreBuilder().
//	    Add(RowA()).
//	    Add(RowB()).
//	    CSV()
type SuperstoreBuilder struct {
	rows []OrderRow
}

// NewSuperstoreBuilder creates an empty builder.
func NewSuperstoreBuilder() *SuperstoreBuilder {
	return &SuperstoreBuilder{}
}

// Add appends rows in order.
func (b *SuperstoreBuilder) Add(rows ...OrderRow) *SuperstoreBuilder {
	b.rows = append(b.rows, rows...)
	return b
}

// CSV renders the header and the rows.
func (b *SuperstoreBuilder) CSV() string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Write(SuperstoreHeader) //nolint:errcheck
	for _, r := range b.rows {
		w.Write(r.record()) //nolint:errcheck
	}
	w.Flush()
	return sb.String()
}

// WriteFile writes the CSV to dir/name and returns its path.
func (b *SuperstoreBuilder) WriteFile(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.CSV()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// RowA is the first row of the reference two-row batch.
func RowA() OrderRow {
	return OrderRow{
		RowID: "1", OrderID: "CA-2016-152156", ShipMode: "Standard",
		Segment: "Consumer", Country: "United States", City: "NYC", State: "NY",
		PostalCode: "10001", Region: "East", Category: "Furniture", SubCategory: "Chairs",
		Sales: "100", Quantity: "1", Discount: "0", Profit: "20",
	}
}

// RowB is RowA with a different sub-category: it shares the customer and the
// location of RowA but not the product.
func RowB() OrderRow {
	r := RowA()
	r.SubCategory = "Tables"
	return r
}

// ReferenceBatch returns a builder holding RowA and RowB.
func ReferenceBatch() *SuperstoreBuilder {
	return NewSuperstoreBuilder().Add(RowA(), RowB())
}

// RowBurlington is an export row whose postal code has a leading zero and
// whose amounts are whole numbers.
func RowBurlington() OrderRow {
	return OrderRow{
		RowID: "2", OrderID: "US-2017-108966", ShipMode: "Standard Class",
		Segment: "Consumer", Country: "United States", City: "Burlington", State: "Vermont",
		PostalCode: "05408", Region: "East", Category: "Furniture", SubCategory: "Chairs",
		Sales: "100", Quantity: "1", Discount: "0", Profit: "20",
	}
}

// RowHenderson is an export row with fractional amounts.
func RowHenderson() OrderRow {
	return OrderRow{
		RowID: "3", OrderID: "CA-2016-138688", ShipMode: "Second Class",
		Segment: "Corporate", Country: "United States", City: "Henderson", State: "Kentucky",
		PostalCode: "42420", Region: "South", Category: "Office Supplies", SubCategory: "Labels",
		Sales: "14.62", Quantity: "2", Discount: "0.2", Profit: "6.8714",
	}
}

// ExportBatch returns a builder holding RowBurlington and RowHenderson.
func ExportBatch() *SuperstoreBuilder {
	return NewSuperstoreBuilder().Add(RowBurlington(), RowHenderson())
}
