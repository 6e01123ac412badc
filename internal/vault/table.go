package vault

import (
	"github.com/vvka-141/dvload/pkg/dvload"
)

// Kind is a business entity of the warehouse.
type Kind int

const (
	KindCustomer Kind = iota
	KindProduct
	KindLocation
	KindOrder
)

// Kinds lists every entity kind in load order.
var Kinds = []Kind{KindCustomer, KindProduct, KindLocation, KindOrder}

func (k Kind) String() string {
	switch k {
	case KindCustomer:
		return "customer"
	case KindProduct:
		return "product"
	case KindLocation:
		return "location"
	case KindOrder:
		return "order"
	default:
		return "unknown"
	}
}

// KeyColumn is the name of the hash key column for the kind.
func (k Kind) KeyColumn() string {
	return k.String() + "_hash_key"
}

const (
	ColumnLoadDTS      = "load_dts"
	ColumnRecordSource = "record_source"
)

// Table describes the physical columns of one vault table.
type Table struct {
	Name      string
	KeyColumn string

	// Attributes are the descriptive columns between load_dts and
	// record_source; only satellites have them.
	Attributes []string

	// values extracts Attributes from a row, in the same order.
	values func(r *dvload.Row) []any
}

// Columns returns the full insert column list of the table.
func (t Table) Columns() []string {
	cols := make([]string, 0, len(t.Attributes)+3)
	cols = append(cols, t.KeyColumn, ColumnLoadDTS)
	cols = append(cols, t.Attributes...)
	return append(cols, ColumnRecordSource)
}

// Hub returns the hub table of kind.
func Hub(k Kind) Table {
	return Table{Name: "hub_" + k.String(), KeyColumn: k.KeyColumn()}
}

// Satellite returns the satellite table of kind.
func Satellite(k Kind) Table {
	t := Table{Name: "sat_" + k.String(), KeyColumn: k.KeyColumn()}
	switch k {
	case KindCustomer:
		t.Attributes = []string{"segment", "region"}
		t.values = func(r *dvload.Row) []any { return []any{r.Segment, r.Region} }
	case KindProduct:
		t.Attributes = []string{"category", "sub_category"}
		t.values = func(r *dvload.Row) []any { return []any{r.Category, r.SubCategory} }
	case KindLocation:
		t.Attributes = []string{"city", "state", "postal_code", "region"}
		t.values = func(r *dvload.Row) []any { return []any{r.City, r.State, r.PostalCode, r.Region} }
	case KindOrder:
		t.Attributes = []string{"ship_mode", "sales", "quantity", "discount", "profit"}
		t.values = func(r *dvload.Row) []any {
			return []any{r.ShipMode, r.Sales, r.Quantity, r.Discount, r.Profit}
		}
	}
	return t
}

// LinkOrder is the order link table. It references one hub key of each kind.
var LinkOrder = Table{
	Name:      "link_order",
	KeyColumn: KindOrder.KeyColumn(),
	Attributes: []string{
		KindCustomer.KeyColumn(),
		KindProduct.KeyColumn(),
		KindLocation.KeyColumn(),
	},
}

// RequiredTables returns the names of all nine tables a load writes to.
func RequiredTables() []string {
	names := make([]string, 0, 2*len(Kinds)+1)
	for _, k := range Kinds {
		names = append(names, Hub(k).Name)
	}
	names = append(names, LinkOrder.Name)
	for _, k := range Kinds {
		names = append(names, Satellite(k).Name)
	}
	return names
}
