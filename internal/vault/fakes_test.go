package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vvka-141/dvload/pkg/dvload"
)

// memStore is an in-memory warehouse keyed by table name.
type memStore struct {
	tables   map[string][]map[string]any
	failOn   string
	inserts  []string
	fetchErr error
}

func newMemStore() *memStore {
	return &memStore{tables: make(map[string][]map[string]any)}
}

func (m *memStore) MissingTables(_ context.Context, tables []string) ([]string, error) {
	return nil, nil
}

func (m *memStore) FetchKeys(_ context.Context, table, keyColumn string) ([]string, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var keys []string
	for _, row := range m.tables[table] {
		keys = append(keys, row[keyColumn].(string))
	}
	return keys, nil
}

func (m *memStore) FetchVersions(_ context.Context, table, keyColumn string) ([]dvload.Version, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var versions []dvload.Version
	for _, row := range m.tables[table] {
		versions = append(versions, dvload.Version{
			HashKey: row[keyColumn].(string),
			LoadDTS: row[ColumnLoadDTS].(time.Time),
		})
	}
	return versions, nil
}

func (m *memStore) InsertRows(_ context.Context, table string, columns []string, rows [][]any) (int64, error) {
	m.inserts = append(m.inserts, table)
	if table == m.failOn {
		return 0, fmt.Errorf("insert into %s: duplicate key value violates unique constraint", table)
	}
	for _, values := range rows {
		if len(values) != len(columns) {
			return 0, fmt.Errorf("%s: %d values for %d columns", table, len(values), len(columns))
		}
		row := make(map[string]any, len(columns))
		for i, c := range columns {
			row[c] = values[i]
		}
		m.tables[table] = append(m.tables[table], row)
	}
	return int64(len(rows)), nil
}

func (m *memStore) count(table string) int {
	return len(m.tables[table])
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func float(f float64) pgtype.Float8 {
	return pgtype.Float8{Float64: f, Valid: true}
}

type rowSpec struct {
	segment, city, state, postal, region string
	category, subCategory, shipMode      string
	sales, discount, profit              float64
	quantity                             int64
}

func (s rowSpec) row() dvload.Row {
	r := dvload.Row{
		Segment:     text(s.segment),
		City:        text(s.city),
		State:       text(s.state),
		PostalCode:  text(s.postal),
		Region:      text(s.region),
		Category:    text(s.category),
		SubCategory: text(s.subCategory),
		ShipMode:    text(s.shipMode),
		Sales:       float(s.sales),
		Quantity:    pgtype.Int8{Int64: s.quantity, Valid: true},
		Discount:    float(s.discount),
		Profit:      float(s.profit),
	}
	r.Values = []any{
		r.Segment, r.City, r.State, r.PostalCode, r.Region,
		r.Category, r.SubCategory, r.ShipMode,
		r.Sales, r.Quantity, r.Discount, r.Profit,
	}
	return r
}

var rowA = rowSpec{
	segment: "Consumer", city: "NYC", state: "NY", postal: "10001", region: "East",
	category: "Furniture", subCategory: "Chairs", shipMode: "Standard",
	sales: 100, quantity: 1, discount: 0, profit: 20,
}

func scenarioBatch() *dvload.Batch {
	b := rowA
	b.subCategory = "Tables"
	return &dvload.Batch{
		Origin:  "superstore.csv",
		Columns: dvload.RequiredColumns,
		Rows:    []dvload.Row{rowA.row(), b.row()},
	}
}
