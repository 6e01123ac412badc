package vault

import (
	"github.com/vvka-141/dvload/internal/hashkey"
	"github.com/vvka-141/dvload/pkg/dvload"
)

// legacyView renders the cells of a batch the way the legacy loader typed
// them: one type per column, inferred over the whole batch. Concat keys are
// derived from these tokens so they match the keys that loader persisted.
type legacyView struct {
	types []hashkey.ColumnType
	index map[string]int
}

func newLegacyView(b *dvload.Batch) *legacyView {
	v := &legacyView{
		types: make([]hashkey.ColumnType, len(b.Columns)),
		index: make(map[string]int, len(b.Columns)),
	}
	column := make([]string, len(b.Rows))
	for i, name := range b.Columns {
		v.index[name] = i
		for j := range b.Rows {
			column[j] = rawCell(&b.Rows[j], i)
		}
		v.types[i] = hashkey.InferColumnType(column)
	}
	return v
}

// ColumnType returns the inferred type of the named column.
func (v *legacyView) ColumnType(name string) hashkey.ColumnType {
	i, ok := v.index[name]
	if !ok {
		return hashkey.ColumnObject
	}
	return v.types[i]
}

func (v *legacyView) token(r *dvload.Row, name string) any {
	i, ok := v.index[name]
	if !ok {
		return nil
	}
	return hashkey.LegacyToken(v.types[i], rawCell(r, i))
}

func (v *legacyView) inputs(r *dvload.Row) keyInputs {
	order := make([]any, len(v.types))
	for i, t := range v.types {
		order[i] = hashkey.LegacyToken(t, rawCell(r, i))
	}
	return keyInputs{
		segment:     v.token(r, dvload.ColumnSegment),
		city:        v.token(r, dvload.ColumnCity),
		state:       v.token(r, dvload.ColumnState),
		postalCode:  v.token(r, dvload.ColumnPostalCode),
		category:    v.token(r, dvload.ColumnCategory),
		subCategory: v.token(r, dvload.ColumnSubCategory),
		order:       order,
	}
}

// rawCell returns the source text of column i. Rows built in memory have no
// cells; their values are rendered back to text, with null as an empty cell.
func rawCell(r *dvload.Row, i int) string {
	if i < len(r.Cells) {
		return r.Cells[i]
	}
	if i >= len(r.Values) || hashkey.IsNull(r.Values[i]) {
		return ""
	}
	return hashkey.Canonical(r.Values[i])
}
