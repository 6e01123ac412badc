package vault

import (
	"context"
	"fmt"

	"github.com/vvka-141/dvload/internal/dedup"
	"github.com/vvka-141/dvload/pkg/dvload"
)

// SatelliteLoader appends satellite versions.
type SatelliteLoader struct {
	inserter   dvload.RowInserter
	provenance Provenance
}

// NewSatelliteLoader creates a SatelliteLoader that stamps rows with p.
func NewSatelliteLoader(inserter dvload.RowInserter, p Provenance) *SatelliteLoader {
	return &SatelliteLoader{inserter: inserter, provenance: p}
}

// LoadDimension writes one version per entity into the satellite of kind, all
// at the batch load_dts. Nothing is compared against persisted versions: each
// run records the attributes it saw.
func (l *SatelliteLoader) LoadDimension(ctx context.Context, kind Kind, entities []Entity) (dvload.TableStats, error) {
	table := Satellite(kind)
	stats := dvload.TableStats{Table: table.Name}
	seen := dedup.NewSet[dedup.VersionKey]()
	rows := make([][]any, 0, len(entities))

	// Entities are distinct per key already; the check keeps (hash_key,
	// load_dts) unique if a caller passes duplicates.
	for _, e := range entities {
		v := dedup.NewVersionKey(e.Key, l.provenance.LoadDTS)
		if seen.Contains(v) {
			continue
		}
		seen.Add(v)
		rows = append(rows, l.row(table, v, e.Row))
	}
	stats.Candidates = len(rows)
	return l.insert(ctx, table, rows, stats)
}

// LoadOrders writes one version per order. Each order gets its own load_dts
// from a VersionClock started at the batch load_dts. Versions already in
// persisted are skipped; written ones are added to it.
func (l *SatelliteLoader) LoadOrders(ctx context.Context, orders []Entity, persisted *dedup.Set[dedup.VersionKey]) (dvload.TableStats, error) {
	table := Satellite(KindOrder)
	clock := NewVersionClock(l.provenance.LoadDTS)

	stats := dvload.TableStats{Table: table.Name}
	batch := dedup.NewSet[dedup.VersionKey]()
	var fresh []dedup.VersionKey
	rows := make([][]any, 0, len(orders))

	for _, o := range orders {
		v := dedup.NewVersionKey(o.Key, clock.Next())
		if batch.Contains(v) {
			continue
		}
		batch.Add(v)
		stats.Candidates++
		if persisted.Contains(v) {
			stats.Skipped++
			continue
		}
		fresh = append(fresh, v)
		rows = append(rows, l.row(table, v, o.Row))
	}

	stats, err := l.insert(ctx, table, rows, stats)
	if err != nil {
		return stats, err
	}
	persisted.Add(fresh...)
	return stats, nil
}

func (l *SatelliteLoader) row(table Table, v dedup.VersionKey, r *dvload.Row) []any {
	values := make([]any, 0, len(table.Attributes)+3)
	values = append(values, string(v.Key), v.Time())
	values = append(values, table.values(r)...)
	return append(values, l.provenance.RecordSource)
}

func (l *SatelliteLoader) insert(ctx context.Context, table Table, rows [][]any, stats dvload.TableStats) (dvload.TableStats, error) {
	if len(rows) == 0 {
		return stats, nil
	}
	n, err := l.inserter.InsertRows(ctx, table.Name, table.Columns(), rows)
	if err != nil {
		return stats, fmt.Errorf("failed to insert into %s: %w", table.Name, err)
	}
	stats.Inserted = int(n)
	return stats, nil
}
