package vault

import (
	"context"
	"fmt"

	"github.com/vvka-141/dvload/internal/dedup"
	"github.com/vvka-141/dvload/internal/hashkey"
	"github.com/vvka-141/dvload/pkg/dvload"
)

// LinkLoader inserts link_order rows for orders the link has not seen yet.
type LinkLoader struct {
	inserter   dvload.RowInserter
	provenance Provenance
}

// NewLinkLoader creates a LinkLoader that stamps rows with p.
func NewLinkLoader(inserter dvload.RowInserter, p Provenance) *LinkLoader {
	return &LinkLoader{inserter: inserter, provenance: p}
}

// Load inserts one row per fresh order. The customer, product and location
// references are the keys of the first row seen for that order.
func (l *LinkLoader) Load(ctx context.Context, orders []Entity, persisted *dedup.Set[hashkey.Key]) (dvload.TableStats, error) {
	byKey := make(map[hashkey.Key]Keys, len(orders))
	for _, o := range orders {
		if _, ok := byKey[o.Key]; !ok {
			byKey[o.Key] = o.Keys
		}
	}

	fresh, existing := dedup.Partition(persisted, entityKeys(orders))
	stats := dvload.TableStats{
		Table:      LinkOrder.Name,
		Candidates: len(fresh) + len(existing),
		Skipped:    len(existing),
	}
	if len(fresh) == 0 {
		return stats, nil
	}

	// Column order: order key, load_dts, customer, product, location, record_source.
	rows := make([][]any, len(fresh))
	for i, key := range fresh {
		ref := byKey[key]
		rows[i] = []any{
			string(key),
			l.provenance.LoadDTS,
			string(ref.Customer),
			string(ref.Product),
			string(ref.Location),
			l.provenance.RecordSource,
		}
	}

	n, err := l.inserter.InsertRows(ctx, LinkOrder.Name, LinkOrder.Columns(), rows)
	if err != nil {
		return stats, fmt.Errorf("failed to insert into %s: %w", LinkOrder.Name, err)
	}
	persisted.Add(fresh...)
	stats.Inserted = int(n)
	return stats, nil
}
