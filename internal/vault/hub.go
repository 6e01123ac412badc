package vault

import (
	"context"
	"fmt"

	"github.com/vvka-141/dvload/internal/dedup"
	"github.com/vvka-141/dvload/internal/hashkey"
	"github.com/vvka-141/dvload/pkg/dvload"
)

// HubLoader inserts the business keys a hub has not seen yet.
type HubLoader struct {
	inserter   dvload.RowInserter
	provenance Provenance
}

// NewHubLoader creates a HubLoader that stamps rows with p.
func NewHubLoader(inserter dvload.RowInserter, p Provenance) *HubLoader {
	return &HubLoader{inserter: inserter, provenance: p}
}

// Load inserts one row per fresh key of entities into the hub of kind, then
// adds those keys to persisted.
func (l *HubLoader) Load(ctx context.Context, kind Kind, entities []Entity, persisted *dedup.Set[hashkey.Key]) (dvload.TableStats, error) {
	table := Hub(kind)
	fresh, existing := dedup.Partition(persisted, entityKeys(entities))
	stats := dvload.TableStats{
		Table:      table.Name,
		Candidates: len(fresh) + len(existing),
		Skipped:    len(existing),
	}
	if len(fresh) == 0 {
		return stats, nil
	}

	rows := make([][]any, len(fresh))
	for i, key := range fresh {
		rows[i] = []any{string(key), l.provenance.LoadDTS, l.provenance.RecordSource}
	}

	n, err := l.inserter.InsertRows(ctx, table.Name, table.Columns(), rows)
	if err != nil {
		return stats, fmt.Errorf("failed to insert into %s: %w", table.Name, err)
	}
	persisted.Add(fresh...)
	stats.Inserted = int(n)
	return stats, nil
}
