package vault

import (
	"context"

	"github.com/vvka-141/dvload/pkg/dvload"
)

// Load writes g into the warehouse in the fixed vault order: the four hubs,
// link_order, then the four satellites. state is updated as rows are written.
// It stops at the first failure and returns the stats gathered so far.
func Load(ctx context.Context, inserter dvload.RowInserter, g *Grouping, state *State, p Provenance) ([]dvload.TableStats, error) {
	stats := make([]dvload.TableStats, 0, len(RequiredTables()))

	hubs := NewHubLoader(inserter, p)
	for _, kind := range Kinds {
		s, err := hubs.Load(ctx, kind, g.Entities(kind), state.Hub(kind))
		if err != nil {
			return stats, err
		}
		stats = append(stats, s)
	}

	s, err := NewLinkLoader(inserter, p).Load(ctx, g.Entities(KindOrder), state.Link())
	if err != nil {
		return stats, err
	}
	stats = append(stats, s)

	sats := NewSatelliteLoader(inserter, p)
	for _, kind := range []Kind{KindCustomer, KindProduct, KindLocation} {
		s, err := sats.LoadDimension(ctx, kind, g.Entities(kind))
		if err != nil {
			return stats, err
		}
		stats = append(stats, s)
	}

	s, err = sats.LoadOrders(ctx, g.Entities(KindOrder), state.OrderVersions())
	if err != nil {
		return stats, err
	}
	return append(stats, s), nil
}
