package vault

import (
	"github.com/vvka-141/dvload/internal/dedup"
	"github.com/vvka-141/dvload/internal/hashkey"
	"github.com/vvka-141/dvload/pkg/dvload"
)

// Entity is one distinct business key of a batch together with the first row
// that produced it. Satellite attributes and link references come from that row.
type Entity struct {
	Key  hashkey.Key
	Keys Keys
	Row  *dvload.Row
}

// Grouping is a batch reduced to its distinct entities, per kind, in batch order.
type Grouping struct {
	Rows     int
	entities map[Kind][]Entity
}

// Entities returns the distinct entities of kind in first-seen order.
func (g *Grouping) Entities(kind Kind) []Entity {
	return g.entities[kind]
}

// Distinct returns the number of distinct entities of kind.
func (g *Grouping) Distinct(kind Kind) int {
	return len(g.entities[kind])
}

// Group derives the keys of every row in b and keeps the first row seen for
// each distinct key of each kind.
//
// In concat mode keys are derived from the cells as the legacy loader typed
// them (see legacyView), so a warehouse it populated keeps its keys.
func Group(b *dvload.Batch, d hashkey.Deriver) *Grouping {
	g := &Grouping{
		Rows:     b.Len(),
		entities: make(map[Kind][]Entity, len(Kinds)),
	}
	if b == nil {
		return g
	}

	seen := make(map[Kind]*dedup.Set[hashkey.Key], len(Kinds))
	for _, k := range Kinds {
		seen[k] = dedup.NewSet[hashkey.Key]()
	}

	inputs := typedInputs
	if d.Mode() == dvload.HashModeConcat && len(b.Columns) > 0 {
		inputs = newLegacyView(b).inputs
	}

	for i := range b.Rows {
		row := &b.Rows[i]
		keys := deriveKeys(d, inputs(row))
		for _, kind := range Kinds {
			key := keys.Of(kind)
			if seen[kind].Contains(key) {
				continue
			}
			seen[kind].Add(key)
			g.entities[kind] = append(g.entities[kind], Entity{Key: key, Keys: keys, Row: row})
		}
	}
	return g
}

func entityKeys(entities []Entity) []hashkey.Key {
	keys := make([]hashkey.Key, len(entities))
	for i, e := range entities {
		keys[i] = e.Key
	}
	return keys
}
