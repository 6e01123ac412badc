package vault

import (
	"context"
	"fmt"

	"github.com/vvka-141/dvload/internal/dedup"
	"github.com/vvka-141/dvload/internal/hashkey"
	"github.com/vvka-141/dvload/pkg/dvload"
)

// State is the persisted key state a run partitions against. Loaders add the
// keys they insert, so later steps of the same run see them.
type State struct {
	hubs          map[Kind]*dedup.Set[hashkey.Key]
	link          *dedup.Set[hashkey.Key]
	orderVersions *dedup.Set[dedup.VersionKey]
}

// NewState returns an empty state, as seen against an empty warehouse.
func NewState() *State {
	s := &State{
		hubs:          make(map[Kind]*dedup.Set[hashkey.Key], len(Kinds)),
		link:          dedup.NewSet[hashkey.Key](),
		orderVersions: dedup.NewSet[dedup.VersionKey](),
	}
	for _, k := range Kinds {
		s.hubs[k] = dedup.NewSet[hashkey.Key]()
	}
	return s
}

// FetchState reads the hub keys, the link keys and the order satellite
// versions from store. All reads go through the same store, so they observe
// one snapshot when the store is bound to a transaction.
func FetchState(ctx context.Context, store dvload.KeyStore) (*State, error) {
	s := NewState()

	for _, k := range Kinds {
		hub := Hub(k)
		keys, err := store.FetchKeys(ctx, hub.Name, hub.KeyColumn)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch keys of %s: %w", hub.Name, err)
		}
		s.hubs[k].Add(toKeys(keys)...)
	}

	keys, err := store.FetchKeys(ctx, LinkOrder.Name, LinkOrder.KeyColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch keys of %s: %w", LinkOrder.Name, err)
	}
	s.link.Add(toKeys(keys)...)

	sat := Satellite(KindOrder)
	versions, err := store.FetchVersions(ctx, sat.Name, sat.KeyColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch versions of %s: %w", sat.Name, err)
	}
	for _, v := range versions {
		s.orderVersions.Add(dedup.NewVersionKey(hashkey.Key(v.HashKey), v.LoadDTS))
	}

	return s, nil
}

// Hub returns the persisted key set of the hub of kind.
func (s *State) Hub(kind Kind) *dedup.Set[hashkey.Key] {
	return s.hubs[kind]
}

// Link returns the persisted order keys of link_order.
func (s *State) Link() *dedup.Set[hashkey.Key] {
	return s.link
}

// OrderVersions returns the persisted (order_hash_key, load_dts) pairs.
func (s *State) OrderVersions() *dedup.Set[dedup.VersionKey] {
	return s.orderVersions
}

func toKeys(values []string) []hashkey.Key {
	keys := make([]hashkey.Key, len(values))
	for i, v := range values {
		keys[i] = hashkey.Key(v)
	}
	return keys
}
