package store

import "github.com/evesaga/evesaga/internal/ids"

// AllItemsResolved implements all_items_resolved(): every asset's station
// (when on-station) is known; every abyssal asset has a dynamic; every
// type referenced exists; every market-group referenced exists; every
// dogma-attribute referenced by any dynamic exists.
//
// Per Open Question #2, this considers every held dynamic's attribute ids
// — the full map, not a subset filtered to assets still reachable from one
// character's root (matching original_source's behavior).
func (s *Store) AllItemsResolved() bool {
	s.assetItems.mu.RLock()
	assets := make([]AssetItem, 0, len(s.assetItems.data))
	for _, a := range s.assetItems.data {
		assets = append(assets, a)
	}
	s.assetItems.mu.RUnlock()

	for _, a := range assets {
		if a.LocationType == LocationStation && !s.hasStation(ids.StationId(a.LocationID)) {
			return false
		}
		if s.isAbyssal(a.TypeID) && !s.hasDynamic(a.ItemID) {
			return false
		}
		if !s.hasType(a.TypeID) {
			return false
		}
	}

	s.itemTypes.mu.RLock()
	types := make([]ItemType, 0, len(s.itemTypes.data))
	for _, t := range s.itemTypes.data {
		types = append(types, t)
	}
	s.itemTypes.mu.RUnlock()

	for _, t := range types {
		if t.MarketGroupID != nil && !s.hasMarketGroup(*t.MarketGroupID) {
			return false
		}
	}

	s.dynamicItems.mu.RLock()
	dynamics := make([]DynamicItem, 0, len(s.dynamicItems.data))
	for _, d := range s.dynamicItems.data {
		dynamics = append(dynamics, d)
	}
	s.dynamicItems.mu.RUnlock()

	for _, d := range dynamics {
		if !s.hasType(d.SourceTypeID) || !s.hasType(d.MutatorTypeID) {
			return false
		}
		for _, av := range d.DogmaAttributes {
			if !s.hasDogmaAttribute(av.AttributeID) {
				return false
			}
		}
	}

	return true
}
