package store

import (
	"github.com/evesaga/evesaga/internal/ids"
	"github.com/evesaga/evesaga/internal/mutatorindex"
)

// Snapshot is a flat, gob-friendly copy of every table the store holds.
// internal/snapshot uses it to persist and restore the whole closure
// across process restarts.
type Snapshot struct {
	AssetItems      []AssetItem
	AssetNames      []AssetName
	Stations        []Station
	ItemTypes       []ItemType
	MarketGroups    []MarketGroup
	DogmaAttributes []DogmaAttribute
	DynamicItems    []DynamicItem
	AbyssalTypes    []ids.TypeId
	Mutators        mutatorindex.Snapshot
}

// Snapshot copies every table, each under its own table's read lock, into
// a flat Snapshot value.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		AssetItems:      s.AllAssetItems(),
		AssetNames:      s.allAssetNames(),
		Stations:        s.allStations(),
		ItemTypes:       s.allItemTypes(),
		MarketGroups:    s.allMarketGroups(),
		DogmaAttributes: s.allDogmaAttributes(),
		DynamicItems:    s.AllDynamicItems(),
		AbyssalTypes:    s.allAbyssalTypes(),
		Mutators:        s.Mutators.Snapshot(),
	}
}

// RestoreSnapshot rebuilds a Store from a Snapshot captured by Snapshot().
// Tables are replayed through their own Add* admission path so any
// incidental bookkeeping (e.g. the dogma attribute name index) stays
// consistent with a live fetch; the mutator index is restored directly
// since it has no admission-time side effects of its own.
func RestoreSnapshot(snap Snapshot) *Store {
	s := NewWithAbyssalSet(snap.AbyssalTypes)

	for _, st := range snap.Stations {
		s.AddStation(st)
	}
	for _, t := range snap.ItemTypes {
		s.AddItemType(t)
	}
	for _, g := range snap.MarketGroups {
		s.AddMarketGroup(g)
	}
	for _, a := range snap.DogmaAttributes {
		s.AddDogmaAttribute(a)
	}
	for _, item := range snap.AssetItems {
		s.AddAssetItem(item)
	}
	for _, name := range snap.AssetNames {
		s.AddAssetName(name)
	}
	for _, d := range snap.DynamicItems {
		s.AddDynamicItem(d)
	}

	s.Mutators = mutatorindex.RestoreIndex(snap.Mutators)
	return s
}

// TableSizes reports the live row count of every table, keyed by table
// name, for gauges in internal/metrics.
func (s *Store) TableSizes() map[string]int {
	return map[string]int{
		"asset_items":      len(s.AllAssetItems()),
		"asset_names":      len(s.allAssetNames()),
		"stations":         len(s.allStations()),
		"item_types":       len(s.allItemTypes()),
		"market_groups":    len(s.allMarketGroups()),
		"dogma_attributes": len(s.allDogmaAttributes()),
		"dynamic_items":    len(s.AllDynamicItems()),
	}
}

func (s *Store) allAssetNames() []AssetName {
	s.assetNames.mu.RLock()
	defer s.assetNames.mu.RUnlock()
	out := make([]AssetName, 0, len(s.assetNames.data))
	for _, v := range s.assetNames.data {
		out = append(out, v)
	}
	return out
}

func (s *Store) allStations() []Station {
	s.stations.mu.RLock()
	defer s.stations.mu.RUnlock()
	out := make([]Station, 0, len(s.stations.data))
	for _, v := range s.stations.data {
		out = append(out, v)
	}
	return out
}

func (s *Store) allItemTypes() []ItemType {
	s.itemTypes.mu.RLock()
	defer s.itemTypes.mu.RUnlock()
	out := make([]ItemType, 0, len(s.itemTypes.data))
	for _, v := range s.itemTypes.data {
		out = append(out, v)
	}
	return out
}

func (s *Store) allMarketGroups() []MarketGroup {
	s.marketGroups.mu.RLock()
	defer s.marketGroups.mu.RUnlock()
	out := make([]MarketGroup, 0, len(s.marketGroups.data))
	for _, v := range s.marketGroups.data {
		out = append(out, v)
	}
	return out
}

func (s *Store) allDogmaAttributes() []DogmaAttribute {
	s.dogmaAttributes.mu.RLock()
	defer s.dogmaAttributes.mu.RUnlock()
	out := make([]DogmaAttribute, 0, len(s.dogmaAttributes.data))
	for _, v := range s.dogmaAttributes.data {
		out = append(out, v)
	}
	return out
}

func (s *Store) allAbyssalTypes() []ids.TypeId {
	out := make([]ids.TypeId, 0, len(s.abyssalSet))
	for t := range s.abyssalSet {
		out = append(out, t)
	}
	return out
}
