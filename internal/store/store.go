// Package store is the canonical in-memory asset store: concurrent, typed
// tables whose Add* operations return the newly-implied references they
// surface, which is the sole mechanism by which the saga discovers new
// work.
//
// Each table has its own lock. Add* takes a write lock on its own table
// and, where it needs to test presence in another table to decide whether
// a reference is "newly implied", takes a read lock on that table only
// for the duration of the check — never two write locks at once.
package store

import (
	"sync"

	"github.com/evesaga/evesaga/internal/ids"
	"github.com/evesaga/evesaga/internal/mutatorindex"
)

// Store owns every table in the dependency graph.
type Store struct {
	assetItems struct {
		mu   sync.RWMutex
		data map[ids.ItemId]AssetItem
	}
	assetNames struct {
		mu   sync.RWMutex
		data map[ids.ItemId]AssetName
	}
	stations struct {
		mu   sync.RWMutex
		data map[ids.StationId]Station
	}
	itemTypes struct {
		mu   sync.RWMutex
		data map[ids.TypeId]ItemType
	}
	marketGroups struct {
		mu   sync.RWMutex
		data map[ids.MarketGroupId]MarketGroup
	}
	dogmaAttributes struct {
		mu       sync.RWMutex
		data     map[ids.DogmaAttributeId]DogmaAttribute
		byName   map[string]ids.DogmaAttributeId
	}
	dynamicItems struct {
		mu   sync.RWMutex
		data map[ids.ItemId]DynamicItem
	}

	abyssalSet map[ids.TypeId]struct{} // immutable after NewWithAbyssalSet

	Mutators *mutatorindex.Index
}

// New builds an empty store with no abyssal types.
func New() *Store {
	return NewWithAbyssalSet(nil)
}

// NewWithAbyssalSet builds a store whose AbyssalSet is loaded once at init
// from static data and never mutated afterward.
func NewWithAbyssalSet(abyssal []ids.TypeId) *Store {
	s := &Store{Mutators: mutatorindex.New()}
	s.assetItems.data = make(map[ids.ItemId]AssetItem)
	s.assetNames.data = make(map[ids.ItemId]AssetName)
	s.stations.data = make(map[ids.StationId]Station)
	s.itemTypes.data = make(map[ids.TypeId]ItemType)
	s.marketGroups.data = make(map[ids.MarketGroupId]MarketGroup)
	s.dogmaAttributes.data = make(map[ids.DogmaAttributeId]DogmaAttribute)
	s.dogmaAttributes.byName = make(map[string]ids.DogmaAttributeId)
	s.dynamicItems.data = make(map[ids.ItemId]DynamicItem)

	s.abyssalSet = make(map[ids.TypeId]struct{}, len(abyssal))
	for _, t := range abyssal {
		s.abyssalSet[t] = struct{}{}
	}
	return s
}

func (s *Store) isAbyssal(t ids.TypeId) bool {
	_, ok := s.abyssalSet[t]
	return ok
}

// --- presence checks (read-locked on the target table only) ---

func (s *Store) hasStation(id ids.StationId) bool {
	s.stations.mu.RLock()
	defer s.stations.mu.RUnlock()
	_, ok := s.stations.data[id]
	return ok
}

func (s *Store) hasType(id ids.TypeId) bool {
	s.itemTypes.mu.RLock()
	defer s.itemTypes.mu.RUnlock()
	_, ok := s.itemTypes.data[id]
	return ok
}

func (s *Store) hasMarketGroup(id ids.MarketGroupId) bool {
	s.marketGroups.mu.RLock()
	defer s.marketGroups.mu.RUnlock()
	_, ok := s.marketGroups.data[id]
	return ok
}

func (s *Store) hasDogmaAttribute(id ids.DogmaAttributeId) bool {
	s.dogmaAttributes.mu.RLock()
	defer s.dogmaAttributes.mu.RUnlock()
	_, ok := s.dogmaAttributes.data[id]
	return ok
}

func (s *Store) hasDynamic(id ids.ItemId) bool {
	s.dynamicItems.mu.RLock()
	defer s.dynamicItems.mu.RUnlock()
	_, ok := s.dynamicItems.data[id]
	return ok
}

// --- AssetItem ---

// AddAssetItem admits an asset instance. Implied keys: the hosting
// station when directly on-station, a Dynamic reference to itself when
// its type is abyssal, and a Type reference for its type.
func (s *Store) AddAssetItem(item AssetItem) []ImpliedKey {
	var implied []ImpliedKey

	if item.LocationType == LocationStation && !s.hasStation(ids.StationId(item.LocationID)) {
		implied = append(implied, ImpliedKey{Kind: ImplyStation, StationID: ids.StationId(item.LocationID)})
	}
	if s.isAbyssal(item.TypeID) && !s.hasDynamic(item.ItemID) {
		implied = append(implied, ImpliedKey{Kind: ImplyDynamic, ItemID: item.ItemID, TypeID: item.TypeID})
	}
	if !s.hasType(item.TypeID) {
		implied = append(implied, ImpliedKey{Kind: ImplyType, TypeID: item.TypeID})
	}

	s.assetItems.mu.Lock()
	s.assetItems.data[item.ItemID] = item
	s.assetItems.mu.Unlock()

	return implied
}

// GetAssetItem returns the asset by id.
func (s *Store) GetAssetItem(id ids.ItemId) (AssetItem, bool) {
	s.assetItems.mu.RLock()
	defer s.assetItems.mu.RUnlock()
	v, ok := s.assetItems.data[id]
	return v, ok
}

// AllAssetItems returns a snapshot copy of every held asset.
func (s *Store) AllAssetItems() []AssetItem {
	s.assetItems.mu.RLock()
	defer s.assetItems.mu.RUnlock()
	out := make([]AssetItem, 0, len(s.assetItems.data))
	for _, v := range s.assetItems.data {
		out = append(out, v)
	}
	return out
}

// --- AssetName ---

// AddAssetName admits or overwrites a name. Overwrite is idempotent and
// last-write-wins (Open Question #1), no versioning. It carries no implied
// keys: the asset it names may not exist yet and is not required to.
func (s *Store) AddAssetName(name AssetName) []ImpliedKey {
	s.assetNames.mu.Lock()
	s.assetNames.data[name.ItemID] = name
	s.assetNames.mu.Unlock()
	return nil
}

// GetAssetName returns the item's friendly name, if any.
func (s *Store) GetAssetName(id ids.ItemId) (string, bool) {
	s.assetNames.mu.RLock()
	defer s.assetNames.mu.RUnlock()
	v, ok := s.assetNames.data[id]
	return v.Name, ok
}

// --- Station ---

// AddStation admits a station. Stations are terminal in location chains
// and carry no implied keys.
func (s *Store) AddStation(st Station) []ImpliedKey {
	s.stations.mu.Lock()
	s.stations.data[st.StationID] = st
	s.stations.mu.Unlock()
	return nil
}

// GetStation returns a station by id.
func (s *Store) GetStation(id ids.StationId) (Station, bool) {
	s.stations.mu.RLock()
	defer s.stations.mu.RUnlock()
	v, ok := s.stations.data[id]
	return v, ok
}

// --- ItemType ---

// AddItemType admits a type. Implied keys: its market group, if set and
// not yet present.
func (s *Store) AddItemType(t ItemType) []ImpliedKey {
	var implied []ImpliedKey
	if t.MarketGroupID != nil && !s.hasMarketGroup(*t.MarketGroupID) {
		implied = append(implied, ImpliedKey{Kind: ImplyMarketGroup, MarketGroupID: *t.MarketGroupID})
	}

	s.itemTypes.mu.Lock()
	s.itemTypes.data[t.TypeID] = t
	s.itemTypes.mu.Unlock()

	return implied
}

// GetItemType returns a type by id.
func (s *Store) GetItemType(id ids.TypeId) (ItemType, bool) {
	s.itemTypes.mu.RLock()
	defer s.itemTypes.mu.RUnlock()
	v, ok := s.itemTypes.data[id]
	return v, ok
}

// --- MarketGroup ---

// AddMarketGroup admits a market group. Implied keys: a Type reference for
// every member type not yet present.
func (s *Store) AddMarketGroup(g MarketGroup) []ImpliedKey {
	var implied []ImpliedKey
	for _, member := range g.MemberTypes {
		if !s.hasType(member) {
			implied = append(implied, ImpliedKey{Kind: ImplyType, TypeID: member})
		}
	}

	s.marketGroups.mu.Lock()
	s.marketGroups.data[g.MarketGroupID] = g
	s.marketGroups.mu.Unlock()

	return implied
}

// GetMarketGroup returns a market group by id.
func (s *Store) GetMarketGroup(id ids.MarketGroupId) (MarketGroup, bool) {
	s.marketGroups.mu.RLock()
	defer s.marketGroups.mu.RUnlock()
	v, ok := s.marketGroups.data[id]
	return v, ok
}

// MarketGroupHierarchyName walks parent_group_id up to the root, joining
// friendly names with " > ", cutting cycles at depth 10.
func (s *Store) MarketGroupHierarchyName(id ids.MarketGroupId) string {
	s.marketGroups.mu.RLock()
	defer s.marketGroups.mu.RUnlock()

	var names []string
	cur := &id
	for depth := 0; cur != nil && depth < 10; depth++ {
		g, ok := s.marketGroups.data[*cur]
		if !ok {
			break
		}
		names = append([]string{g.Name}, names...)
		cur = g.ParentGroupID
	}
	joined := ""
	for i, n := range names {
		if i > 0 {
			joined += " > "
		}
		joined += n
	}
	return joined
}

// --- DogmaAttribute ---

// AddDogmaAttribute admits an attribute and maintains the reverse
// name->id index.
func (s *Store) AddDogmaAttribute(a DogmaAttribute) []ImpliedKey {
	s.dogmaAttributes.mu.Lock()
	s.dogmaAttributes.data[a.AttributeID] = a
	if a.Name != "" {
		s.dogmaAttributes.byName[a.Name] = a.AttributeID
	}
	s.dogmaAttributes.mu.Unlock()
	return nil
}

// GetDogmaAttribute returns attribute metadata by id.
func (s *Store) GetDogmaAttribute(id ids.DogmaAttributeId) (DogmaAttribute, bool) {
	s.dogmaAttributes.mu.RLock()
	defer s.dogmaAttributes.mu.RUnlock()
	v, ok := s.dogmaAttributes.data[id]
	return v, ok
}

// AttributeIDByName implements get_attribute_id_by_name.
func (s *Store) AttributeIDByName(name string) (ids.DogmaAttributeId, bool) {
	s.dogmaAttributes.mu.RLock()
	defer s.dogmaAttributes.mu.RUnlock()
	v, ok := s.dogmaAttributes.byName[name]
	return v, ok
}

// --- DynamicItem ---

// AddDynamicItem admits a dynamic (mutated) item instance. Implied keys:
// its source type, its mutator type, and every attribute id it references,
// whichever are not yet present.
func (s *Store) AddDynamicItem(d DynamicItem) []ImpliedKey {
	var implied []ImpliedKey

	if !s.hasType(d.SourceTypeID) {
		implied = append(implied, ImpliedKey{Kind: ImplyType, TypeID: d.SourceTypeID})
	}
	if !s.hasType(d.MutatorTypeID) {
		implied = append(implied, ImpliedKey{Kind: ImplyType, TypeID: d.MutatorTypeID})
	}
	seen := make(map[ids.DogmaAttributeId]struct{})
	for _, av := range d.DogmaAttributes {
		if _, dup := seen[av.AttributeID]; dup {
			continue
		}
		seen[av.AttributeID] = struct{}{}
		if !s.hasDogmaAttribute(av.AttributeID) {
			implied = append(implied, ImpliedKey{Kind: ImplyDogmaAttribute, AttributeID: av.AttributeID})
		}
	}

	s.dynamicItems.mu.Lock()
	s.dynamicItems.data[d.ItemID] = d
	s.dynamicItems.mu.Unlock()

	return implied
}

// GetDynamicItem returns a dynamic item by id.
func (s *Store) GetDynamicItem(id ids.ItemId) (DynamicItem, bool) {
	s.dynamicItems.mu.RLock()
	defer s.dynamicItems.mu.RUnlock()
	v, ok := s.dynamicItems.data[id]
	return v, ok
}

// AllDynamicItems returns a snapshot copy of every held dynamic item.
func (s *Store) AllDynamicItems() []DynamicItem {
	s.dynamicItems.mu.RLock()
	defer s.dynamicItems.mu.RUnlock()
	out := make([]DynamicItem, 0, len(s.dynamicItems.data))
	for _, v := range s.dynamicItems.data {
		out = append(out, v)
	}
	return out
}

// --- Mutator catalogue ---

// MutatorCatalogueEntry is one mutator type's attribute ranges and
// input/output mapping, as surfaced by the hoboleaks-style catalogue.
type MutatorCatalogueEntry struct {
	MutatorTypeID ids.TypeId
	Attributes    map[ids.DogmaAttributeId]mutatorindex.AttributeRange
	Mapping       []mutatorindex.InputOutput
}

// AddMutatorCatalogue records every catalogue entry into Mutators (monotone
// insertion; see mutatorindex) and surfaces implied keys for every type
// and attribute id the catalogue references that the store doesn't
// already hold: the mutator type itself, every resulting/source type in
// its mapping, and every attribute id in its range table.
func (s *Store) AddMutatorCatalogue(entries []MutatorCatalogueEntry) []ImpliedKey {
	var implied []ImpliedKey
	seenTypes := make(map[ids.TypeId]struct{})
	seenAttrs := make(map[ids.DogmaAttributeId]struct{})

	addType := func(t ids.TypeId) {
		if _, dup := seenTypes[t]; dup {
			return
		}
		seenTypes[t] = struct{}{}
		if !s.hasType(t) {
			implied = append(implied, ImpliedKey{Kind: ImplyType, TypeID: t})
		}
	}
	addAttr := func(a ids.DogmaAttributeId) {
		if _, dup := seenAttrs[a]; dup {
			return
		}
		seenAttrs[a] = struct{}{}
		if !s.hasDogmaAttribute(a) {
			implied = append(implied, ImpliedKey{Kind: ImplyDogmaAttribute, AttributeID: a})
		}
	}

	for _, entry := range entries {
		addType(entry.MutatorTypeID)
		for attr := range entry.Attributes {
			addAttr(attr)
		}
		for _, io := range entry.Mapping {
			addType(io.ResultingTypeID)
			for _, source := range io.SourceTypeIDs {
				addType(source)
			}
		}
		s.Mutators.AddMutator(entry.MutatorTypeID, entry.Attributes, entry.Mapping)
	}

	return implied
}
