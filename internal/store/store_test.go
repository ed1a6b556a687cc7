package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evesaga/evesaga/internal/ids"
)

func TestAddAssetItem_ImpliesStationAndType(t *testing.T) {
	s := New()

	implied := s.AddAssetItem(AssetItem{
		ItemID:       1,
		TypeID:       200,
		LocationID:   60003760,
		LocationType: LocationStation,
		Quantity:     1,
	})

	var kinds []ImpliedKind
	for _, k := range implied {
		kinds = append(kinds, k.Kind)
	}
	assert.ElementsMatch(t, []ImpliedKind{ImplyStation, ImplyType}, kinds)
}

func TestAddAssetItem_AbyssalImpliesDynamic(t *testing.T) {
	s := NewWithAbyssalSet([]ids.TypeId{47702})

	implied := s.AddAssetItem(AssetItem{
		ItemID:       2,
		TypeID:       47702,
		LocationID:   99,
		LocationType: LocationItem,
	})

	found := false
	for _, k := range implied {
		if k.Kind == ImplyDynamic {
			found = true
			assert.EqualValues(t, 2, k.ItemID)
		}
	}
	assert.True(t, found, "abyssal type should imply a dynamic reference")
}

func TestAddAssetItem_NoDuplicateImpliesOncePresent(t *testing.T) {
	s := New()
	s.AddStation(Station{StationID: 60003760, Name: "Jita IV - Moon 4"})
	s.AddItemType(ItemType{TypeID: 200, Name: "Rifter"})

	implied := s.AddAssetItem(AssetItem{
		ItemID: 3, TypeID: 200, LocationID: 60003760, LocationType: LocationStation,
	})
	assert.Empty(t, implied)
}

func TestAddMarketGroup_ImpliesMissingMembers(t *testing.T) {
	s := New()
	s.AddItemType(ItemType{TypeID: 200, Name: "Rifter"})

	implied := s.AddMarketGroup(MarketGroup{
		MarketGroupID: 10,
		Name:          "Frigates",
		MemberTypes:   []ids.TypeId{200, 201},
	})

	require.Len(t, implied, 1)
	assert.Equal(t, ImplyType, implied[0].Kind)
	assert.EqualValues(t, 201, implied[0].TypeID)
}

func TestAddDynamicItem_ImpliesSourceMutatorAndAttributes(t *testing.T) {
	s := New()

	implied := s.AddDynamicItem(DynamicItem{
		ItemID:        5,
		SourceTypeID:  100,
		MutatorTypeID: 900,
		DogmaAttributes: []AttributeValue{
			{AttributeID: 64, Value: 1.1},
			{AttributeID: 64, Value: 1.1}, // duplicate must not double-imply
		},
	})

	var kinds []ImpliedKind
	for _, k := range implied {
		kinds = append(kinds, k.Kind)
	}
	assert.ElementsMatch(t, []ImpliedKind{ImplyType, ImplyType, ImplyDogmaAttribute}, kinds)
}

func TestAssetName_OverwriteIsIdempotentLastWriteWins(t *testing.T) {
	s := New()
	s.AddAssetName(AssetName{ItemID: 1, Name: "Old Name"})
	s.AddAssetName(AssetName{ItemID: 1, Name: "New Name"})

	name, ok := s.GetAssetName(1)
	require.True(t, ok)
	assert.Equal(t, "New Name", name)
}

func TestMarketGroupHierarchyName_CutsCyclesAtDepth10(t *testing.T) {
	s := New()
	// build a self-referential cycle: group 1's parent is itself.
	one := ids.MarketGroupId(1)
	s.AddMarketGroup(MarketGroup{MarketGroupID: 1, Name: "Loop", ParentGroupID: &one})

	name := s.MarketGroupHierarchyName(1)
	assert.NotEmpty(t, name)
}

func TestAllItemsResolved_FalseUntilEverythingPresent(t *testing.T) {
	s := NewWithAbyssalSet([]ids.TypeId{47702})

	s.AddAssetItem(AssetItem{ItemID: 1, TypeID: 47702, LocationID: 60003760, LocationType: LocationStation})
	assert.False(t, s.AllItemsResolved(), "missing station, type, and dynamic")

	s.AddStation(Station{StationID: 60003760, Name: "Jita"})
	s.AddItemType(ItemType{TypeID: 47702, Name: "Abyssal Module"})
	assert.False(t, s.AllItemsResolved(), "still missing the dynamic")

	s.AddDynamicItem(DynamicItem{ItemID: 1, SourceTypeID: 47702, MutatorTypeID: 900})
	s.AddItemType(ItemType{TypeID: 900, Name: "Mutaplasmid"})
	assert.True(t, s.AllItemsResolved())
}

func TestAllItemsResolved_EmptyStoreIsResolved(t *testing.T) {
	s := New()
	assert.True(t, s.AllItemsResolved())
}
