package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evesaga/evesaga/internal/ids"
	"github.com/evesaga/evesaga/internal/mutatorindex"
)

func TestSnapshot_RestoreSnapshot_RoundTrips(t *testing.T) {
	s := NewWithAbyssalSet([]ids.TypeId{587})

	s.AddStation(Station{StationID: 60003760, Name: "Jita"})
	s.AddItemType(ItemType{TypeID: 587, Name: "Rifter"})
	s.AddDogmaAttribute(DogmaAttribute{AttributeID: 64, Name: "Damage Modifier", HighIsGood: true})
	s.AddMarketGroup(MarketGroup{MarketGroupID: 10, Name: "Frigates"})
	s.AddAssetItem(AssetItem{ItemID: 1, TypeID: 587, LocationID: 60003760, LocationType: LocationStation, Quantity: 1})
	s.AddAssetName(AssetName{ItemID: 1, Name: "My Rifter"})
	s.AddDynamicItem(DynamicItem{ItemID: 1, SourceTypeID: 587, MutatorTypeID: 900, DogmaAttributes: []AttributeValue{{AttributeID: 64, Value: 1.1}}})
	s.Mutators.AddMutator(900, map[ids.DogmaAttributeId]mutatorindex.AttributeRange{64: {Min: 0.9, Max: 1.3}}, []mutatorindex.InputOutput{
		{ResultingTypeID: 2000, SourceTypeIDs: []ids.TypeId{587}},
	})

	snap := s.Snapshot()
	restored := RestoreSnapshot(snap)

	asset, ok := restored.GetAssetItem(1)
	require.True(t, ok)
	assert.Equal(t, ids.TypeId(587), asset.TypeID)

	name, ok := restored.GetAssetName(1)
	require.True(t, ok)
	assert.Equal(t, "My Rifter", name)

	station, ok := restored.GetStation(60003760)
	require.True(t, ok)
	assert.Equal(t, "Jita", station.Name)

	itemType, ok := restored.GetItemType(587)
	require.True(t, ok)
	assert.Equal(t, "Rifter", itemType.Name)

	group, ok := restored.GetMarketGroup(10)
	require.True(t, ok)
	assert.Equal(t, "Frigates", group.Name)

	attr, ok := restored.GetDogmaAttribute(64)
	require.True(t, ok)
	assert.Equal(t, "Damage Modifier", attr.Name)

	resolvedID, ok := restored.AttributeIDByName("Damage Modifier")
	require.True(t, ok)
	assert.EqualValues(t, 64, resolvedID)

	dyn, ok := restored.GetDynamicItem(1)
	require.True(t, ok)
	assert.Equal(t, ids.TypeId(900), dyn.MutatorTypeID)

	resulting, ok := restored.Mutators.ResultingTypeBySourceMutator(587, 900)
	require.True(t, ok)
	assert.EqualValues(t, 2000, resulting)

	assert.True(t, restored.isAbyssal(587))
}
