package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evesaga/evesaga/internal/store"
)

func TestWriter_StoreIsNoOpUntilMarkedDirty(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	st := store.New()

	err := w.Store(st)
	require.NoError(t, err)

	_, err = Load(dir)
	require.Error(t, err, "no file should have been written when never marked dirty")
}

func TestWriter_StoreThenLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	st := store.New()
	st.AddStation(store.Station{StationID: 60003760, Name: "Jita"})
	st.AddAssetItem(store.AssetItem{ItemID: 1, TypeID: 587, LocationID: 60003760, LocationType: store.LocationStation, Quantity: 1})

	w.MarkDirty()
	require.NoError(t, w.Store(st))

	restored, err := Load(dir)
	require.NoError(t, err)

	station, ok := restored.GetStation(60003760)
	require.True(t, ok)
	assert.Equal(t, "Jita", station.Name)

	asset, ok := restored.GetAssetItem(1)
	require.True(t, ok)
	assert.EqualValues(t, 587, asset.TypeID)
}

func TestWriter_StoreSkipsSecondWriteWithoutNewDirty(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	st := store.New()

	w.MarkDirty()
	require.NoError(t, w.Store(st))

	st.AddStation(store.Station{StationID: 1, Name: "Unsaved"})
	require.NoError(t, w.Store(st))

	restored, err := Load(dir)
	require.NoError(t, err)
	_, ok := restored.GetStation(1)
	assert.False(t, ok, "second Store call without MarkDirty must not persist the new station")
}
