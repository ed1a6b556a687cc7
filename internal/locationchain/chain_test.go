package locationchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evesaga/evesaga/internal/store"
)

func TestResolve_DirectStation(t *testing.T) {
	st := store.New()
	st.AddStation(store.Station{StationID: 60003760, Name: "Jita IV - Moon 4"})

	r := New(st)
	chain := r.Resolve(store.AssetItem{ItemID: 1, LocationID: 60003760, LocationType: store.LocationStation})

	assert.Equal(t, "Jita IV - Moon 4", chain.StationName)
	assert.Equal(t, store.LocationStation, chain.TerminalLocationType)
	assert.Equal(t, "Direct", chain.ChainLabel)
}

func TestResolve_ContainerChainToStation(t *testing.T) {
	st := store.New()
	st.AddStation(store.Station{StationID: 60003760, Name: "Jita"})
	st.AddAssetItem(store.AssetItem{ItemID: 100, LocationID: 60003760, LocationType: store.LocationStation})
	st.AddAssetName(store.AssetName{ItemID: 100, Name: "Can"})
	asset := store.AssetItem{ItemID: 1, LocationID: 100, LocationType: store.LocationItem}

	r := New(st)
	chain := r.Resolve(asset)

	assert.Equal(t, "Jita", chain.StationName)
	assert.Equal(t, store.LocationStation, chain.TerminalLocationType)
	assert.Equal(t, "Can", chain.ChainLabel)
}

func TestResolve_UnnamedContainerFallsBackToGeneratedName(t *testing.T) {
	st := store.New()
	st.AddStation(store.Station{StationID: 60003760, Name: "Jita"})
	st.AddAssetItem(store.AssetItem{ItemID: 100, LocationID: 60003760, LocationType: store.LocationStation})

	r := New(st)
	chain := r.Resolve(store.AssetItem{ItemID: 1, LocationID: 100, LocationType: store.LocationItem})

	assert.Equal(t, "Container_100", chain.ChainLabel)
}

func TestResolve_CycleCutAtDepth10(t *testing.T) {
	st := store.New()
	st.AddAssetItem(store.AssetItem{ItemID: 1, LocationID: 2, LocationType: store.LocationItem})
	st.AddAssetItem(store.AssetItem{ItemID: 2, LocationID: 1, LocationType: store.LocationItem})

	r := New(st)
	chain := r.Resolve(store.AssetItem{ItemID: 1, LocationID: 2, LocationType: store.LocationItem})

	assert.LessOrEqual(t, len(chain.ChainLabel), 200, "chain should terminate, not diverge")
	stats := r.Stats()
	assert.LessOrEqual(t, stats.MaxDepthSeen, MaxDepth)
}

func TestResolve_IsMemoizedAndIdempotent(t *testing.T) {
	st := store.New()
	st.AddStation(store.Station{StationID: 60003760, Name: "Jita"})
	asset := store.AssetItem{ItemID: 1, LocationID: 60003760, LocationType: store.LocationStation}

	r := New(st)
	first := r.Resolve(asset)
	second := r.Resolve(asset)

	require.Equal(t, first, second)

	stats := r.Stats()
	assert.Equal(t, 1, stats.TotalCalls, "second resolution should hit the memo cache, not re-walk")
}
