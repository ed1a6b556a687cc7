package assetssaga

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evesaga/evesaga/internal/esiclient"
	"github.com/evesaga/evesaga/internal/ids"
	"github.com/evesaga/evesaga/internal/store"
)

func TestKeyOf_CollapsesAssetsNamesToCharacterAndPage(t *testing.T) {
	a := Work{Kind: KindAssetsNames, CharacterID: 1, Page: 2, ItemIDs: []ids.ItemId{10, 20}}
	b := Work{Kind: KindAssetsNames, CharacterID: 1, Page: 2, ItemIDs: []ids.ItemId{99}}

	require.Equal(t, KeyOf(a), KeyOf(b), "item_ids must not participate in dedup identity")
}

func TestInitialSeed_IsHoboMutatorsThenFirstAssetsPage(t *testing.T) {
	seed := InitialSeed(42)
	require.Len(t, seed, 2)
	require.Equal(t, KindHoboMutators, seed[0].Kind)
	require.Equal(t, Work{Kind: KindAssetsPage, CharacterID: 42, Page: 1}, seed[1])
}

func TestApplyAssetsPage_ExpandsPaginationOnlyFromPageOne(t *testing.T) {
	st := store.New()
	p := New(nil, nil, st)

	result := Result{
		Kind:        KindAssetsPage,
		CharacterID: 7,
		Page:        1,
		TotalPages:  3,
		Assets: []store.AssetItem{
			{ItemID: 100, TypeID: 1, LocationID: 60000001, LocationType: store.LocationStation, Quantity: 1},
		},
	}

	produced, err := p.Apply(context.Background(), result)
	require.NoError(t, err)

	var sawPage2, sawPage3, sawNames bool
	for _, w := range produced {
		switch {
		case w.Kind == KindAssetsPage && w.Page == 2:
			sawPage2 = true
		case w.Kind == KindAssetsPage && w.Page == 3:
			sawPage3 = true
		case w.Kind == KindAssetsNames:
			sawNames = true
			require.Equal(t, []ids.ItemId{100}, w.ItemIDs)
		}
	}
	require.True(t, sawPage2)
	require.True(t, sawPage3)
	require.True(t, sawNames)
}

func TestApplyAssetsPage_DoesNotRepaginateOnLaterPages(t *testing.T) {
	st := store.New()
	p := New(nil, nil, st)

	result := Result{Kind: KindAssetsPage, CharacterID: 7, Page: 2, TotalPages: 3}
	produced, err := p.Apply(context.Background(), result)
	require.NoError(t, err)

	for _, w := range produced {
		require.NotEqual(t, KindAssetsPage, w.Kind, "only page 1 fans out additional pages")
	}
}

func TestApplyAssetsNames_StoresNamesWithNoImpliedWork(t *testing.T) {
	st := store.New()
	p := New(nil, nil, st)

	result := Result{Kind: KindAssetsNames, AssetNames: []store.AssetName{{ItemID: 100, Name: "Rifter Fit"}}}
	produced, err := p.Apply(context.Background(), result)
	require.NoError(t, err)
	require.Empty(t, produced)

	name, ok := st.GetAssetName(100)
	require.True(t, ok)
	require.Equal(t, "Rifter Fit", name)
}

func TestApplyHoboMutators_WiresIntoMutatorIndexAndSurfacesImpliedTypes(t *testing.T) {
	st := store.New()
	p := New(nil, nil, st)

	hobo := esiclient.MutaplasmidData{
		500: esiclient.MutaplasmidEffect{
			InputOutputMapping: []esiclient.InputOutputMapping{
				{ResultingType: 600, ApplicableTypes: []ids.TypeId{587}},
			},
			AttributeIDs: map[ids.DogmaAttributeId]esiclient.AttributeRange{
				9: {Min: 0.9, Max: 1.1},
			},
		},
	}

	produced, err := p.Apply(context.Background(), Result{Kind: KindHoboMutators, Hobo: hobo})
	require.NoError(t, err)
	require.NotEmpty(t, produced)

	var sawMutatorType, sawResultingType, sawSourceType, sawAttr bool
	for _, w := range produced {
		switch {
		case w.Kind == KindType && w.TypeID == 500:
			sawMutatorType = true
		case w.Kind == KindType && w.TypeID == 600:
			sawResultingType = true
		case w.Kind == KindType && w.TypeID == 587:
			sawSourceType = true
		case w.Kind == KindDogmaAttribute && w.DogmaAttributeID == 9:
			sawAttr = true
		}
	}
	require.True(t, sawMutatorType)
	require.True(t, sawResultingType)
	require.True(t, sawSourceType)
	require.True(t, sawAttr)

	resulting, ok := st.Mutators.ResultingTypeBySourceMutator(587, 500)
	require.True(t, ok)
	require.Equal(t, ids.TypeId(600), resulting)
}

func TestImpliedToWork_MapsEveryImpliedKind(t *testing.T) {
	cases := []struct {
		key  store.ImpliedKey
		want WorkKind
	}{
		{store.ImpliedKey{Kind: store.ImplyStation, StationID: 1}, KindStation},
		{store.ImpliedKey{Kind: store.ImplyType, TypeID: 2}, KindType},
		{store.ImpliedKey{Kind: store.ImplyMarketGroup, MarketGroupID: 3}, KindMarketGroup},
		{store.ImpliedKey{Kind: store.ImplyDogmaAttribute, AttributeID: 4}, KindDogmaAttribute},
		{store.ImpliedKey{Kind: store.ImplyDynamic, ItemID: 5, TypeID: 6}, KindDynamic},
	}
	for _, tc := range cases {
		w := impliedToWork(tc.key)
		require.Equal(t, tc.want, w.Kind)
	}
}
