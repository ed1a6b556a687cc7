package marketsaga

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evesaga/evesaga/internal/ids"
	"github.com/evesaga/evesaga/internal/store"
)

func TestSeed_BuildsBothSidesAtPageOneForEveryTarget(t *testing.T) {
	seed := Seed([]SeedTarget{{RegionID: 10000002, TypeID: 44992}})
	require.ElementsMatch(t, []Work{
		{RegionID: 10000002, TypeID: 44992, Side: SideSell, Page: 1},
		{RegionID: 10000002, TypeID: 44992, Side: SideBuy, Page: 1},
	}, seed)
}

func TestKeyOf_EveryFieldParticipatesInDedup(t *testing.T) {
	a := Work{RegionID: 1, TypeID: 2, Side: SideSell, Page: 1}
	b := Work{RegionID: 1, TypeID: 2, Side: SideBuy, Page: 1}
	require.NotEqual(t, KeyOf(a), KeyOf(b))
}

func TestApply_FansOutRemainingPagesOnlyFromPageOne(t *testing.T) {
	book := NewOrderBook()
	p := New(nil, book)

	work := Work{RegionID: 10000002, TypeID: 44992, Side: SideSell, Page: 1}
	result := Result{
		Work:       work,
		TotalPages: 3,
		Orders:     []store.MarketOrder{{OrderID: 1, TypeID: 44992, RegionID: 10000002, IsBuy: false, Price: 1.0, Volume: 10}},
	}

	produced, err := p.Apply(context.Background(), result)
	require.NoError(t, err)
	require.ElementsMatch(t, []Work{
		{RegionID: 10000002, TypeID: 44992, Side: SideSell, Page: 2},
		{RegionID: 10000002, TypeID: 44992, Side: SideSell, Page: 3},
	}, produced)

	stored := book.AllOrders()
	require.Len(t, stored, 1)
	require.Equal(t, ids.TypeId(44992), stored[0].TypeID)
}

func TestApply_DoesNotRepaginateFromLaterPages(t *testing.T) {
	book := NewOrderBook()
	p := New(nil, book)

	result := Result{Work: Work{RegionID: 1, TypeID: 2, Side: SideBuy, Page: 2}, TotalPages: 5}
	produced, err := p.Apply(context.Background(), result)
	require.NoError(t, err)
	require.Empty(t, produced)
}

func TestOrderBook_SetReplacesWholesalePerKey(t *testing.T) {
	book := NewOrderBook()
	key := Key{RegionID: 1, TypeID: 2, Side: SideSell, Page: 1}

	book.set(key, []store.MarketOrder{{OrderID: 1}, {OrderID: 2}})
	book.set(key, []store.MarketOrder{{OrderID: 3}})

	all := book.AllOrders()
	require.Len(t, all, 1)
	require.Equal(t, int64(3), all[0].OrderID)
}
