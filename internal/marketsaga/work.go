// Package marketsaga is the second, independent instance of the generic
// saga engine: it refreshes a region's market order book with a trivial
// seed list and no discovery, only pagination via the x-pages header,
// exactly as spec.md's "independent instance" describes.
package marketsaga

import (
	"github.com/evesaga/evesaga/internal/ids"
)

// Side is which order-book side a Work item targets.
type Side string

const (
	SideSell Side = "sell"
	SideBuy  Side = "buy"
)

// Work is one (region, type, side, page) order-book page fetch.
type Work struct {
	RegionID ids.RegionId
	TypeID   ids.TypeId
	Side     Side
	Page     int
}

// Key is Work's dedup identity. Unlike assetssaga, every field
// participates — there is no payload to collapse away.
type Key struct {
	RegionID ids.RegionId
	TypeID   ids.TypeId
	Side     Side
	Page     int
}

// KeyOf satisfies saga.Processor; Work and Key are already the same
// shape for this saga, since it has no discovery, only pagination.
func KeyOf(w Work) Key {
	return Key{RegionID: w.RegionID, TypeID: w.TypeID, Side: w.Side, Page: w.Page}
}

// SeedTarget names one (region, type) pair whose order book (both sides,
// starting at page 1) should be refreshed.
type SeedTarget struct {
	RegionID ids.RegionId
	TypeID   ids.TypeId
}

// Seed builds the initial work list for targets: page 1 of both the sell
// and buy side for every target. Later pages are discovered purely from
// the x-pages header in Apply, never from the store.
func Seed(targets []SeedTarget) []Work {
	seed := make([]Work, 0, len(targets)*2)
	for _, t := range targets {
		seed = append(seed,
			Work{RegionID: t.RegionID, TypeID: t.TypeID, Side: SideSell, Page: 1},
			Work{RegionID: t.RegionID, TypeID: t.TypeID, Side: SideBuy, Page: 1},
		)
	}
	return seed
}
