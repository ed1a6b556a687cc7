// Package assetssaga is the concrete saga.Processor instance that
// resolves one character's asset dependency graph: the hoboleaks mutator
// catalogue, paginated asset listings, asset names, and every type,
// market group, station, dogma attribute, and dynamic item those assets
// transitively reference.
package assetssaga

import (
	"fmt"

	"github.com/evesaga/evesaga/internal/esiclient"
	"github.com/evesaga/evesaga/internal/ids"
	"github.com/evesaga/evesaga/internal/store"
)

// WorkKind tags which of the eight assets-saga work types a Work/Key/
// Result value carries. Go has no payload-carrying enum, so each is a
// single struct with only the fields relevant to Kind populated —
// mirroring AssetsWorkType/AssetsWorkKey/AssetsWorkResult's shape.
type WorkKind string

const (
	KindHoboMutators   WorkKind = "hobo-mutators"
	KindAssetsPage     WorkKind = "assets-page"
	KindAssetsNames    WorkKind = "assets-names"
	KindDynamic        WorkKind = "dynamic"
	KindType           WorkKind = "type"
	KindMarketGroup    WorkKind = "market-group"
	KindStation        WorkKind = "station"
	KindDogmaAttribute WorkKind = "dogma-attribute"
)

// Work is one unit of work the engine dispatches to a worker.
type Work struct {
	Kind WorkKind

	CharacterID ids.CharacterId
	Page        int
	ItemIDs     []ids.ItemId // only set for KindAssetsNames

	TypeID           ids.TypeId
	ItemID           ids.ItemId // the dynamic item's own id, for KindDynamic
	MarketGroupID    ids.MarketGroupId
	StationID        ids.StationId
	DogmaAttributeID ids.DogmaAttributeId
}

// Key is Work's dedup identity — the same shape as Work but without the
// ItemIDs slice (slices aren't comparable, so they're excluded from K per
// the saga engine's K comparable constraint), matching AssetsWorkKey's
// narrower field set.
type Key struct {
	Kind WorkKind

	CharacterID      ids.CharacterId
	Page             int
	TypeID           ids.TypeId
	ItemID           ids.ItemId
	MarketGroupID    ids.MarketGroupId
	StationID        ids.StationId
	DogmaAttributeID ids.DogmaAttributeId
}

// Result is the outcome of Process for one Work, consumed by Apply.
type Result struct {
	Kind WorkKind

	Hobo esiclient.MutaplasmidData

	CharacterID ids.CharacterId
	Page        int
	TotalPages  int
	Assets      []store.AssetItem
	AssetNames  []store.AssetName

	TypeID         ids.TypeId
	ItemType       store.ItemType
	Dynamic        store.DynamicItem
	MarketGroup    store.MarketGroup
	Station        store.Station
	DogmaAttribute store.DogmaAttribute
}

// KeyOf derives w's dedup key, collapsing AssetsNames to (character, page)
// only — item_ids never participate in dedup identity, exactly the rule
// original_source's to_resolution_key applies.
func KeyOf(w Work) Key {
	switch w.Kind {
	case KindHoboMutators:
		return Key{Kind: w.Kind}
	case KindAssetsPage, KindAssetsNames:
		return Key{Kind: w.Kind, CharacterID: w.CharacterID, Page: w.Page}
	case KindDynamic:
		return Key{Kind: w.Kind, ItemID: w.ItemID}
	case KindType:
		return Key{Kind: w.Kind, TypeID: w.TypeID}
	case KindMarketGroup:
		return Key{Kind: w.Kind, MarketGroupID: w.MarketGroupID}
	case KindStation:
		return Key{Kind: w.Kind, StationID: w.StationID}
	case KindDogmaAttribute:
		return Key{Kind: w.Kind, DogmaAttributeID: w.DogmaAttributeID}
	default:
		panic(fmt.Sprintf("assetssaga: unknown work kind %q", w.Kind))
	}
}

// InitialSeed returns the two work items every assets saga run starts
// from: the mutator catalogue fetch and the first asset page.
func InitialSeed(characterID ids.CharacterId) []Work {
	return []Work{
		{Kind: KindHoboMutators},
		{Kind: KindAssetsPage, CharacterID: characterID, Page: 1},
	}
}

func impliedToWork(k store.ImpliedKey) Work {
	switch k.Kind {
	case store.ImplyStation:
		return Work{Kind: KindStation, StationID: k.StationID}
	case store.ImplyType:
		return Work{Kind: KindType, TypeID: k.TypeID}
	case store.ImplyMarketGroup:
		return Work{Kind: KindMarketGroup, MarketGroupID: k.MarketGroupID}
	case store.ImplyDogmaAttribute:
		return Work{Kind: KindDogmaAttribute, DogmaAttributeID: k.AttributeID}
	case store.ImplyDynamic:
		return Work{Kind: KindDynamic, ItemID: k.ItemID, TypeID: k.TypeID}
	default:
		panic(fmt.Sprintf("assetssaga: unknown implied kind %q", k.Kind))
	}
}

func impliedToWorkList(keys []store.ImpliedKey) []Work {
	out := make([]Work, 0, len(keys))
	for _, k := range keys {
		out = append(out, impliedToWork(k))
	}
	return out
}
