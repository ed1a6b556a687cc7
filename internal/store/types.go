package store

import "github.com/evesaga/evesaga/internal/ids"

// AttributeValue is one (attribute, value) pair on an item type or dynamic
// item.
type AttributeValue struct {
	AttributeID ids.DogmaAttributeId
	Value       float64
}

// LocationType distinguishes what an asset's LocationID refers to.
type LocationType string

const (
	LocationStation LocationType = "station"
	LocationItem    LocationType = "item"
	LocationOther   LocationType = "other"
)

// AssetItem is a concrete item instance held by a character.
type AssetItem struct {
	ItemID       ids.ItemId
	TypeID       ids.TypeId
	LocationID   int64
	LocationType LocationType
	Quantity     int64
	Flags        int32
}

// AssetName is the player-assigned name of an item instance.
type AssetName struct {
	ItemID ids.ItemId
	Name   string
}

// Station is a terminal node in every location chain.
type Station struct {
	StationID ids.StationId
	Name      string
	SystemID  int64
}

// ItemType is an item class ("type" in game terms).
type ItemType struct {
	TypeID          ids.TypeId
	Name            string
	MarketGroupID   *ids.MarketGroupId
	DogmaAttributes []AttributeValue
}

// MarketGroup is a node in the market-group hierarchy.
type MarketGroup struct {
	MarketGroupID ids.MarketGroupId
	Name          string
	ParentGroupID *ids.MarketGroupId
	MemberTypes   []ids.TypeId
}

// DogmaAttribute is dogma attribute metadata.
type DogmaAttribute struct {
	AttributeID ids.DogmaAttributeId
	Name        string
	HighIsGood  bool
}

// DynamicItem is an item instance whose attributes were perturbed from a
// base type by a mutator.
type DynamicItem struct {
	ItemID          ids.ItemId
	SourceTypeID    ids.TypeId
	MutatorTypeID   ids.TypeId
	DogmaAttributes []AttributeValue
}

// MarketOrder is one resting buy or sell order in a region's order book.
// Unlike the asset entities above, order books are refreshed wholesale by
// internal/marketsaga rather than merged into the implied-key store.
type MarketOrder struct {
	OrderID   int64
	TypeID    ids.TypeId
	RegionID  ids.RegionId
	IsBuy     bool
	Price     float64
	Volume    int64
	StationID ids.StationId
}
