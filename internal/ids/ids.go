// Package ids defines the semantic identifier types shared across the
// asset-resolution saga. Each is a distinct integer kind so that, for
// example, a StationId can never be passed where a TypeId is expected
// without an explicit conversion.
package ids

// CharacterId identifies a registered game character.
type CharacterId uint64

// ItemId identifies a concrete item instance (an asset, a container).
type ItemId int64

// TypeId identifies an item class ("type" in EVE terms).
type TypeId int32

// RegionId identifies a market region.
type RegionId int64

// StationId identifies a hosting station.
type StationId int32

// MarketGroupId identifies a node in the market-group hierarchy.
type MarketGroupId int32

// DogmaAttributeId identifies a dogma attribute. Real ids are positive;
// virtual (derived) attributes use reserved negative ids — see
// internal/report.
type DogmaAttributeId int32
