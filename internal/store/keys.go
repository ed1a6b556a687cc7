package store

import "github.com/evesaga/evesaga/internal/ids"

// ImpliedKind tags what an ImpliedKey references. The saga processor
// translates these into its own work types; the store has no knowledge of
// work types or the saga engine.
type ImpliedKind string

const (
	ImplyStation        ImpliedKind = "station"
	ImplyType           ImpliedKind = "type"
	ImplyMarketGroup    ImpliedKind = "market-group"
	ImplyDogmaAttribute ImpliedKind = "dogma-attribute"
	ImplyDynamic        ImpliedKind = "dynamic"
)

// ImpliedKey is one newly-surfaced dependency-graph reference returned by
// an Add* call — the mechanism by which the store discovers new work.
type ImpliedKey struct {
	Kind          ImpliedKind
	StationID     ids.StationId
	TypeID        ids.TypeId
	MarketGroupID ids.MarketGroupId
	AttributeID   ids.DogmaAttributeId
	ItemID        ids.ItemId // only set for ImplyDynamic
}
