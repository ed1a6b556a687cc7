// Package report is a pure, read-only projection over a store: it groups
// every dynamic (mutated) item by resulting type, attaches the base types
// and mutators that produce that resulting type, and augments every
// attribute list with the derived "virtual" attributes from formulas.go.
//
// Generate never mutates the store and is safe to call repeatedly against
// a store that is still being filled in by a running saga — the
// projection is simply over whatever the store currently holds.
package report

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/evesaga/evesaga/internal/ids"
	"github.com/evesaga/evesaga/internal/locationchain"
	"github.com/evesaga/evesaga/internal/mutatorindex"
	"github.com/evesaga/evesaga/internal/store"
)

// AttributeValue is a resolved (attribute, value) pair, real or virtual.
type AttributeValue struct {
	ID    ids.DogmaAttributeId `json:"id"`
	Value float64              `json:"value"`
}

// AttributeRange is a resolved [min,max] bound on a real or virtual
// attribute.
type AttributeRange struct {
	ID  ids.DogmaAttributeId `json:"id"`
	Min float64              `json:"min"`
	Max float64              `json:"max"`
}

// VaryingAttribute names one attribute, real or virtual, that every
// source-mutator group feeding a resulting type carries.
type VaryingAttribute struct {
	ID         ids.DogmaAttributeId `json:"id"`
	Name       string               `json:"name"`
	HighIsGood bool                 `json:"high_is_good"`
}

// DynamicItemData is one resolved dynamic item's location and attributes,
// filtered to its resulting type's varying attributes.
type DynamicItemData struct {
	ItemID       ids.ItemId       `json:"item_id"`
	StationName  string           `json:"station_name"`
	LocationType string           `json:"location_type"`
	LocationName string           `json:"location_name"`
	Attributes   []AttributeValue `json:"attributes"`
}

// SourceMutatorGroup is every dynamic item produced by one (source type,
// mutator type) pair feeding a resulting type, plus the attribute ranges
// that pair can produce.
type SourceMutatorGroup struct {
	SourceTypeID  ids.TypeId        `json:"source_type_id"`
	MutatorTypeID ids.TypeId        `json:"mutator_type_id"`
	Attributes    []AttributeRange  `json:"attributes"`
	Dynamics      []DynamicItemData `json:"dynamics"`
}

// MutatorConcise is a mutator's id, name, and attribute ranges.
type MutatorConcise struct {
	ID         ids.TypeId       `json:"id"`
	Name       string           `json:"name"`
	Attributes []AttributeRange `json:"attributes"`
}

// BaseItemType is one applicable base type feeding a resulting type, with
// its attribute values filtered to the group's varying attributes.
type BaseItemType struct {
	ID         ids.TypeId       `json:"id"`
	Name       string           `json:"name"`
	Attributes []AttributeValue `json:"attributes"`
}

// ResultingGroup carries everything needed to browse one resulting type's
// mutated variants: the base types and mutators that can produce it, every
// observed dynamic instance grouped by the (source, mutator) pair that
// produced it, and the attribute bounds each level implies.
type ResultingGroup struct {
	SourceMutatorGroups []SourceMutatorGroup `json:"source_mutator_groups"`
	BaseTypes           []BaseItemType       `json:"base_types"`
	Mutators            []MutatorConcise     `json:"mutators"`
	VaryingAttributes   []VaryingAttribute   `json:"varying_attributes"`
	MinMaxAttributes    []AttributeRange     `json:"min_max_attributes"`
}

// Report is the full projection, grouped by resulting type name.
type Report struct {
	Data        map[string]ResultingGroup `json:"data"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// Generator projects a store into a Report. It holds no mutable state of
// its own beyond the once-resolved virtual attribute formula table.
type Generator struct {
	store  *store.Store
	chains *locationchain.Resolver

	once     sync.Once
	formulas []resolvedFormula
}

// NewGenerator builds a Generator over st.
func NewGenerator(st *store.Store) *Generator {
	return &Generator{store: st, chains: locationchain.New(st)}
}

// resolveFormulas resolves the virtual attribute formula table against the
// store's dogma attribute names exactly once, the Go analogue of
// initialize_virtual_attributes/OnceLock — scoped to this Generator
// instead of a process-global so that multiple stores in the same process
// (e.g. in tests) never share resolution state.
func (g *Generator) resolveFormulas() []resolvedFormula {
	g.once.Do(func() {
		g.formulas = resolveVirtualFormulas(g.store.AttributeIDByName)
	})
	return g.formulas
}

type sourceMutatorPair struct {
	source  ids.TypeId
	mutator ids.TypeId
}

// Generate projects the current contents of the store into a Report.
// Resulting types whose metadata or base types are not yet present in the
// store are logged and skipped rather than failing the whole projection —
// this keeps Generate safe to call against a store still being filled by
// a running saga.
func (g *Generator) Generate() Report {
	formulas := g.resolveFormulas()

	dynamicsByPair := make(map[sourceMutatorPair][]store.DynamicItem)
	for _, d := range g.store.AllDynamicItems() {
		key := sourceMutatorPair{source: d.SourceTypeID, mutator: d.MutatorTypeID}
		dynamicsByPair[key] = append(dynamicsByPair[key], d)
	}

	resultingToPairs := make(map[ids.TypeId][]sourceMutatorPair)
	for pair := range dynamicsByPair {
		resultingTypeID, ok := g.store.Mutators.ResultingTypeBySourceMutator(pair.source, pair.mutator)
		if !ok {
			log.Warn().Int32("source_type_id", int32(pair.source)).Int32("mutator_type_id", int32(pair.mutator)).
				Msg("report: no resulting type recorded for source/mutator pair, skipping")
			continue
		}
		resultingToPairs[resultingTypeID] = append(resultingToPairs[resultingTypeID], pair)
	}

	data := make(map[string]ResultingGroup, len(resultingToPairs))
	for resultingTypeID, pairs := range resultingToPairs {
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].source != pairs[j].source {
				return pairs[i].source < pairs[j].source
			}
			return pairs[i].mutator < pairs[j].mutator
		})

		resultingType, ok := g.store.GetItemType(resultingTypeID)
		if !ok {
			log.Warn().Int32("resulting_type_id", int32(resultingTypeID)).
				Msg("report: resulting type not found in store, skipping group")
			continue
		}

		group := g.buildResultingGroup(resultingTypeID, pairs, dynamicsByPair, formulas)
		data[resultingType.Name] = group
	}

	r := Report{Data: data, GeneratedAt: time.Now()}
	if err := checkIntegrity(r); err != nil {
		log.Warn().Err(err).Msg("report: integrity self-check failed")
	}
	return r
}

func (g *Generator) buildResultingGroup(
	resultingTypeID ids.TypeId,
	pairs []sourceMutatorPair,
	dynamicsByPair map[sourceMutatorPair][]store.DynamicItem,
	formulas []resolvedFormula,
) ResultingGroup {
	varyingAttributes, varyingIDs := g.varyingAttributesFor(pairs, formulas)

	group := ResultingGroup{
		BaseTypes:         g.baseTypesFor(resultingTypeID, varyingIDs, formulas),
		Mutators:          g.mutatorsFor(resultingTypeID, formulas),
		VaryingAttributes: varyingAttributes,
		MinMaxAttributes:  g.minMaxAttributesFor(resultingTypeID, formulas),
	}

	for _, pair := range pairs {
		group.SourceMutatorGroups = append(group.SourceMutatorGroups,
			g.sourceMutatorGroupFor(pair, dynamicsByPair[pair], varyingIDs, formulas))
	}
	return group
}

// varyingAttributesFor intersects the attribute ids every mutator in
// pairs can vary, then appends the virtual attributes computable from
// that intersection.
func (g *Generator) varyingAttributesFor(pairs []sourceMutatorPair, formulas []resolvedFormula) ([]VaryingAttribute, map[ids.DogmaAttributeId]struct{}) {
	var sets []map[ids.DogmaAttributeId]struct{}
	for _, pair := range pairs {
		attrs, ok := g.store.Mutators.AttributesByMutator(pair.mutator)
		if !ok {
			continue
		}
		set := make(map[ids.DogmaAttributeId]struct{}, len(attrs))
		for id := range attrs {
			set[id] = struct{}{}
		}
		sets = append(sets, set)
	}

	intersection := intersectAttributeSets(sets)

	sortedIDs := make([]ids.DogmaAttributeId, 0, len(intersection))
	for id := range intersection {
		sortedIDs = append(sortedIDs, id)
	}
	sort.Slice(sortedIDs, func(i, j int) bool { return sortedIDs[i] < sortedIDs[j] })

	varying := make([]VaryingAttribute, 0, len(sortedIDs))
	for _, id := range sortedIDs {
		attr, ok := g.store.GetDogmaAttribute(id)
		name := attr.Name
		if !ok || name == "" {
			name = fmt.Sprintf("attribute_%d", id)
		}
		varying = append(varying, VaryingAttribute{ID: id, Name: name, HighIsGood: attr.HighIsGood})
	}
	varying = appendVirtualVaryingAttributes(formulas, varying)

	varyingIDs := make(map[ids.DogmaAttributeId]struct{}, len(varying))
	for _, v := range varying {
		varyingIDs[v.ID] = struct{}{}
	}
	return varying, varyingIDs
}

func intersectAttributeSets(sets []map[ids.DogmaAttributeId]struct{}) map[ids.DogmaAttributeId]struct{} {
	if len(sets) == 0 {
		return map[ids.DogmaAttributeId]struct{}{}
	}
	out := make(map[ids.DogmaAttributeId]struct{}, len(sets[0]))
	for id := range sets[0] {
		out[id] = struct{}{}
	}
	for _, s := range sets[1:] {
		for id := range out {
			if _, ok := s[id]; !ok {
				delete(out, id)
			}
		}
	}
	return out
}

func (g *Generator) baseTypesFor(resultingTypeID ids.TypeId, varyingIDs map[ids.DogmaAttributeId]struct{}, formulas []resolvedFormula) []BaseItemType {
	typeIDs := g.store.Mutators.ApplicableTypesByResultingType(resultingTypeID)
	out := make([]BaseItemType, 0, len(typeIDs))
	for _, typeID := range typeIDs {
		t, ok := g.store.GetItemType(typeID)
		if !ok {
			log.Warn().Int32("type_id", int32(typeID)).Msg("report: base type not found in store")
			continue
		}

		var attrs []AttributeValue
		for _, av := range t.DogmaAttributes {
			if _, ok := varyingIDs[av.AttributeID]; ok {
				attrs = append(attrs, AttributeValue{ID: av.AttributeID, Value: av.Value})
			}
		}
		attrs = appendVirtualAttributeValues(formulas, attrs)

		out = append(out, BaseItemType{ID: typeID, Name: t.Name, Attributes: attrs})
	}
	return out
}

func (g *Generator) mutatorsFor(resultingTypeID ids.TypeId, formulas []resolvedFormula) []MutatorConcise {
	entries := g.store.Mutators.MutatorsByResultingType(resultingTypeID)
	out := make([]MutatorConcise, 0, len(entries))
	for _, entry := range entries {
		ranges := rangesFromMap(entry.Attributes)
		ranges = appendVirtualAttributeRanges(formulas, ranges)

		name := fmt.Sprintf("type_%d", entry.MutatorTypeID)
		if t, ok := g.store.GetItemType(entry.MutatorTypeID); ok {
			name = t.Name
		}

		out = append(out, MutatorConcise{ID: entry.MutatorTypeID, Name: name, Attributes: ranges})
	}
	return out
}

func (g *Generator) minMaxAttributesFor(resultingTypeID ids.TypeId, formulas []resolvedFormula) []AttributeRange {
	baseValue := func(source ids.TypeId, attr ids.DogmaAttributeId) (float64, bool) {
		t, ok := g.store.GetItemType(source)
		if !ok {
			return 0, false
		}
		for _, av := range t.DogmaAttributes {
			if av.AttributeID == attr {
				return av.Value, true
			}
		}
		return 0, false
	}

	raw := g.store.Mutators.MinMaxAttributesByResultingType(resultingTypeID, baseValue)
	ranges := rangesFromMap(raw)
	return appendVirtualAttributeRanges(formulas, ranges)
}

func (g *Generator) sourceMutatorGroupFor(
	pair sourceMutatorPair,
	dynamics []store.DynamicItem,
	varyingIDs map[ids.DogmaAttributeId]struct{},
	formulas []resolvedFormula,
) SourceMutatorGroup {
	group := SourceMutatorGroup{SourceTypeID: pair.source, MutatorTypeID: pair.mutator}

	for _, d := range dynamics {
		group.Dynamics = append(group.Dynamics, g.dynamicItemDataFor(d, varyingIDs, formulas))
	}

	sourceType, ok := g.store.GetItemType(pair.source)
	mutatorRanges, hasRanges := g.store.Mutators.AttributesByMutator(pair.mutator)
	if ok && hasRanges {
		var ranges []AttributeRange
		for _, av := range sourceType.DogmaAttributes {
			r, present := mutatorRanges[av.AttributeID]
			if !present {
				continue
			}
			v1 := av.Value * r.Min
			v2 := av.Value * r.Max
			lo, hi := v1, v2
			if lo > hi {
				lo, hi = hi, lo
			}
			ranges = append(ranges, AttributeRange{ID: av.AttributeID, Min: lo, Max: hi})
		}
		group.Attributes = appendVirtualAttributeRanges(formulas, ranges)
	}

	return group
}

func (g *Generator) dynamicItemDataFor(d store.DynamicItem, varyingIDs map[ids.DogmaAttributeId]struct{}, formulas []resolvedFormula) DynamicItemData {
	var attrs []AttributeValue
	for _, av := range d.DogmaAttributes {
		if _, ok := varyingIDs[av.AttributeID]; ok {
			attrs = append(attrs, AttributeValue{ID: av.AttributeID, Value: av.Value})
		}
	}
	attrs = appendVirtualAttributeValues(formulas, attrs)

	stationName, locationType, locationName := "Unknown", "Unknown", "Unknown"
	if asset, ok := g.store.GetAssetItem(d.ItemID); ok {
		chain := g.chains.Resolve(asset)
		stationName = chain.StationName
		locationType = string(chain.TerminalLocationType)
		locationName = chain.ChainLabel
	}

	return DynamicItemData{
		ItemID:       d.ItemID,
		StationName:  stationName,
		LocationType: locationType,
		LocationName: locationName,
		Attributes:   attrs,
	}
}

func rangesFromMap(m map[ids.DogmaAttributeId]mutatorindex.AttributeRange) []AttributeRange {
	attrIDs := make([]ids.DogmaAttributeId, 0, len(m))
	for id := range m {
		attrIDs = append(attrIDs, id)
	}
	sort.Slice(attrIDs, func(i, j int) bool { return attrIDs[i] < attrIDs[j] })

	out := make([]AttributeRange, 0, len(attrIDs))
	for _, id := range attrIDs {
		r := m[id]
		out = append(out, AttributeRange{ID: id, Min: r.Min, Max: r.Max})
	}
	return out
}
