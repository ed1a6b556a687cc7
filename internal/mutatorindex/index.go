// Package mutatorindex maintains the source-type × mutator-type →
// resulting-type relation, its two reverse views, and the per-mutator
// attribute range table that the report projector multiplies against
// base item attributes.
package mutatorindex

import (
	"sort"
	"sync"

	"github.com/evesaga/evesaga/internal/ids"
)

// AttributeRange is a normalized [min,max] bound.
type AttributeRange struct {
	Min float64
	Max float64
}

// Normalized returns r with Min<=Max guaranteed.
func (r AttributeRange) Normalized() AttributeRange {
	if r.Min > r.Max {
		return AttributeRange{Min: r.Max, Max: r.Min}
	}
	return r
}

// Mutator describes one catalogue entry's attribute ranges, keyed by
// mutator TypeId.
type Mutator struct {
	TypeID     ids.TypeId
	Attributes map[ids.DogmaAttributeId]AttributeRange
}

// Index is the three derived maps plus the attribute-range table.
// Insertion is monotone: the first writer for a given key wins, mirroring
// the teacher domain's "or_insert"/"or_default" semantics — later catalogue
// refreshes never clobber an already-recorded relation.
type Index struct {
	mu sync.RWMutex

	// source -> mutator -> resulting
	forward map[ids.TypeId]map[ids.TypeId]ids.TypeId
	// resulting -> set<source>
	reverseCoarse map[ids.TypeId]map[ids.TypeId]struct{}
	// resulting -> mutator -> set<source>
	reverseFine map[ids.TypeId]map[ids.TypeId]map[ids.TypeId]struct{}
	// mutator -> attr -> range
	attributes map[ids.TypeId]map[ids.DogmaAttributeId]AttributeRange
}

// New builds an empty index.
func New() *Index {
	return &Index{
		forward:       make(map[ids.TypeId]map[ids.TypeId]ids.TypeId),
		reverseCoarse: make(map[ids.TypeId]map[ids.TypeId]struct{}),
		reverseFine:   make(map[ids.TypeId]map[ids.TypeId]map[ids.TypeId]struct{}),
		attributes:    make(map[ids.TypeId]map[ids.DogmaAttributeId]AttributeRange),
	}
}

// InputOutput is one (resulting_type, applicable_source_types) pair from a
// mutator catalogue entry.
type InputOutput struct {
	ResultingTypeID ids.TypeId
	SourceTypeIDs   []ids.TypeId
}

// AddMutator records a mutator's attribute ranges and its input/output
// mapping. Existing (source, mutator) relations are left untouched —
// first writer wins.
func (idx *Index) AddMutator(mutatorTypeID ids.TypeId, attrs map[ids.DogmaAttributeId]AttributeRange, mapping []InputOutput) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.attributes[mutatorTypeID]; !ok {
		normalized := make(map[ids.DogmaAttributeId]AttributeRange, len(attrs))
		for attr, r := range attrs {
			normalized[attr] = r.Normalized()
		}
		idx.attributes[mutatorTypeID] = normalized
	}

	for _, io := range mapping {
		for _, sourceTypeID := range io.SourceTypeIDs {
			idx.addRelation(sourceTypeID, mutatorTypeID, io.ResultingTypeID)
		}
	}
}

func (idx *Index) addRelation(source, mutator, resulting ids.TypeId) {
	bySource, ok := idx.forward[source]
	if !ok {
		bySource = make(map[ids.TypeId]ids.TypeId)
		idx.forward[source] = bySource
	}
	if existing, exists := bySource[mutator]; exists {
		if existing != resulting {
			return // first writer wins; a conflicting relation is dropped whole
		}
	} else {
		bySource[mutator] = resulting
	}

	coarse, ok := idx.reverseCoarse[resulting]
	if !ok {
		coarse = make(map[ids.TypeId]struct{})
		idx.reverseCoarse[resulting] = coarse
	}
	coarse[source] = struct{}{}

	byMutator, ok := idx.reverseFine[resulting]
	if !ok {
		byMutator = make(map[ids.TypeId]map[ids.TypeId]struct{})
		idx.reverseFine[resulting] = byMutator
	}
	sources, ok := byMutator[mutator]
	if !ok {
		sources = make(map[ids.TypeId]struct{})
		byMutator[mutator] = sources
	}
	sources[source] = struct{}{}
}

// ResultingTypeBySourceMutator implements get_resulting_type_by_source_mutator.
func (idx *Index) ResultingTypeBySourceMutator(source, mutator ids.TypeId) (ids.TypeId, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	byMutator, ok := idx.forward[source]
	if !ok {
		return 0, false
	}
	resulting, ok := byMutator[mutator]
	return resulting, ok
}

// ApplicableTypesByResultingType implements get_applicable_types_by_resulting_type.
func (idx *Index) ApplicableTypesByResultingType(resulting ids.TypeId) []ids.TypeId {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	set, ok := idx.reverseCoarse[resulting]
	if !ok {
		return nil
	}
	return sortedTypeIDs(set)
}

// MutatorEntry is one row of get_mutators_by_resulting_type: the mutator
// id, its attribute ranges, and the source types it applies to.
type MutatorEntry struct {
	MutatorTypeID ids.TypeId
	Attributes    map[ids.DogmaAttributeId]AttributeRange
	Sources       []ids.TypeId
}

// MutatorsByResultingType implements get_mutators_by_resulting_type.
func (idx *Index) MutatorsByResultingType(resulting ids.TypeId) []MutatorEntry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	byMutator, ok := idx.reverseFine[resulting]
	if !ok {
		return nil
	}

	mutatorIDs := make([]ids.TypeId, 0, len(byMutator))
	for m := range byMutator {
		mutatorIDs = append(mutatorIDs, m)
	}
	sort.Slice(mutatorIDs, func(i, j int) bool { return mutatorIDs[i] < mutatorIDs[j] })

	entries := make([]MutatorEntry, 0, len(mutatorIDs))
	for _, m := range mutatorIDs {
		entries = append(entries, MutatorEntry{
			MutatorTypeID: m,
			Attributes:    idx.attributes[m],
			Sources:       sortedTypeIDs(byMutator[m]),
		})
	}
	return entries
}

// AttributesByMutator implements get_attributes_by_mutator_type_id.
func (idx *Index) AttributesByMutator(mutator ids.TypeId) (map[ids.DogmaAttributeId]AttributeRange, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	attrs, ok := idx.attributes[mutator]
	return attrs, ok
}

// MinMaxAttributesByResultingType implements
// get_min_max_attributes_by_resulting_type: for every (source, mutator)
// pair mapping to resulting, multiply the mutator's attribute range by the
// source's base value (supplied by baseValue) and union coordinate-wise
// across all pairs.
func (idx *Index) MinMaxAttributesByResultingType(resulting ids.TypeId, baseValue func(source ids.TypeId, attr ids.DogmaAttributeId) (float64, bool)) map[ids.DogmaAttributeId]AttributeRange {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	byMutator, ok := idx.reverseFine[resulting]
	if !ok {
		return nil
	}

	out := make(map[ids.DogmaAttributeId]AttributeRange)
	for mutator, sources := range byMutator {
		attrs := idx.attributes[mutator]
		for source := range sources {
			for attr, r := range attrs {
				v, ok := baseValue(source, attr)
				if !ok {
					continue
				}
				pair := AttributeRange{Min: r.Min * v, Max: r.Max * v}.Normalized()
				if existing, ok := out[attr]; ok {
					out[attr] = AttributeRange{
						Min: minF(existing.Min, pair.Min),
						Max: maxF(existing.Max, pair.Max),
					}
				} else {
					out[attr] = pair
				}
			}
		}
	}
	return out
}

func sortedTypeIDs(set map[ids.TypeId]struct{}) []ids.TypeId {
	out := make([]ids.TypeId, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
