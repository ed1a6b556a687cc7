package mutatorindex

import "github.com/evesaga/evesaga/internal/ids"

// Snapshot is a flat, gob-friendly copy of an Index's three derived maps
// and attribute-range table, used by internal/snapshot to persist and
// restore the full mutator relation alongside the asset store.
type Snapshot struct {
	Forward       map[ids.TypeId]map[ids.TypeId]ids.TypeId
	ReverseCoarse map[ids.TypeId][]ids.TypeId
	ReverseFine   map[ids.TypeId]map[ids.TypeId][]ids.TypeId
	Attributes    map[ids.TypeId]map[ids.DogmaAttributeId]AttributeRange
}

// Snapshot copies idx's internal maps into a flat Snapshot value; set
// members are sorted into slices for deterministic encoding.
func (idx *Index) Snapshot() Snapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	snap := Snapshot{
		Forward:       make(map[ids.TypeId]map[ids.TypeId]ids.TypeId, len(idx.forward)),
		ReverseCoarse: make(map[ids.TypeId][]ids.TypeId, len(idx.reverseCoarse)),
		ReverseFine:   make(map[ids.TypeId]map[ids.TypeId][]ids.TypeId, len(idx.reverseFine)),
		Attributes:    make(map[ids.TypeId]map[ids.DogmaAttributeId]AttributeRange, len(idx.attributes)),
	}

	for source, byMutator := range idx.forward {
		copied := make(map[ids.TypeId]ids.TypeId, len(byMutator))
		for mutator, resulting := range byMutator {
			copied[mutator] = resulting
		}
		snap.Forward[source] = copied
	}
	for resulting, sources := range idx.reverseCoarse {
		snap.ReverseCoarse[resulting] = sortedTypeIDs(sources)
	}
	for resulting, byMutator := range idx.reverseFine {
		copied := make(map[ids.TypeId][]ids.TypeId, len(byMutator))
		for mutator, sources := range byMutator {
			copied[mutator] = sortedTypeIDs(sources)
		}
		snap.ReverseFine[resulting] = copied
	}
	for mutator, attrs := range idx.attributes {
		copied := make(map[ids.DogmaAttributeId]AttributeRange, len(attrs))
		for attr, r := range attrs {
			copied[attr] = r
		}
		snap.Attributes[mutator] = copied
	}
	return snap
}

// RestoreIndex rebuilds an Index from a Snapshot captured by Snapshot().
func RestoreIndex(snap Snapshot) *Index {
	idx := New()

	for source, byMutator := range snap.Forward {
		copied := make(map[ids.TypeId]ids.TypeId, len(byMutator))
		for mutator, resulting := range byMutator {
			copied[mutator] = resulting
		}
		idx.forward[source] = copied
	}
	for resulting, sources := range snap.ReverseCoarse {
		set := make(map[ids.TypeId]struct{}, len(sources))
		for _, s := range sources {
			set[s] = struct{}{}
		}
		idx.reverseCoarse[resulting] = set
	}
	for resulting, byMutator := range snap.ReverseFine {
		copied := make(map[ids.TypeId]map[ids.TypeId]struct{}, len(byMutator))
		for mutator, sources := range byMutator {
			set := make(map[ids.TypeId]struct{}, len(sources))
			for _, s := range sources {
				set[s] = struct{}{}
			}
			copied[mutator] = set
		}
		idx.reverseFine[resulting] = copied
	}
	for mutator, attrs := range snap.Attributes {
		copied := make(map[ids.DogmaAttributeId]AttributeRange, len(attrs))
		for attr, r := range attrs {
			copied[attr] = r
		}
		idx.attributes[mutator] = copied
	}
	return idx
}
