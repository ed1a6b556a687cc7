package report

import "fmt"

// checkIntegrity re-derives the consistency invariants every ResultingGroup
// should satisfy and returns the first violation found. A failure here is
// logged as a warning by Generate, never surfaced as an error: the report
// is still usable, just possibly inconsistent with itself, usually because
// a mutator's attribute table diverged from the catalogue that produced a
// given dynamic item.
func checkIntegrity(r Report) error {
	for name, group := range r.Data {
		varyingIDs := make(map[int32]struct{}, len(group.VaryingAttributes))
		for _, a := range group.VaryingAttributes {
			if _, dup := varyingIDs[int32(a.ID)]; dup {
				return fmt.Errorf("duplicate varying attribute for item group %s", name)
			}
			varyingIDs[int32(a.ID)] = struct{}{}
		}

		baseTypeIDs := make(map[int32]struct{}, len(group.BaseTypes))
		for _, t := range group.BaseTypes {
			if _, dup := baseTypeIDs[int32(t.ID)]; dup {
				return fmt.Errorf("duplicate base type for item group %s", name)
			}
			baseTypeIDs[int32(t.ID)] = struct{}{}
			if err := attributeSetMatches(t.Attributes, varyingIDs); err != nil {
				return fmt.Errorf("attribute mismatch for type %s/%d: %w", name, t.ID, err)
			}
		}

		mutatorIDs := make(map[int32]struct{}, len(group.Mutators))
		for _, m := range group.Mutators {
			if _, dup := mutatorIDs[int32(m.ID)]; dup {
				return fmt.Errorf("duplicate mutator for item group %s", name)
			}
			mutatorIDs[int32(m.ID)] = struct{}{}
			if err := attributeRangeSetMatches(m.Attributes, varyingIDs); err != nil {
				return fmt.Errorf("attribute mismatch for mutator %s/%d: %w", name, m.ID, err)
			}
		}

		if err := attributeRangeSetMatches(group.MinMaxAttributes, varyingIDs); err != nil {
			return fmt.Errorf("attribute mismatch for min_max attributes %s: %w", name, err)
		}

		for _, smg := range group.SourceMutatorGroups {
			if _, ok := baseTypeIDs[int32(smg.SourceTypeID)]; !ok {
				return fmt.Errorf("source type %d not found in base types for item group %s", smg.SourceTypeID, name)
			}
			if _, ok := mutatorIDs[int32(smg.MutatorTypeID)]; !ok {
				return fmt.Errorf("mutator type %d not found in mutators for item group %s", smg.MutatorTypeID, name)
			}
			if err := attributeRangeSetMatches(smg.Attributes, varyingIDs); err != nil {
				return fmt.Errorf("attribute mismatch for source mutator group %s/%d.%d: %w", name, smg.SourceTypeID, smg.MutatorTypeID, err)
			}
			for _, d := range smg.Dynamics {
				if err := attributeSetMatches(d.Attributes, varyingIDs); err != nil {
					return fmt.Errorf("attribute mismatch for dynamic %s/%d.%d/%d: %w", name, smg.SourceTypeID, smg.MutatorTypeID, d.ItemID, err)
				}
			}
		}
	}
	return nil
}

func attributeSetMatches(attrs []AttributeValue, want map[int32]struct{}) error {
	got := make(map[int32]struct{}, len(attrs))
	for _, a := range attrs {
		got[int32(a.ID)] = struct{}{}
	}
	return setsEqual(got, want)
}

func attributeRangeSetMatches(attrs []AttributeRange, want map[int32]struct{}) error {
	got := make(map[int32]struct{}, len(attrs))
	for _, a := range attrs {
		got[int32(a.ID)] = struct{}{}
	}
	return setsEqual(got, want)
}

func setsEqual(got, want map[int32]struct{}) error {
	if len(got) != len(want) {
		return fmt.Errorf("attribute set size mismatch: got %d, want %d", len(got), len(want))
	}
	for id := range want {
		if _, ok := got[id]; !ok {
			return fmt.Errorf("missing attribute %d", id)
		}
	}
	return nil
}
