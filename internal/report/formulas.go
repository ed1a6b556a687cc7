package report

import "github.com/evesaga/evesaga/internal/ids"

// Reserved negative dogma attribute ids for derived ("virtual") attributes
// that have no row in the static-data attribute table. Real attribute ids
// are always positive.
const (
	VirtualArmorRepairEfficiencyID    ids.DogmaAttributeId = -1
	VirtualArmorRepairSpeedID         ids.DogmaAttributeId = -2
	VirtualShieldRepairEfficiencyID   ids.DogmaAttributeId = -3
	VirtualShieldRepairSpeedID        ids.DogmaAttributeId = -4
	VirtualDPSModifierID              ids.DogmaAttributeId = -5
	VirtualMissileDPSModifierID       ids.DogmaAttributeId = -6
	VirtualNeutralizationEfficiencyID ids.DogmaAttributeId = -7
)

// virtualFormula names a derived attribute as a ratio of named real
// attributes, resolved to ids once dogma attribute metadata is available.
type virtualFormula struct {
	virtualID        ids.DogmaAttributeId
	name             string
	highIsGood       bool
	numeratorNames   []string
	denominatorNames []string
}

// virtualFormulaTable is the fixed catalogue of derived attributes this
// report computes. Every one is a product-of-numerators over
// product-of-denominators.
var virtualFormulaTable = []virtualFormula{
	{
		virtualID:        VirtualArmorRepairEfficiencyID,
		name:             "Armor Repair Efficiency",
		highIsGood:       true,
		numeratorNames:   []string{"Armor Hitpoints Repaired"},
		denominatorNames: []string{"Activation Cost"},
	},
	{
		virtualID:        VirtualArmorRepairSpeedID,
		name:             "Armor Repair Speed",
		highIsGood:       true,
		numeratorNames:   []string{"Armor Hitpoints Repaired"},
		denominatorNames: []string{"Activation time / duration"},
	},
	{
		virtualID:        VirtualShieldRepairEfficiencyID,
		name:             "Shield Repair Efficiency",
		highIsGood:       true,
		numeratorNames:   []string{"Shield Bonus"},
		denominatorNames: []string{"Activation Cost"},
	},
	{
		virtualID:        VirtualShieldRepairSpeedID,
		name:             "Shield Repair Speed",
		highIsGood:       true,
		numeratorNames:   []string{"Shield Bonus"},
		denominatorNames: []string{"Activation time / duration"},
	},
	{
		virtualID:        VirtualDPSModifierID,
		name:             "DPS Modifier",
		highIsGood:       true,
		numeratorNames:   []string{"Damage Modifier"},
		denominatorNames: []string{"rate of fire bonus"},
	},
	{
		virtualID:        VirtualMissileDPSModifierID,
		name:             "Missile DPS Modifier",
		highIsGood:       true,
		numeratorNames:   []string{"Missile Damage Bonus"},
		denominatorNames: []string{"rate of fire bonus"},
	},
	{
		virtualID:        VirtualNeutralizationEfficiencyID,
		name:             "Neutralization Efficiency",
		highIsGood:       true,
		numeratorNames:   []string{"Neutralization Amount"},
		denominatorNames: []string{"Activation Cost"},
	},
}

// resolvedFormula is a virtualFormula with its attribute names resolved to
// ids against one store's dogma attribute table.
type resolvedFormula struct {
	virtualID      ids.DogmaAttributeId
	name           string
	highIsGood     bool
	numeratorIDs   []ids.DogmaAttributeId
	denominatorIDs []ids.DogmaAttributeId
}

// resolveVirtualFormulas resolves every table entry's attribute names via
// resolveID. A name that fails to resolve is simply dropped from that
// formula's operand list, which makes the formula permanently
// uncomputable (its "all operands present" check can never succeed)
// rather than panicking the whole report — static data for a given
// server cluster occasionally lacks an attribute name.
func resolveVirtualFormulas(resolveID func(name string) (ids.DogmaAttributeId, bool)) []resolvedFormula {
	resolved := make([]resolvedFormula, 0, len(virtualFormulaTable))
	for _, f := range virtualFormulaTable {
		resolved = append(resolved, resolvedFormula{
			virtualID:      f.virtualID,
			name:           f.name,
			highIsGood:     f.highIsGood,
			numeratorIDs:   resolveNames(resolveID, f.numeratorNames),
			denominatorIDs: resolveNames(resolveID, f.denominatorNames),
		})
	}
	return resolved
}

func resolveNames(resolveID func(string) (ids.DogmaAttributeId, bool), names []string) []ids.DogmaAttributeId {
	out := make([]ids.DogmaAttributeId, 0, len(names))
	for _, name := range names {
		if id, ok := resolveID(name); ok {
			out = append(out, id)
		}
	}
	return out
}

// appendVirtualAttributeValues computes every formula whose numerator and
// denominator attributes are all present in values (a non-zero
// denominator required), appending the resulting virtual attribute.
func appendVirtualAttributeValues(formulas []resolvedFormula, values []AttributeValue) []AttributeValue {
	for _, f := range formulas {
		numerator, okNum := productAttributeValue(values, f.numeratorIDs)
		denominator, okDen := productAttributeValue(values, f.denominatorIDs)
		if !okNum || !okDen || denominator == 0 {
			continue
		}
		values = append(values, AttributeValue{ID: f.virtualID, Value: numerator / denominator})
	}
	return values
}

func productAttributeValue(values []AttributeValue, attrIDs []ids.DogmaAttributeId) (float64, bool) {
	if len(attrIDs) == 0 {
		return 0, false
	}
	product := 1.0
	for _, id := range attrIDs {
		v, ok := findAttributeValue(values, id)
		if !ok {
			return 0, false
		}
		product *= v
	}
	return product, true
}

func findAttributeValue(values []AttributeValue, id ids.DogmaAttributeId) (float64, bool) {
	for _, v := range values {
		if v.ID == id {
			return v.Value, true
		}
	}
	return 0, false
}

// appendVirtualAttributeRanges is the min/max analogue of
// appendVirtualAttributeValues: it multiplies operand ranges coordinate-
// wise and normalizes min<=max on the result.
func appendVirtualAttributeRanges(formulas []resolvedFormula, ranges []AttributeRange) []AttributeRange {
	for _, f := range formulas {
		minNum, maxNum, okNum := productAttributeRange(ranges, f.numeratorIDs)
		minDen, maxDen, okDen := productAttributeRange(ranges, f.denominatorIDs)
		if !okNum || !okDen || minDen == 0 || maxDen == 0 {
			continue
		}
		v1 := minNum / maxDen
		v2 := maxNum / minDen
		lo, hi := v1, v2
		if lo > hi {
			lo, hi = hi, lo
		}
		ranges = append(ranges, AttributeRange{ID: f.virtualID, Min: lo, Max: hi})
	}
	return ranges
}

func productAttributeRange(ranges []AttributeRange, attrIDs []ids.DogmaAttributeId) (min, max float64, ok bool) {
	if len(attrIDs) == 0 {
		return 0, 0, false
	}
	min, max = 1.0, 1.0
	for _, id := range attrIDs {
		r, found := findAttributeRange(ranges, id)
		if !found {
			return 0, 0, false
		}
		min *= r.Min
		max *= r.Max
	}
	return min, max, true
}

func findAttributeRange(ranges []AttributeRange, id ids.DogmaAttributeId) (AttributeRange, bool) {
	for _, r := range ranges {
		if r.ID == id {
			return r, true
		}
	}
	return AttributeRange{}, false
}

// appendVirtualVaryingAttributes appends a VaryingAttribute entry for
// every formula whose operand attributes are all already varying.
func appendVirtualVaryingAttributes(formulas []resolvedFormula, attrs []VaryingAttribute) []VaryingAttribute {
	for _, f := range formulas {
		if !allVarying(attrs, f.numeratorIDs) || !allVarying(attrs, f.denominatorIDs) {
			continue
		}
		attrs = append(attrs, VaryingAttribute{ID: f.virtualID, Name: f.name, HighIsGood: f.highIsGood})
	}
	return attrs
}

func allVarying(attrs []VaryingAttribute, attrIDs []ids.DogmaAttributeId) bool {
	if len(attrIDs) == 0 {
		return false
	}
	for _, id := range attrIDs {
		found := false
		for _, a := range attrs {
			if a.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
