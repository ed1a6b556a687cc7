package report

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evesaga/evesaga/internal/ids"
	"github.com/evesaga/evesaga/internal/mutatorindex"
	"github.com/evesaga/evesaga/internal/store"
)

const (
	attrArmorHP     = ids.DogmaAttributeId(10)
	attrActivation  = ids.DogmaAttributeId(20)
	typeRifter      = ids.TypeId(100)
	typeMutaplasmid = ids.TypeId(900)
	typeMutatedFit  = ids.TypeId(2000)
)

func buildTestStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New()

	st.AddDogmaAttribute(store.DogmaAttribute{AttributeID: attrArmorHP, Name: "Armor Hitpoints Repaired", HighIsGood: true})
	st.AddDogmaAttribute(store.DogmaAttribute{AttributeID: attrActivation, Name: "Activation Cost", HighIsGood: false})

	st.AddItemType(store.ItemType{
		TypeID: typeRifter,
		Name:   "Rifter",
		DogmaAttributes: []store.AttributeValue{
			{AttributeID: attrArmorHP, Value: 1000},
			{AttributeID: attrActivation, Value: 5},
		},
	})
	st.AddItemType(store.ItemType{TypeID: typeMutaplasmid, Name: "Simple Armor Mutaplasmid"})
	st.AddItemType(store.ItemType{TypeID: typeMutatedFit, Name: "Mutated Rifter"})

	st.Mutators.AddMutator(typeMutaplasmid, map[ids.DogmaAttributeId]mutatorindex.AttributeRange{
		attrArmorHP:    {Min: 0.8, Max: 1.2},
		attrActivation: {Min: 0.9, Max: 1.1},
	}, []mutatorindex.InputOutput{
		{ResultingTypeID: typeMutatedFit, SourceTypeIDs: []ids.TypeId{typeRifter}},
	})

	st.AddStation(store.Station{StationID: 60003760, Name: "Jita IV - Moon 4"})
	st.AddAssetItem(store.AssetItem{
		ItemID: 5000, TypeID: typeMutatedFit, LocationID: 60003760,
		LocationType: store.LocationStation, Quantity: 1,
	})
	st.AddAssetName(store.AssetName{ItemID: 5000, Name: "My Rifter Fit"})

	st.AddDynamicItem(store.DynamicItem{
		ItemID: 5000, SourceTypeID: typeRifter, MutatorTypeID: typeMutaplasmid,
		DogmaAttributes: []store.AttributeValue{
			{AttributeID: attrArmorHP, Value: 1100},
			{AttributeID: attrActivation, Value: 5.2},
		},
	})

	return st
}

func TestGenerate_GroupsBySingleResultingType(t *testing.T) {
	st := buildTestStore(t)
	g := NewGenerator(st)

	report := g.Generate()
	require.Contains(t, report.Data, "Mutated Rifter")
	require.Len(t, report.Data, 1)
}

func TestGenerate_VaryingAttributesIncludeRealAndVirtual(t *testing.T) {
	st := buildTestStore(t)
	g := NewGenerator(st)

	group := g.Generate().Data["Mutated Rifter"]

	var gotIDs []ids.DogmaAttributeId
	for _, v := range group.VaryingAttributes {
		gotIDs = append(gotIDs, v.ID)
	}
	require.ElementsMatch(t, []ids.DogmaAttributeId{attrArmorHP, attrActivation, VirtualArmorRepairEfficiencyID}, gotIDs)
}

func TestGenerate_BaseTypesCarryVirtualAttributeValue(t *testing.T) {
	st := buildTestStore(t)
	g := NewGenerator(st)

	group := g.Generate().Data["Mutated Rifter"]
	require.Len(t, group.BaseTypes, 1)

	base := group.BaseTypes[0]
	require.Equal(t, typeRifter, base.ID)
	require.Equal(t, "Rifter", base.Name)

	var virtual *AttributeValue
	for i := range base.Attributes {
		if base.Attributes[i].ID == VirtualArmorRepairEfficiencyID {
			virtual = &base.Attributes[i]
		}
	}
	require.NotNil(t, virtual, "virtual armor repair efficiency should be computed from 1000/5")
	require.InDelta(t, 200.0, virtual.Value, 0.0001)
}

func TestGenerate_MutatorsCarryAttributeRangesAndVirtualRange(t *testing.T) {
	st := buildTestStore(t)
	g := NewGenerator(st)

	group := g.Generate().Data["Mutated Rifter"]
	require.Len(t, group.Mutators, 1)
	mutator := group.Mutators[0]
	require.Equal(t, typeMutaplasmid, mutator.ID)
	require.Equal(t, "Simple Armor Mutaplasmid", mutator.Name)

	var virtual *AttributeRange
	for i := range mutator.Attributes {
		if mutator.Attributes[i].ID == VirtualArmorRepairEfficiencyID {
			virtual = &mutator.Attributes[i]
		}
	}
	require.NotNil(t, virtual)
	require.InDelta(t, 0.8/1.1, virtual.Min, 0.0001)
	require.InDelta(t, 1.2/0.9, virtual.Max, 0.0001)
}

func TestGenerate_SourceMutatorGroupHoldsScaledRangesAndDynamicsWithLocation(t *testing.T) {
	st := buildTestStore(t)
	g := NewGenerator(st)

	group := g.Generate().Data["Mutated Rifter"]
	require.Len(t, group.SourceMutatorGroups, 1)

	smg := group.SourceMutatorGroups[0]
	require.Equal(t, typeRifter, smg.SourceTypeID)
	require.Equal(t, typeMutaplasmid, smg.MutatorTypeID)
	require.Len(t, smg.Dynamics, 1)

	dyn := smg.Dynamics[0]
	require.EqualValues(t, 5000, dyn.ItemID)
	require.Equal(t, "Jita IV - Moon 4", dyn.StationName)
	require.Equal(t, "station", dyn.LocationType)

	var realArmor, virtualEfficiency *AttributeValue
	for i := range dyn.Attributes {
		switch dyn.Attributes[i].ID {
		case attrArmorHP:
			realArmor = &dyn.Attributes[i]
		case VirtualArmorRepairEfficiencyID:
			virtualEfficiency = &dyn.Attributes[i]
		}
	}
	require.NotNil(t, realArmor)
	require.Equal(t, 1100.0, realArmor.Value)
	require.NotNil(t, virtualEfficiency)
	require.InDelta(t, 1100.0/5.2, virtualEfficiency.Value, 0.0001)
}

func TestGenerate_MinMaxAttributesScaleSourceBaseValueByMutatorRange(t *testing.T) {
	st := buildTestStore(t)
	g := NewGenerator(st)

	group := g.Generate().Data["Mutated Rifter"]

	var armorRange *AttributeRange
	for i := range group.MinMaxAttributes {
		if group.MinMaxAttributes[i].ID == attrArmorHP {
			armorRange = &group.MinMaxAttributes[i]
		}
	}
	require.NotNil(t, armorRange)
	require.InDelta(t, 800.0, armorRange.Min, 0.0001)
	require.InDelta(t, 1200.0, armorRange.Max, 0.0001)
}

func TestGenerate_SkipsPairWithNoResultingTypeRecorded(t *testing.T) {
	st := store.New()
	st.AddItemType(store.ItemType{TypeID: 1, Name: "Orphan Source"})
	st.AddDynamicItem(store.DynamicItem{ItemID: 1, SourceTypeID: 1, MutatorTypeID: 2})

	g := NewGenerator(st)
	report := g.Generate()
	require.Empty(t, report.Data)
}

func TestResolveVirtualFormulas_UnresolvableNameMakesFormulaUncomputable(t *testing.T) {
	formulas := resolveVirtualFormulas(func(name string) (ids.DogmaAttributeId, bool) {
		return 0, false
	})

	values := []AttributeValue{{ID: 1, Value: 10}, {ID: 2, Value: 5}}
	out := appendVirtualAttributeValues(formulas, values)
	require.Len(t, out, len(values), "no virtual attribute should be computed when no names resolve")
}

func TestCheckIntegrity_PassesForWellFormedReport(t *testing.T) {
	st := buildTestStore(t)
	g := NewGenerator(st)
	report := g.Generate()
	require.NoError(t, checkIntegrity(report))
}

func TestCheckIntegrity_CatchesVaryingAttributeMismatch(t *testing.T) {
	report := Report{Data: map[string]ResultingGroup{
		"Broken": {
			VaryingAttributes: []VaryingAttribute{{ID: 1, Name: "a"}},
			BaseTypes: []BaseItemType{
				{ID: 100, Name: "Base", Attributes: []AttributeValue{{ID: 2, Value: 1}}},
			},
		},
	}}
	require.Error(t, checkIntegrity(report))
}
