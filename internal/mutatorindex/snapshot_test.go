package mutatorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evesaga/evesaga/internal/ids"
)

func TestSnapshot_RestoreIndex_RoundTrips(t *testing.T) {
	idx := New()
	idx.AddMutator(900, map[ids.DogmaAttributeId]AttributeRange{64: {Min: 0.8, Max: 1.2}}, []InputOutput{
		{ResultingTypeID: 2000, SourceTypeIDs: []ids.TypeId{100, 200}},
	})

	snap := idx.Snapshot()
	restored := RestoreIndex(snap)

	resulting, ok := restored.ResultingTypeBySourceMutator(100, 900)
	require.True(t, ok)
	assert.EqualValues(t, 2000, resulting)

	assert.ElementsMatch(t, []ids.TypeId{100, 200}, restored.ApplicableTypesByResultingType(2000))

	attrs, ok := restored.AttributesByMutator(900)
	require.True(t, ok)
	assert.Equal(t, AttributeRange{Min: 0.8, Max: 1.2}, attrs[64])

	entries := restored.MutatorsByResultingType(2000)
	require.Len(t, entries, 1)
	assert.ElementsMatch(t, []ids.TypeId{100, 200}, entries[0].Sources)
}

func TestSnapshot_EmptyIndexRoundTrips(t *testing.T) {
	idx := New()
	restored := RestoreIndex(idx.Snapshot())
	assert.Empty(t, restored.ApplicableTypesByResultingType(1))
}
