package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evesaga/evesaga/internal/report"
)

func TestReportCache_RoundTrips(t *testing.T) {
	rc := NewReportCache(NewMemoryCache(), time.Minute)

	r := report.Report{
		Data: map[string]report.ResultingGroup{
			"Mutated Rifter": {
				BaseTypes: []report.BaseItemType{{ID: 587, Name: "Rifter"}},
			},
		},
		GeneratedAt: time.Now().Truncate(time.Second),
	}

	require.NoError(t, rc.Set("global", r))

	got, ok := rc.Get("global")
	require.True(t, ok)
	require.Contains(t, got.Data, "Mutated Rifter")
	assert.Equal(t, ids587Name(got), "Rifter")
}

func ids587Name(r report.Report) string {
	return r.Data["Mutated Rifter"].BaseTypes[0].Name
}

func TestReportCache_MissReturnsFalse(t *testing.T) {
	rc := NewReportCache(NewMemoryCache(), time.Minute)
	_, ok := rc.Get("absent")
	assert.False(t, ok)
}
