package appctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evesaga/evesaga/internal/config"
	"github.com/evesaga/evesaga/internal/esiclient"
	"github.com/evesaga/evesaga/internal/ids"
)

func TestNew_BuildsWithDefaultsAndEmptyStore(t *testing.T) {
	cfg := config.Default()
	cfg.Snapshot.Dir = t.TempDir()

	ac, err := New(cfg)
	require.NoError(t, err)

	assert.NotNil(t, ac.Store)
	assert.NotNil(t, ac.ESI)
	assert.NotNil(t, ac.Chains)
	assert.NotNil(t, ac.Report)
	assert.NotNil(t, ac.Metrics)
	assert.NotNil(t, ac.OrderBook())
	assert.NotNil(t, ac.ReportCache())
}

func TestRegisterCharacter_IsVisibleToESIClient(t *testing.T) {
	cfg := config.Default()
	cfg.Snapshot.Dir = t.TempDir()

	ac, err := New(cfg)
	require.NoError(t, err)

	ac.RegisterCharacter(esiclient.Character{
		CharacterID:   ids.CharacterId(42),
		CharacterName: "Alice",
		AccessToken:   "token-abc",
	})

	got, err := ac.ESI.Characters().Get(ids.CharacterId(42))
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.CharacterName)
	assert.Equal(t, "token-abc", got.AccessToken)
}

func TestPersistSnapshot_IsNoOpWithoutMutation(t *testing.T) {
	cfg := config.Default()
	cfg.Snapshot.Dir = t.TempDir()

	ac, err := New(cfg)
	require.NoError(t, err)

	assert.NoError(t, ac.PersistSnapshot())
}
