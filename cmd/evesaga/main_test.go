package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{Use: appName}
	root.AddCommand(newAssetsCmd(), newMarketCmd(), newReportCmd(), newServeCmd())
	return root
}

func TestRootCmd_HasExpectedSubcommandTree(t *testing.T) {
	root := buildRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["assets"])
	assert.True(t, names["market"])
	assert.True(t, names["report"])
	assert.True(t, names["serve"])

	assetsCmd, _, err := root.Find([]string{"assets", "run"})
	require.NoError(t, err)
	assert.Equal(t, "run", assetsCmd.Name())

	marketCmd, _, err := root.Find([]string{"market", "refresh"})
	require.NoError(t, err)
	assert.Equal(t, "refresh", marketCmd.Name())
}

func TestAssetsRunCmd_RequiresCharacterFlag(t *testing.T) {
	root := buildRootCmd()
	root.SetArgs([]string{"assets", "run"})
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--character is required")
}

func TestMarketRefreshCmd_RequiresRegionAndTypeFlags(t *testing.T) {
	root := buildRootCmd()
	root.SetArgs([]string{"market", "refresh"})
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--region is required")

	root = buildRootCmd()
	root.SetArgs([]string{"market", "refresh", "--region", "10000002"})
	root.SilenceUsage = true
	root.SilenceErrors = true

	err = root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one --type is required")
}

func TestMarketRefreshCmd_DefaultFlagValues(t *testing.T) {
	cmd := newMarketRefreshCmd()

	region, err := cmd.Flags().GetInt64("region")
	require.NoError(t, err)
	assert.Equal(t, int64(0), region)

	types, err := cmd.Flags().GetInt32Slice("type")
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestAssetsRunCmd_DefaultFlagValues(t *testing.T) {
	cmd := newAssetsRunCmd()

	token, err := cmd.Flags().GetString("token")
	require.NoError(t, err)
	assert.Empty(t, token)
}
