package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/evesaga/evesaga/internal/appctx"
	"github.com/evesaga/evesaga/internal/esiclient"
	"github.com/evesaga/evesaga/internal/ids"
)

func newAssetsCmd() *cobra.Command {
	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "Resolve a character's mutated-asset dependency graph",
	}
	assetsCmd.AddCommand(newAssetsRunCmd())
	return assetsCmd
}

func newAssetsRunCmd() *cobra.Command {
	var characterID int64
	var accessToken string

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch and resolve one character's assets against ESI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if characterID <= 0 {
				return fmt.Errorf("--character is required")
			}

			return runAndPersist(func(ac *appctx.AppContext) error {
				charID := ids.CharacterId(characterID)
				if accessToken != "" {
					ac.RegisterCharacter(esiclient.Character{CharacterID: charID, AccessToken: accessToken})
				}

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				defer cancel()

				log.Info().Int64("character_id", characterID).Msg("running assets saga")
				return ac.RunAssetsSaga(ctx, charID)
			})
		},
	}

	runCmd.Flags().Int64Var(&characterID, "character", 0, "EVE character ID (required)")
	runCmd.Flags().StringVar(&accessToken, "token", "", "ESI OAuth2 bearer token for the character")
	return runCmd
}
