package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/evesaga/evesaga/internal/appctx"
	"github.com/evesaga/evesaga/internal/ids"
	"github.com/evesaga/evesaga/internal/marketsaga"
)

func newMarketCmd() *cobra.Command {
	marketCmd := &cobra.Command{
		Use:   "market",
		Short: "Refresh market order books",
	}
	marketCmd.AddCommand(newMarketRefreshCmd())
	return marketCmd
}

func newMarketRefreshCmd() *cobra.Command {
	var regionID int64
	var typeIDs []int32

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh both sides of the order book for a region and one or more types",
		RunE: func(cmd *cobra.Command, args []string) error {
			if regionID <= 0 {
				return fmt.Errorf("--region is required")
			}
			if len(typeIDs) == 0 {
				return fmt.Errorf("at least one --type is required")
			}

			targets := make([]marketsaga.SeedTarget, 0, len(typeIDs))
			for _, t := range typeIDs {
				targets = append(targets, marketsaga.SeedTarget{
					RegionID: ids.RegionId(regionID),
					TypeID:   ids.TypeId(t),
				})
			}

			return runAndPersist(func(ac *appctx.AppContext) error {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				defer cancel()

				log.Info().Int64("region_id", regionID).Int("type_count", len(typeIDs)).Msg("running market saga")
				return ac.RunMarketSaga(ctx, targets)
			})
		},
	}

	refreshCmd.Flags().Int64Var(&regionID, "region", 0, "EVE region ID (required)")
	refreshCmd.Flags().Int32SliceVar(&typeIDs, "type", nil, "item type ID to refresh (repeatable)")
	return refreshCmd
}
