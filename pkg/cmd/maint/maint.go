package maint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/cmd/util"
)

func NewMaintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maint",
		Short: "database maintenance",
	}
	cmd.AddCommand(newSizeCmd())
	cmd.AddCommand(newCleanupCmd())
	cmd.AddCommand(newMigrateTrackingCmd())
	cmd.AddCommand(newClearCmd())
	return cmd
}

func newSizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "shows the number of rows per table",
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			size, err := env.Races.GetDatabaseSize(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(size)
		}),
	}
}

func newCleanupCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "deletes races created before the retention period",
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			num, err := env.Races.CleanupOldRaces(ctx, days)
			if err != nil {
				return err
			}
			log.Info("Old races removed", log.Int("num", num), log.Int("daysToKeep", days))
			return nil
		}),
	}
	cmd.Flags().IntVar(&days, "days", 30, "number of days to keep")
	return cmd
}

func newMigrateTrackingCmd() *cobra.Command {
	var raceID int
	cmd := &cobra.Command{
		Use:   "migrate-tracking",
		Short: "creates isolated tracking rows for all checkpoints of a race",
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			id, err := env.ResolveRaceID(ctx, raceID)
			if err != nil {
				return err
			}
			return env.Races.MigrateToIsolatedTracking(ctx, id)
		}),
	}
	cmd.Flags().IntVar(&raceID, "race", 0, "race id (default: current race)")
	return cmd
}

func newClearCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "deletes all races, tracking data and settings",
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			if !force {
				return fmt.Errorf("refusing to delete all data without --force")
			}
			if err := env.Races.ClearAllData(ctx); err != nil {
				return err
			}
			log.Info("All data deleted")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm deletion of all data")
	return cmd
}
