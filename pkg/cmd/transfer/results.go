package transfer

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetracker-store/pkg/cmd/util"
)

func NewResultsCmd() *cobra.Command {
	var raceID int
	var output string
	cmd := &cobra.Command{
		Use:   "results",
		Short: "exports the race results as csv",
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			id, err := env.ResolveRaceID(ctx, raceID)
			if err != nil {
				return err
			}
			res, err := env.Transfer.ExportRaceResults(ctx, id)
			if err != nil {
				return err
			}
			return writeOutput(output, res.Filename, res.Content)
		}),
	}
	cmd.Flags().IntVar(&raceID, "race", 0, "race id (default: current race)")
	cmd.Flags().StringVarP(&output, "output", "o", "",
		"output file or directory, - for stdout (default: generated file name)")
	return cmd
}
