package tracking

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/cmd/util"
)

func NewBaseStationCmd() *cobra.Command {
	var raceID int
	cmd := &cobra.Command{
		Use:     "basestation",
		Aliases: []string{"bs"},
		Short:   "isolated runner tracking of a base station",
	}
	addRaceFlag(cmd, &raceID)
	cmd.AddCommand(newBaseStationInitCmd(&raceID))
	cmd.AddCommand(newBaseStationMarkCmd(&raceID))
	cmd.AddCommand(newBaseStationListCmd(&raceID))
	return cmd
}

func newBaseStationInitCmd(raceID *int) *cobra.Command {
	return &cobra.Command{
		Use:   "init CHECKPOINT",
		Short: "creates the base station rows for a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			id, err := resolve(ctx, env, *raceID)
			if err != nil {
				return err
			}
			cp, err := checkpointArg(args[0])
			if err != nil {
				return err
			}
			num, err := env.Races.InitializeBaseStationRunners(ctx, id, cp)
			if err != nil {
				return err
			}
			log.Info("Base station tracking initialized",
				log.Int("race", id), log.Int("checkpoint", cp), log.Int("created", num))
			return nil
		}),
	}
}

func newBaseStationMarkCmd(raceID *int) *cobra.Command {
	opts := &markOptions{}
	cmd := &cobra.Command{
		Use:   "mark CHECKPOINT NUMBERS...",
		Short: "records runners reported by a checkpoint",
		Args:  cobra.MinimumNArgs(2),
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			id, err := resolve(ctx, env, *raceID)
			if err != nil {
				return err
			}
			cp, err := checkpointArg(args[0])
			if err != nil {
				return err
			}
			numbers, err := util.ParseNumbers(args[1:])
			if err != nil {
				return err
			}
			status, at, err := opts.parse(env)
			if err != nil {
				return err
			}
			if err := env.Races.BulkMarkBaseStationRunners(
				ctx, id, cp, numbers, status, at); err != nil {
				return err
			}
			log.Info("Base station runners marked",
				log.Int("race", id), log.Int("checkpoint", cp),
				log.Ints("numbers", numbers), log.String("status", status.String()))
			return nil
		}),
	}
	addMarkFlags(cmd, opts)
	return cmd
}

func newBaseStationListCmd(raceID *int) *cobra.Command {
	return &cobra.Command{
		Use:   "list CHECKPOINT",
		Short: "lists the base station rows of a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			id, err := resolve(ctx, env, *raceID)
			if err != nil {
				return err
			}
			cp, err := checkpointArg(args[0])
			if err != nil {
				return err
			}
			rows, err := env.Races.GetBaseStationRunners(ctx, id, cp)
			if err != nil {
				return err
			}
			loc := util.Location()
			out := make([][]string, 0, len(rows))
			for _, r := range rows {
				out = append(out, []string{
					strconv.Itoa(r.Number), r.Status.String(),
					util.FormatTime(r.CommonTime, loc), util.FormatNotes(r.Notes),
				})
			}
			return util.PrintTable(os.Stdout,
				[]string{"NUMBER", "STATUS", "TIME", "NOTES"}, out)
		}),
	}
}
