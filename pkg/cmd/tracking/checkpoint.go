package tracking

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/cmd/util"
)

func NewCheckpointCmd() *cobra.Command {
	var raceID int
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "manage checkpoints and their isolated runner tracking",
	}
	addRaceFlag(cmd, &raceID)
	cmd.AddCommand(newCheckpointAddCmd(&raceID))
	cmd.AddCommand(newCheckpointListCmd(&raceID))
	cmd.AddCommand(newCheckpointInitCmd(&raceID))
	cmd.AddCommand(newCheckpointMarkCmd(&raceID))
	cmd.AddCommand(newCheckpointRunnersCmd(&raceID))
	return cmd
}

func newCheckpointAddCmd(raceID *int) *cobra.Command {
	return &cobra.Command{
		Use:   "add NUMBER [NAME]",
		Short: "adds a checkpoint to the race",
		Args:  cobra.RangeArgs(1, 2),
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			id, err := resolve(ctx, env, *raceID)
			if err != nil {
				return err
			}
			cp, err := checkpointArg(args[0])
			if err != nil {
				return err
			}
			name := fmt.Sprintf("Checkpoint %d", cp)
			if len(args) > 1 {
				name = args[1]
			}
			if _, err := env.Races.AddCheckpoint(ctx, id, cp, name); err != nil {
				return err
			}
			log.Info("Checkpoint added", log.Int("race", id), log.Int("checkpoint", cp))
			return nil
		}),
	}
}

func newCheckpointListCmd(raceID *int) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "lists the checkpoints of the race",
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			id, err := resolve(ctx, env, *raceID)
			if err != nil {
				return err
			}
			cps, err := env.Races.GetCheckpoints(ctx, id)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(cps))
			for _, cp := range cps {
				rows = append(rows, []string{strconv.Itoa(cp.Number), cp.Name})
			}
			return util.PrintTable(os.Stdout, []string{"NUMBER", "NAME"}, rows)
		}),
	}
}

func newCheckpointInitCmd(raceID *int) *cobra.Command {
	return &cobra.Command{
		Use:   "init CHECKPOINT",
		Short: "creates the isolated runner rows for a checkpoint",
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
			num, err := env.Races.InitializeCheckpointRunners(ctx, id, cp)
			if err != nil {
				return err
			}
			log.Info("Checkpoint tracking initialized",
				log.Int("race", id), log.Int("checkpoint", cp), log.Int("created", num))
			return nil
		}),
	}
}

func newCheckpointMarkCmd(raceID *int) *cobra.Command {
	opts := &markOptions{}
	cmd := &cobra.Command{
		Use:   "mark CHECKPOINT NUMBERS...",
		Short: "marks runners at a checkpoint",
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
			status, markOff, err := opts.parse(env)
			if err != nil {
				return err
			}
			if opts.callIn != "" {
				callIn, err := util.ParseTime(opts.callIn, env.Races.Now().In(util.Location()))
				if err != nil {
					return err
				}
				if markOff == nil {
					now := env.Races.Now()
					markOff = &now
				}
				for _, n := range numbers {
					if err := env.Races.MarkCheckpointRunner(
						ctx, id, cp, n, status, callIn, markOff); err != nil {
						return err
					}
				}
			} else if err := env.Races.BulkMarkCheckpointRunners(
				ctx, id, cp, numbers, status, markOff); err != nil {
				return err
			}
			log.Info("Checkpoint runners marked",
				log.Int("race", id), log.Int("checkpoint", cp),
				log.Ints("numbers", numbers), log.String("status", status.String()))
			return nil
		}),
	}
	addMarkFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.callIn, "call-in", "",
		"time the runners were called in to the base station")
	return cmd
}

func newCheckpointRunnersCmd(raceID *int) *cobra.Command {
	return &cobra.Command{
		Use:   "runners CHECKPOINT",
		Short: "lists the isolated runner rows of a checkpoint",
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
			rows, err := env.Races.GetCheckpointRunners(ctx, id, cp)
			if err != nil {
				return err
			}
			loc := util.Location()
			out := make([][]string, 0, len(rows))
			for _, r := range rows {
				out = append(out, []string{
					strconv.Itoa(r.Number), r.Status.String(),
					util.FormatTime(r.CallInTime, loc), util.FormatTime(r.MarkOffTime, loc),
					util.FormatNotes(r.Notes),
				})
			}
			return util.PrintTable(os.Stdout,
				[]string{"NUMBER", "STATUS", "CALL-IN", "MARK-OFF", "NOTES"}, out)
		}),
	}
}
