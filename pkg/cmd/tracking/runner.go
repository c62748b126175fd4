package tracking

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/cmd/util"
)

func NewRunnerCmd() *cobra.Command {
	var raceID int
	cmd := &cobra.Command{
		Use:   "runner",
		Short: "track runners of the race",
	}
	addRaceFlag(cmd, &raceID)
	cmd.AddCommand(newRunnerListCmd(&raceID))
	cmd.AddCommand(newRunnerMarkCmd(&raceID))
	return cmd
}

func newRunnerListCmd(raceID *int) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "lists the runners of the race",
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			id, err := resolve(ctx, env, *raceID)
			if err != nil {
				return err
			}
			runners, err := env.Races.GetRunners(ctx, id)
			if err != nil {
				return err
			}
			loc := util.Location()
			rows := make([][]string, 0, len(runners))
			for _, r := range runners {
				rows = append(rows, []string{
					strconv.Itoa(r.Number), r.Status.String(),
					util.FormatTime(r.RecordedTime, loc), util.FormatNotes(r.Notes),
				})
			}
			return util.PrintTable(os.Stdout, []string{"NUMBER", "STATUS", "TIME", "NOTES"}, rows)
		}),
	}
}

func newRunnerMarkCmd(raceID *int) *cobra.Command {
	opts := &markOptions{}
	cmd := &cobra.Command{
		Use:   "mark NUMBERS...",
		Short: "sets the status of runners",
		Long: `Sets the status of one or more runners. Numbers may be given as ranges
like 1-5 or lists like 3,7,9.`,
		Args: cobra.MinimumNArgs(1),
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			id, err := resolve(ctx, env, *raceID)
			if err != nil {
				return err
			}
			numbers, err := util.ParseNumbers(args)
			if err != nil {
				return err
			}
			status, at, err := opts.parse(env)
			if err != nil {
				return err
			}
			for _, n := range numbers {
				if err := env.Races.MarkRunnerStatus(ctx, id, n, status, at); err != nil {
					return err
				}
			}
			log.Info("Runners marked",
				log.Int("race", id), log.Ints("numbers", numbers),
				log.String("status", status.String()))
			return nil
		}),
	}
	addMarkFlags(cmd, opts)
	return cmd
}
