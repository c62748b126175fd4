// Package tracking contains the commands used while the race is running.
package tracking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetracker-store/pkg/cmd/util"
	"github.com/mpapenbr/racetracker-store/pkg/model"
)

type markOptions struct {
	status string
	at     string
	callIn string
}

// addRaceFlag registers --race on cmd and all its subcommands
func addRaceFlag(cmd *cobra.Command, raceID *int) {
	cmd.PersistentFlags().IntVar(raceID, "race", 0, "race id (default: current race)")
}

func addMarkFlags(cmd *cobra.Command, opts *markOptions) {
	cmd.Flags().StringVarP(&opts.status, "status", "s", string(model.StatusPassed),
		fmt.Sprintf("status to set %v", model.AllStatuses()))
	cmd.Flags().StringVar(&opts.at, "at", "",
		"time of the event (HH:MM[:SS] or RFC3339, default: now)")
}

func (o *markOptions) parse(env *util.Env) (model.Status, *time.Time, error) {
	status, err := model.ParseStatus(o.status)
	if err != nil {
		return "", nil, err
	}
	at, err := util.ParseTime(o.at, env.Races.Now().In(util.Location()))
	if err != nil {
		return "", nil, err
	}
	return status, at, nil
}

func checkpointArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid checkpoint number %q", s)
	}
	return n, nil
}

func resolve(ctx context.Context, env *util.Env, raceID int) (int, error) {
	return env.ResolveRaceID(ctx, raceID)
}
