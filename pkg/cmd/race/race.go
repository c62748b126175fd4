package race

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/cmd/util"
	"github.com/mpapenbr/racetracker-store/pkg/model"
)

type createOptions struct {
	file        string
	name        string
	date        string
	startTime   string
	minRunner   int
	maxRunner   int
	individual  []string
	checkpoints []string
	current     bool
}

func NewRaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race",
		Short: "manage races",
	}
	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newCurrentCmd())
	return cmd
}

func newCreateCmd() *cobra.Command {
	opts := &createOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "creates a race with its runners and checkpoints",
		Long: `Creates a race either from a json file containing the race configuration
or from the given flags.`,
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			cfg, err := opts.raceConfig()
			if err != nil {
				return err
			}
			id, err := env.Races.SaveRace(ctx, *cfg)
			if err != nil {
				return err
			}
			if opts.current {
				if err := env.Races.SetCurrentRace(ctx, id); err != nil {
					return err
				}
			}
			log.Info("Race created", log.Int("id", id), log.String("name", cfg.Name))
			fmt.Println(id)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "json file with race configuration")
	cmd.Flags().StringVar(&opts.name, "name", "", "name of the race")
	cmd.Flags().StringVar(&opts.date, "date", "", "date of the race (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.startTime, "start", "", "start time (HH:MM)")
	cmd.Flags().IntVar(&opts.minRunner, "min", 1, "lowest runner number")
	cmd.Flags().IntVar(&opts.maxRunner, "max", 0, "highest runner number")
	cmd.Flags().StringSliceVar(&opts.individual, "runners", nil,
		"additional runner numbers or ranges (e.g. 101,105-110)")
	cmd.Flags().StringArrayVar(&opts.checkpoints, "checkpoint", nil,
		"checkpoint as number:name, may be repeated")
	cmd.Flags().BoolVar(&opts.current, "current", true, "make the new race the current race")
	return cmd
}

func (o *createOptions) raceConfig() (*model.RaceConfig, error) {
	if o.file != "" {
		data, err := os.ReadFile(o.file)
		if err != nil {
			return nil, err
		}
		cfg := &model.RaceConfig{}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid race configuration: %w", err)
		}
		return cfg, nil
	}
	if o.name == "" || o.date == "" || o.startTime == "" {
		return nil, fmt.Errorf("name, date and start are required")
	}
	cfg := &model.RaceConfig{
		Name:      o.name,
		Date:      o.date,
		StartTime: o.startTime,
		MinRunner: o.minRunner,
		MaxRunner: o.maxRunner,
	}
	if len(o.individual) > 0 {
		numbers, err := util.ParseNumbers(o.individual)
		if err != nil {
			return nil, err
		}
		cfg.RunnerRanges = []model.RunnerRange{
			{Min: o.minRunner, Max: o.maxRunner},
			{IsIndividual: true, IndividualNumbers: numbers},
		}
	}
	for _, s := range o.checkpoints {
		cp, err := parseCheckpoint(s)
		if err != nil {
			return nil, err
		}
		cfg.Checkpoints = append(cfg.Checkpoints, cp)
	}
	return cfg, nil
}

func parseCheckpoint(s string) (model.CheckpointInfo, error) {
	num, name, _ := strings.Cut(s, ":")
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return model.CheckpointInfo{}, fmt.Errorf("invalid checkpoint %q", s)
	}
	if name == "" {
		name = fmt.Sprintf("Checkpoint %d", n)
	}
	return model.CheckpointInfo{Number: n, Name: strings.TrimSpace(name)}, nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "lists all races, newest first",
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			races, err := env.Races.GetAllRaces(ctx)
			if err != nil {
				return err
			}
			current, err := env.Races.GetCurrentRace(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(races))
			for _, r := range races {
				marker := ""
				if current != nil && current.ID == r.ID {
					marker = "*"
				}
				rows = append(rows, []string{
					marker, strconv.Itoa(r.ID), r.Name, r.Date, r.StartTime,
					strconv.Itoa(len(r.RunnerNumbers())),
				})
			}
			return util.PrintTable(os.Stdout,
				[]string{"", "ID", "NAME", "DATE", "START", "RUNNERS"}, rows)
		}),
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [ID]",
		Short: "shows a race as json (default: current race)",
		Args:  cobra.MaximumNArgs(1),
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			id, err := raceIDArg(ctx, env, args)
			if err != nil {
				return err
			}
			r, err := env.Races.GetRace(ctx, id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		}),
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "deletes a race and all its tracking data",
		Args:  cobra.ExactArgs(1),
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			id, err := raceIDArg(ctx, env, args)
			if err != nil {
				return err
			}
			if err := env.Races.DeleteRace(ctx, id); err != nil {
				return err
			}
			log.Info("Race deleted", log.Int("id", id))
			return nil
		}),
	}
}

func newCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current [ID]",
		Short: "shows or sets the current race",
		Args:  cobra.MaximumNArgs(1),
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			if len(args) == 1 {
				id, err := raceIDArg(ctx, env, args)
				if err != nil {
					return err
				}
				return env.Races.SetCurrentRace(ctx, id)
			}
			r, err := env.Races.GetCurrentRace(ctx)
			if err != nil {
				return err
			}
			if r == nil {
				return util.ErrNoRace
			}
			fmt.Printf("%d\t%s\t%s\n", r.ID, r.Name, r.Date)
			return nil
		}),
	}
}

func raceIDArg(ctx context.Context, env *util.Env, args []string) (int, error) {
	id := 0
	if len(args) > 0 {
		var err error
		if id, err = strconv.Atoi(args[0]); err != nil || id <= 0 {
			return 0, fmt.Errorf("invalid race id %q", args[0])
		}
	}
	return env.ResolveRaceID(ctx, id)
}
