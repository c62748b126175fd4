// Package transfer contains the commands to move race data between devices.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/cmd/util"
	"github.com/mpapenbr/racetracker-store/pkg/transfer"
)

type exportOptions struct {
	raceID      int
	checkpoint  int
	baseStation int
	output      string
}

func NewExportCmd() *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "exports race data to a json file",
		Long: `Exports the full race data. With --checkpoint or --basestation only the
isolated tracking data of that station is exported.`,
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			return opts.run(ctx, env)
		}),
	}
	cmd.Flags().IntVar(&opts.raceID, "race", 0, "race id (default: current race)")
	cmd.Flags().IntVar(&opts.checkpoint, "checkpoint", 0,
		"export isolated checkpoint results")
	cmd.Flags().IntVar(&opts.baseStation, "basestation", 0,
		"export isolated base station results")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "",
		"output file or directory, - for stdout (default: generated file name)")
	cmd.MarkFlagsMutuallyExclusive("checkpoint", "basestation")
	return cmd
}

func (o *exportOptions) run(ctx context.Context, env *util.Env) error {
	id, err := env.ResolveRaceID(ctx, o.raceID)
	if err != nil {
		return err
	}
	var doc *transfer.Document
	switch {
	case o.checkpoint > 0:
		doc, err = env.Transfer.ExportIsolatedCheckpointResults(ctx, id, o.checkpoint)
	case o.baseStation > 0:
		doc, err = env.Transfer.ExportIsolatedBaseStationResults(ctx, id, o.baseStation)
	default:
		doc, err = env.Transfer.ExportRaceConfig(ctx, id)
	}
	if err != nil {
		return err
	}
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	return writeOutput(o.output, doc.Filename(), data)
}

// writeOutput writes data to stdout, into dir/filename or into the given file
func writeOutput(output, filename string, data []byte) error {
	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	target := filename
	if output != "" {
		target = output
		if fi, err := os.Stat(output); err == nil && fi.IsDir() {
			target = filepath.Join(output, filename)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return fmt.Errorf("could not write %s: %w", target, err)
	}
	log.Info("Export written", log.String("file", target), log.Int("bytes", len(data)))
	return nil
}
