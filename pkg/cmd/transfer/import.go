package transfer

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/cmd/util"
	"github.com/mpapenbr/racetracker-store/pkg/transfer"
	"github.com/mpapenbr/racetracker-store/pkg/transfer/inbox"
)

type importOptions struct {
	watch    string
	existing bool
	settle   time.Duration
}

func NewImportCmd() *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import [FILE...]",
		Short: "imports or merges exported race data",
		Long: `Imports exported race data. A full export of a race that already exists
(same name and date) is merged into it. With --watch every json file dropped
into the directory is imported until the command is interrupted.`,
		RunE: util.WithEnv(func(ctx context.Context, env *util.Env, args []string) error {
			for _, file := range args {
				if err := importFile(ctx, env, file); err != nil {
					return err
				}
			}
			if opts.watch == "" {
				return nil
			}
			w := inbox.New(opts.watch, env.Transfer,
				inbox.WithExisting(opts.existing),
				inbox.WithSettleTime(opts.settle),
				inbox.WithNotify(logResult),
			)
			return w.Run(ctx)
		}),
	}
	cmd.Flags().StringVarP(&opts.watch, "watch", "w", "",
		"directory to watch for export files")
	cmd.Flags().BoolVar(&opts.existing, "existing", false,
		"also import files already present in the watched directory")
	cmd.Flags().DurationVar(&opts.settle, "settle", time.Second,
		"time a file must stay unchanged before it is imported")
	return cmd
}

func importFile(ctx context.Context, env *util.Env, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	res, err := env.Transfer.Import(ctx, data)
	logResult(file, res, err)
	return err
}

func logResult(path string, res *transfer.ImportResult, err error) {
	if err != nil {
		log.Error("Import failed", log.String("file", path), log.ErrorField(err))
		return
	}
	fields := []log.Field{
		log.String("file", path), log.Int("race", res.RaceID), log.Bool("merged", res.Merged),
	}
	if res.Report != nil {
		fields = append(fields,
			log.Int("updated", res.Report.Updated),
			log.Int("skipped", res.Report.Skipped),
			log.Int("unmatched", res.Report.Unmatched),
			log.Int("shadowRows", res.Report.ShadowRows))
	}
	log.Info("Import done", fields...)
}
