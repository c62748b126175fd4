package migrate

import (
	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/cmd/util"
	"github.com/mpapenbr/racetracker-store/pkg/config"
	dbmigrate "github.com/mpapenbr/racetracker-store/pkg/db/migrate"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration()
		},
	}
	return cmd
}

func startMigration() error {
	util.SetupLogging()
	if err := util.WaitForDB(); err != nil {
		log.Error("database not ready", log.ErrorField(err))
		return err
	}
	log.Info("Migrating database")
	if err := dbmigrate.MigrateDB(config.DB); err != nil {
		log.Error("Migration failed", log.ErrorField(err))
		return err
	}
	log.Info("Database is up to date")
	return nil
}
