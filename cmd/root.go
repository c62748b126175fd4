/*
	Copyright 2023 Markus Papenbrock
*/

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	maintCmd "github.com/mpapenbr/racetracker-store/pkg/cmd/maint"
	migrateCmd "github.com/mpapenbr/racetracker-store/pkg/cmd/migrate"
	raceCmd "github.com/mpapenbr/racetracker-store/pkg/cmd/race"
	trackingCmd "github.com/mpapenbr/racetracker-store/pkg/cmd/tracking"
	transferCmd "github.com/mpapenbr/racetracker-store/pkg/cmd/transfer"
	"github.com/mpapenbr/racetracker-store/pkg/config"
	"github.com/mpapenbr/racetracker-store/version"
)

const envPrefix = "RTS"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "rts",
	Short:        "Offline race data store for checkpoint and base station tracking",
	Long:         ``,
	Version:      version.FullVersion,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.rts.yml)")
	rootCmd.PersistentFlags().StringVar(&config.EnvFile, "env-file", "",
		"dotenv file to load (default is .env if present)")

	rootCmd.PersistentFlags().StringVar(&config.DB, "db",
		"postgresql://DB_USERNAME:DB_USER_PASSWORD@DB_HOST:5432/racetracker",
		"Connection string for the database")
	rootCmd.PersistentFlags().StringVar(&config.Store, "store",
		config.StorePostgres,
		"storage backend (postgres, memory)")
	rootCmd.PersistentFlags().StringVar(&config.WaitForServices,
		"wait-for-services",
		"15s",
		"Duration to wait for other services to be ready")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.SQLLogLevel,
		"sql-log-level",
		"info",
		"controls the log level for sql statements")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat,
		"log-format",
		"text",
		"controls the log output format (json, text)")
	rootCmd.PersistentFlags().StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules applied to the log output (e.g. \"*:service.* warn+:*\")")
	rootCmd.PersistentFlags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	rootCmd.PersistentFlags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"",
		"OTLP endpoint that receives telemetry data (default: write to telemetry-output)")
	rootCmd.PersistentFlags().StringVar(&config.TelemetryOutput,
		"telemetry-output",
		"",
		"file receiving telemetry data if no endpoint is set (default: stderr)")
	rootCmd.PersistentFlags().StringVar(&config.Location,
		"location",
		"",
		"time zone of the race (default: local time zone)")

	// add commands here
	rootCmd.AddCommand(migrateCmd.NewMigrateCmd())
	rootCmd.AddCommand(raceCmd.NewRaceCmd())
	rootCmd.AddCommand(trackingCmd.NewRunnerCmd())
	rootCmd.AddCommand(trackingCmd.NewCheckpointCmd())
	rootCmd.AddCommand(trackingCmd.NewBaseStationCmd())
	rootCmd.AddCommand(transferCmd.NewExportCmd())
	rootCmd.AddCommand(transferCmd.NewImportCmd())
	rootCmd.AddCommand(transferCmd.NewResultsCmd())
	rootCmd.AddCommand(maintCmd.NewMaintCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	loadEnvFile()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".rts" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rts")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindAll(rootCmd, viper.GetViper())
}

// loadEnvFile puts the variables of the dotenv file into the environment.
// Variables already set are not overridden.
func loadEnvFile() {
	if config.EnvFile != "" {
		cobra.CheckErr(godotenv.Load(config.EnvFile))
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Could not load .env: %v\n", err)
	}
}

func bindAll(cmd *cobra.Command, v *viper.Viper) {
	bindFlags(cmd, v)
	for _, c := range cmd.Commands() {
		bindAll(c, v)
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --log-level to RTS_LOG_LEVEL
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
