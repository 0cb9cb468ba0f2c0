package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alcyxob/workout-tracker/internal/app"
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/logger"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:          "workoutctl",
		Short:        "Workout Tracker command line",
		Long:         "workoutctl imports workout spreadsheets, manages stored workouts and runs rest timers from the terminal.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "directory containing config.yaml")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newImportCmd(&configDir))
	cmd.AddCommand(newPreviewCmd(&configDir))
	cmd.AddCommand(newWorkoutsCmd(&configDir))
	cmd.AddCommand(newDeleteCmd(&configDir))
	cmd.AddCommand(newRestCmd())
	cmd.AddCommand(newTimerCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "workoutctl %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// loadConfig reads configDir/config.yaml plus the environment and builds a
// logger that writes to stderr.
func loadConfig(configDir string) (config.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return cfg, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// withApp builds the application from configDir, runs fn and closes it.
func withApp(ctx context.Context, configDir string, fn func(*app.App) error) error {
	cfg, log, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	runErr := fn(a)
	if err := a.Close(ctx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
