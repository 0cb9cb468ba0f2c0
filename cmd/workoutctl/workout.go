package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"alcyxob/workout-tracker/internal/app"
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/ingest"
	"alcyxob/workout-tracker/internal/restinterval"
	"alcyxob/workout-tracker/internal/service"
)

func newImportCmd(configDir *string) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a workout from a .csv or .xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configDir, func(a *app.App) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				res, err := a.Imports.ImportFile(cmd.Context(), args[0], name, f)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %q (%s): %d exercises\n", res.Workout.Name, res.Workout.ID, len(res.Exercises))
				for _, fail := range res.Failed {
					fmt.Fprintf(out, "  skipped #%d %s: %s\n", fail.ExerciseOrder, fail.Name, fail.Reason)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "workout name (default: file name)")
	return cmd
}

func newPreviewCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file>",
		Short: "Show the exercises a file would import without storing them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			defer log.Sync()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			// Preview never touches the repositories.
			imports := service.NewImportService(nil, nil, nil, service.ImportOptions{
				Layout:      ingest.Layout{VideoLinkColumns: cfg.Import.VideoLinkColumns},
				MaxFileSize: cfg.Import.MaxFileSize,
			}, log)
			exercises, err := imports.Preview(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			printExercises(cmd, exercises)
			return nil
		},
	}
}

func newWorkoutsCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "workouts [id]",
		Short: "List workouts, or show one workout's exercises",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configDir, func(a *app.App) error {
				if len(args) == 1 {
					w, exercises, err := a.Workouts.GetWorkout(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", w.ID, w.Name)
					printExercises(cmd, exercises)
					return nil
				}

				summaries, err := a.Workouts.ListWorkouts(cmd.Context())
				if err != nil {
					return err
				}
				if len(summaries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No workouts.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tEXERCISES\tCREATED")
				for _, s := range summaries {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.Name, s.ExerciseCount, s.CreatedAt.Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}
}

func newDeleteCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a workout with its exercises, progress and source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configDir, func(a *app.App) error {
				report, err := a.Workouts.DeleteWorkout(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Deleted workout %s (%d exercises)\n", report.WorkoutID, report.ExercisesDeleted)
				for _, f := range report.Failures {
					fmt.Fprintf(out, "  failed %s %s: %s\n", f.Resource, f.ID, f.Reason)
				}
				return nil
			})
		},
	}
}

func printExercises(cmd *cobra.Command, exercises []domain.Exercise) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tREPS\tSETS\tREST\tVIDEO")
	for _, ex := range exercises {
		rest := ex.Rest
		if secs := restinterval.ParseSeconds(ex.Rest); secs > 0 {
			rest = fmt.Sprintf("%s (%s)", ex.Rest, restinterval.Format(secs))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", ex.ExerciseOrder, ex.Name, ex.Reps, ex.Sets, rest, ex.VideoURL)
	}
	_ = tw.Flush()
}
