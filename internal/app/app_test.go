package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/logger"
)

func testConfig(t *testing.T, driver, dsn string) config.Config {
	t.Helper()
	cfg, err := config.LoadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg.Database.Driver = driver
	cfg.Database.DSN = dsn
	return cfg
}

func TestBuildStores(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		dsn    string
	}{
		{"memory", config.DriverMemory, ""},
		{"sqlite", config.DriverSQLite, filepath.Join(t.TempDir(), "tracker.db")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			a, err := Build(ctx, testConfig(t, tt.driver, tt.dsn), logger.Nop())
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			defer func() {
				if err := a.Close(ctx); err != nil {
					t.Errorf("Close: %v", err)
				}
			}()
			if a.Files != nil {
				t.Error("file storage should be disabled by default")
			}

			csv := "#,Exercise,Reps,Speed,Rest,Sets\n1,Lunge,10,slow,45s,2\n"
			res, err := a.Imports.ImportFile(ctx, "lunges.csv", "", strings.NewReader(csv))
			if err != nil {
				t.Fatalf("ImportFile: %v", err)
			}
			s, err := a.Sessions.Open(ctx, res.Workout.ID)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			s.Progress.ToggleSet(res.Exercises[0].ID, 1)
			if err := s.Progress.Flush(ctx); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			got, err := a.ProgressRepo.ListByDate(ctx, []string{res.Exercises[0].ID}, s.Date)
			if err != nil || len(got) != 1 || !got[0].Has(1) {
				t.Errorf("stored progress = %+v, %v", got, err)
			}
		})
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, "cassandra", "")
	if _, err := Build(context.Background(), cfg, logger.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
