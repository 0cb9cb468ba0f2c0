// Package app wires configuration into stores, services and the session
// manager shared by the server and the command line tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/ingest"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/memstore"
	"alcyxob/workout-tracker/internal/repository/mongo"
	"alcyxob/workout-tracker/internal/repository/sqlstore"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/session"
	"alcyxob/workout-tracker/internal/storage"
)

const indexTimeout = time.Minute

// App is a fully wired instance of the tracker.
type App struct {
	Config config.Config
	Log    *logger.Logger

	WorkoutRepo  repository.WorkoutRepository
	ExerciseRepo repository.ExerciseRepository
	ProgressRepo repository.ProgressRepository
	Files        storage.FileStorage // nil when s3.enabled is off

	Imports  service.ImportService
	Workouts service.WorkoutService
	Sessions *session.Manager

	closers []func(context.Context) error
}

// Build connects the configured store and object storage and constructs the
// services on top of them. Call Close when done.
func Build(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	a := &App{Config: cfg, Log: log}

	if err := a.openStore(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	if cfg.S3.Enabled {
		files, err := storage.NewS3Storage(ctx, cfg.S3, log)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		a.Files = files
	} else {
		log.Info("s3 storage disabled, imported files are not archived")
	}

	a.Imports = service.NewImportService(a.WorkoutRepo, a.ExerciseRepo, a.Files, service.ImportOptions{
		Layout:         ingest.Layout{VideoLinkColumns: cfg.Import.VideoLinkColumns},
		PersistTimeout: cfg.Import.PersistTimeout,
		MaxFileSize:    cfg.Import.MaxFileSize,
	}, log)
	a.Workouts = service.NewWorkoutService(a.WorkoutRepo, a.ExerciseRepo, a.ProgressRepo, a.Files, cfg.S3.PresignExpiry, log)
	a.Sessions = session.NewManager(a.WorkoutRepo, a.ExerciseRepo, a.ProgressRepo, session.Options{
		PersistTimeout: cfg.Session.PersistTimeout,
		Tick:           cfg.Timer.Tick,
	}, log)
	a.closers = append([]func(context.Context) error{a.Sessions.Close}, a.closers...)

	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	db := a.Config.Database
	switch db.Driver {
	case config.DriverMongo:
		client, err := mongo.ConnectDB(ctx, db.URI)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		a.closers = append(a.closers, func(ctx context.Context) error { return mongo.DisconnectDB(ctx, client) })
		a.useMongo(ctx, client.Database(db.Name))

	case config.DriverPostgres, config.DriverSQLite:
		gdb, err := sqlstore.Open(db.Driver, db.DSN)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func(context.Context) error { return sqlstore.Close(gdb) })
		if err := sqlstore.AutoMigrate(gdb); err != nil {
			return err
		}
		a.useSQL(gdb)

	case config.DriverMemory:
		store := memstore.New()
		a.WorkoutRepo, a.ExerciseRepo, a.ProgressRepo = store.Workouts(), store.Exercises(), store.Progress()

	default:
		return fmt.Errorf("unknown database driver %q", db.Driver)
	}
	a.Log.Info("store ready", "driver", db.Driver)
	return nil
}

func (a *App) useMongo(ctx context.Context, db *mongodriver.Database) {
	ictx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	if err := mongo.EnsureIndexes(ictx, db); err != nil {
		// Queries still work without indexes; only upsert uniqueness weakens.
		a.Log.Warn("mongo indexes not ensured", "error", err)
	}
	a.WorkoutRepo = mongo.NewMongoWorkoutRepository(db)
	a.ExerciseRepo = mongo.NewMongoExerciseRepository(db)
	a.ProgressRepo = mongo.NewMongoProgressRepository(db)
}

func (a *App) useSQL(db *gorm.DB) {
	a.WorkoutRepo = sqlstore.NewWorkoutRepository(db)
	a.ExerciseRepo = sqlstore.NewExerciseRepository(db)
	a.ProgressRepo = sqlstore.NewProgressRepository(db)
}

// Close flushes the active session and releases the store, in that order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, c := range a.closers {
		if err := c(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
