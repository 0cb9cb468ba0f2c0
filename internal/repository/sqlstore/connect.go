// Package sqlstore implements the repository interfaces on a relational
// database through GORM. Postgres is the production target; SQLite serves
// single-user deployments and tests.
package sqlstore

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open opens a GORM connection for driver using dsn.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: connect %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer; progress upserts arrive concurrently.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlstore: connect %s: %w", driver, err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// AllModels returns every model managed by this package.
func AllModels() []interface{} {
	return []interface{}{
		&workoutModel{},
		&exerciseModel{},
		&progressModel{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("sqlstore: auto-migrate: %w", err)
	}
	return nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
