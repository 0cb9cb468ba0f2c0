package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	Import   ImportConfig   `mapstructure:"import"`
	Session  SessionConfig  `mapstructure:"session"`
	Timer    TimerConfig    `mapstructure:"timer"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects the store. URI and Name apply to mongo, DSN to the
// SQL drivers.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
	DSN    string `mapstructure:"dsn"`
}

type S3Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

type ImportConfig struct {
	MaxFileSize    int64         `mapstructure:"max_file_size"`
	PersistTimeout time.Duration `mapstructure:"persist_timeout"`
	// VideoLinkColumns lists the columns whose hyperlinks stand in for a
	// missing video URL, in priority order.
	VideoLinkColumns []string `mapstructure:"video_link_columns"`
}

type SessionConfig struct {
	PersistTimeout time.Duration `mapstructure:"persist_timeout"`
}

type TimerConfig struct {
	Tick time.Duration `mapstructure:"tick"`
}

type LogConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// Store drivers accepted in database.driver.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory" // nothing survives a restart
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "workout_tracker")
	v.SetDefault("database.dsn", "workout-tracker.db")

	// Keys without a meaningful default are still registered so that
	// AutomaticEnv can resolve them during Unmarshal.
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.presign_expiry", "15m")

	v.SetDefault("import.max_file_size", 10<<20)
	v.SetDefault("import.persist_timeout", "10s")
	v.SetDefault("import.video_link_columns", []string{"H", "B"})

	v.SetDefault("session.persist_timeout", "10s")
	v.SetDefault("timer.tick", "1s")

	v.SetDefault("log.mode", "development")
	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yaml from path, if present, overlays environment
// variables (server.address -> SERVER_ADDRESS) and applies defaults.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}
	return config, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" || c.Database.Name == "" {
			return errors.New("database.uri and database.name are required for mongo")
		}
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}

	durations := map[string]time.Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.idle_timeout":     c.Server.IdleTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"import.persist_timeout":  c.Import.PersistTimeout,
		"session.persist_timeout": c.Session.PersistTimeout,
		"timer.tick":              c.Timer.Tick,
	}
	for key, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", key, d)
		}
	}
	if c.Import.MaxFileSize <= 0 {
		return fmt.Errorf("import.max_file_size must be positive, got %d", c.Import.MaxFileSize)
	}

	for _, col := range c.Import.VideoLinkColumns {
		if !isColumnName(col) {
			return fmt.Errorf("import.video_link_columns: %q is not a column name", col)
		}
	}

	if c.S3.Enabled && c.S3.BucketName == "" {
		return errors.New("s3.bucket_name is required when s3.enabled is set")
	}
	return nil
}

// isColumnName reports whether s is a spreadsheet column such as "H" or "AB".
func isColumnName(s string) bool {
	if s == "" || len(s) > 3 {
		return false
	}
	for _, r := range strings.ToUpper(s) {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
