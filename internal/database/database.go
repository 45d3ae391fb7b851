package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/entities"
)

type Database struct {
	DB     *gorm.DB
	driver config.DatabaseDriver
	path   string
}

// NewDatabase opens the configured store and migrates the schema.
func NewDatabase(cfg config.Database) (*Database, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}

	var dialector gorm.Dialector
	switch driver {
	case config.DriverSQLite:
		if cfg.Path == "" {
			cfg.Path = config.DefaultDatabasePath
		}
		dialector = OpenSQLite(cfg.Path)
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for the postgres driver")
		}
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, GormConfig(parseLogLevel(cfg.LogLevel)))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	database := &Database{DB: db, driver: driver, path: cfg.Path}
	if driver == config.DriverSQLite {
		slog.Info("database initialized", "driver", driver, "path", cfg.Path)
	} else {
		slog.Info("database initialized", "driver", driver)
	}

	return database, nil
}

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.Book{},
		&entities.AuditEvent{},
		&entities.Setting{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQLDB exposes the underlying connection pool.
func (d *Database) SQLDB() (*sql.DB, error) {
	return d.DB.DB()
}

func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// IsSQLite reports whether the store is a local SQLite file.
func (d *Database) IsSQLite() bool {
	return d.driver == config.DriverSQLite
}

// Path returns the SQLite file path, or "" for other drivers.
func (d *Database) Path() string {
	if !d.IsSQLite() {
		return ""
	}
	return d.path
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
