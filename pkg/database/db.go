package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/config"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the configured database, checks the connection and migrates
// the schema.
func InitDB(dbc config.Database, log zerolog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(dbc)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: false,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database connection: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if dbc.Driver == "sqlite" {
		// sqlite allows a single writer; serialize through one connection
		sqlDB.SetMaxOpenConns(1)
	}
	log.Info().Str("driver", dbc.Driver).Msg("database connection established")

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	log.Info().Msg("database migrations completed")
	return db, nil
}

func dialectorFor(dbc config.Database) (gorm.Dialector, error) {
	switch dbc.Driver {
	case "", "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbc.Host, dbc.Port, dbc.User, dbc.Pass, dbc.Name)
		return postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), nil
	case "sqlite":
		if dir := filepath.Dir(dbc.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		return sqlite.Open(dbc.Path + "?_foreign_keys=on&_busy_timeout=5000"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbc.Driver)
	}
}
