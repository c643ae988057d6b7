package db

import (
	"database/sql"
	"fmt"

	"file-parser-service/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite" // SQLite driver
)

// Open connects to the configured database and bootstraps the schema.
func Open(cfg *config.Config) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Database.Driver {
	case "sqlite", "":
		dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", cfg.Database.Path)
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLite works best with a single writer
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case "mysql":
		db, err = sql.Open("mysql", cfg.DatabaseDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxConnections)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConnections)
		db.SetConnMaxLifetime(cfg.Database.ConnectionLifetime)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(db, cfg.Database.Driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}
