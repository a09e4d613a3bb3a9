package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/noah-isme/training-import/pkg/config"
)

// NewSQLite opens a file-backed SQLite database with foreign keys enforced.
// Writers are serialized through a single connection.
func NewSQLite(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sqlx.Open(config.DriverSQLite, sqliteDSN(cfg.SQLitePath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

// SQLiteURL renders the sqlite path as a URL for the migrator.
func SQLiteURL(cfg config.DatabaseConfig) string {
	return "sqlite3://" + cfg.SQLitePath + "?_foreign_keys=on"
}

// Open connects using the configured driver.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.Driver == config.DriverSQLite {
		return NewSQLite(cfg)
	}
	return NewPostgres(cfg)
}

// URL renders the configured database as a migrator URL.
func URL(cfg config.DatabaseConfig) string {
	if cfg.Driver == config.DriverSQLite {
		return SQLiteURL(cfg)
	}
	return PostgresURL(cfg)
}
