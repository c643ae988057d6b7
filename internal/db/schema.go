package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// The two tables mirror the data model: one files row per uploaded artifact,
// parsed_rows appended in bulk by the parse job and removed only through the
// owning file's delete.

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS files (
	id            TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	content_type  TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'uploading',
	progress      INTEGER NOT NULL DEFAULT 0,
	storage_path  TEXT NOT NULL DEFAULT '',
	error_message TEXT,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS parsed_rows (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id   TEXT NOT NULL REFERENCES files(id),
	row_index INTEGER NOT NULL,
	data      TEXT NOT NULL,
	UNIQUE (file_id, row_index)
);

CREATE INDEX IF NOT EXISTS idx_parsed_rows_file_id ON parsed_rows(file_id);
CREATE INDEX IF NOT EXISTS idx_files_created_at ON files(created_at);
`

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS files (
	id            VARCHAR(36) PRIMARY KEY,
	filename      VARCHAR(512) NOT NULL,
	content_type  VARCHAR(255) NOT NULL DEFAULT '',
	status        VARCHAR(32) NOT NULL DEFAULT 'uploading',
	progress      INT NOT NULL DEFAULT 0,
	storage_path  VARCHAR(1024) NOT NULL DEFAULT '',
	error_message TEXT,
	created_at    DATETIME(6) NOT NULL,
	updated_at    DATETIME(6) NOT NULL,
	INDEX idx_files_created_at (created_at)
);

CREATE TABLE IF NOT EXISTS parsed_rows (
	id        BIGINT AUTO_INCREMENT PRIMARY KEY,
	file_id   VARCHAR(36) NOT NULL,
	row_index INT NOT NULL,
	data      LONGTEXT NOT NULL,
	UNIQUE KEY uniq_file_row (file_id, row_index),
	INDEX idx_parsed_rows_file_id (file_id)
);
`

func migrate(db *sql.DB, driver string) error {
	schema := sqliteSchema
	if driver == "mysql" {
		schema = mysqlSchema
	}

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
