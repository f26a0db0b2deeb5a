// Package db is the local SQLite backend. It keeps worksheet rows the way a
// spreadsheet does: row 1 is the header and every row is a list of cell strings.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

import _ "modernc.org/sqlite"

//go:embed schema.sql
var schemaFS embed.FS

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

func Init(ctx context.Context, db *sql.DB) error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if err := migrateSheetRows(ctx, db); err != nil {
		return err
	}

	return nil
}

// The first schema had no updated_at; fresh databases get it from schema.sql.
func migrateSheetRows(ctx context.Context, db *sql.DB) error {
	hasUpdatedAt, err := tableHasColumn(ctx, db, "sheet_rows", "updated_at")
	if err != nil {
		return fmt.Errorf("inspect sheet_rows schema: %w", err)
	}
	if hasUpdatedAt {
		return nil
	}

	if _, err := db.ExecContext(ctx, `ALTER TABLE sheet_rows ADD COLUMN updated_at TEXT`); err != nil {
		return fmt.Errorf("migrate sheet_rows: %w", err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE sheet_rows SET updated_at = created_at WHERE updated_at IS NULL`); err != nil {
		return fmt.Errorf("backfill sheet_rows.updated_at: %w", err)
	}
	return nil
}

func tableHasColumn(ctx context.Context, db *sql.DB, tableName, columnName string) (bool, error) {
	query := fmt.Sprintf(`PRAGMA table_info(%s)`, tableName)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name       string
			columnType string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &columnType, &notNull, &defaultVal, &pk); err != nil {
			return false, err
		}
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(columnName)) {
			return true, nil
		}
	}

	if err := rows.Err(); err != nil {
		return false, err
	}
	return false, nil
}
