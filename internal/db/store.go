package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const headerRowNo = 1

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Worksheet addresses one named sheet inside the database.
type Worksheet struct {
	store *Store
	name  string
}

func (s *Store) Worksheet(name string) *Worksheet {
	return &Worksheet{store: s, name: name}
}

func (w *Worksheet) Name() string {
	return w.name
}

// Header returns row 1, or nil when the sheet has never been written.
func (w *Worksheet) Header(ctx context.Context) ([]string, error) {
	var raw string
	err := w.store.db.QueryRowContext(ctx, `
		SELECT cells
		FROM sheet_rows
		WHERE sheet = ? AND row_no = ?
	`, w.name, headerRowNo).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get header of %s: %w", w.name, err)
	}
	cells, err := decodeCells(raw)
	if err != nil {
		return nil, fmt.Errorf("decode header of %s: %w", w.name, err)
	}
	return cells, nil
}

// Rows returns every row after the header in sheet order.
func (w *Worksheet) Rows(ctx context.Context) ([][]string, error) {
	rows, err := w.store.db.QueryContext(ctx, `
		SELECT row_no, cells
		FROM sheet_rows
		WHERE sheet = ? AND row_no > ?
		ORDER BY row_no ASC
	`, w.name, headerRowNo)
	if err != nil {
		return nil, fmt.Errorf("list rows of %s: %w", w.name, err)
	}
	defer rows.Close()

	out := make([][]string, 0)
	for rows.Next() {
		var (
			rowNo int64
			raw   string
		)
		if err := rows.Scan(&rowNo, &raw); err != nil {
			return nil, fmt.Errorf("scan row of %s: %w", w.name, err)
		}
		cells, err := decodeCells(raw)
		if err != nil {
			return nil, fmt.Errorf("decode row %d of %s: %w", rowNo, w.name, err)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows of %s: %w", w.name, err)
	}
	return out, nil
}

// WriteHeader overwrites row 1.
func (w *Worksheet) WriteHeader(ctx context.Context, header []string) error {
	raw, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	now := nowUTC()
	_, err = w.store.db.ExecContext(ctx, `
		INSERT INTO sheet_rows (sheet, row_no, cells, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(sheet, row_no) DO UPDATE SET
			cells = excluded.cells,
			updated_at = excluded.updated_at
	`, w.name, headerRowNo, string(raw), now, now)
	if err != nil {
		return fmt.Errorf("write header of %s: %w", w.name, err)
	}
	return nil
}

// Append adds one row below the last one. Row 1 stays reserved for the header.
func (w *Worksheet) Append(ctx context.Context, cells []string) error {
	raw, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}

	tx, err := w.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(row_no), ?) + 1
		FROM sheet_rows
		WHERE sheet = ?
	`, headerRowNo, w.name).Scan(&next); err != nil {
		return fmt.Errorf("next row of %s: %w", w.name, err)
	}

	now := nowUTC()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sheet_rows (sheet, row_no, cells, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, w.name, next, string(raw), now, now); err != nil {
		return fmt.Errorf("append row to %s: %w", w.name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

func decodeCells(raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, err
	}
	return cells, nil
}
